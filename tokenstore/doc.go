// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tokenstore persists client tokens between runs.
//
// FileStore keeps all tokens in one JSON file, by default
// $XDG_DATA_HOME/toolhive-oauth/tokens.json, with 0600 permissions.
package tokenstore

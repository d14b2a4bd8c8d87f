// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package scope enumerates the permission scopes understood by the identity
// provider and offers small helpers for parsing, joining and comparing scope
// sets.
//
// Scopes travel as a single space-separated string in authorization URLs and
// as a JSON array in token responses:
//
//	req := []scope.Scope{scope.UserReadEmail, scope.ChatRead}
//	q.Set("scope", scope.Join(req))
//
//	if missing := scope.Missing(granted, req); len(missing) > 0 {
//		return fmt.Errorf("token lacks %s", scope.Join(missing))
//	}
package scope

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the client configuration from a YAML file validated
// against an embedded JSON schema, then overlays the CLIENT_ID,
// CLIENT_SECRET, REDIRECT_URI and PORT environment variables.
//
//	cfg, err := config.Load(path)
//	if err != nil {
//		return err
//	}
//	if err := cfg.ApplyEnv(&env.OSReader{}); err != nil {
//		return err
//	}
//	cc, err := cfg.ClientConfig()
package config

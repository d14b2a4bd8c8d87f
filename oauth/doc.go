// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth provides the RFC-defined constants, provider endpoint
// configuration and validation utilities shared by the client and the CLI.
//
// # Endpoints
//
// Endpoints is immutable configuration handed to the client. The defaults
// point at the production identity provider; tests and self-hosted setups pass
// their own:
//
//	e := oauth.DefaultEndpoints()
//	e.TokenURL = "http://127.0.0.1:8080/token"
//	if err := e.Validate(); err != nil {
//		// Handle invalid configuration
//	}
//
// # Discovery
//
// Discover fetches an OpenID Connect Discovery 1.0 document and checks that
// its issuer matches:
//
//	md, err := oauth.Discover(ctx, http.DefaultClient, oauth.DefaultIssuer)
//	if err != nil {
//		return err
//	}
//	endpoints := md.Endpoints("")
//
// # Redirect URI Validation
//
// The package provides RFC-compliant redirect URI validation with configurable
// policies for security:
//
//	// Strict policy: only https and http-loopback
//	err := oauth.ValidateRedirectURI("http://localhost:3000/callback", oauth.RedirectURIPolicyStrict)
package oauth

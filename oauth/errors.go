// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "errors"

// Validation errors for provider metadata and endpoint configuration.
var (
	// ErrMissingIssuer indicates the issuer field is missing from the discovery document.
	ErrMissingIssuer = errors.New("missing issuer")

	// ErrIssuerMismatch indicates the discovery document names a different issuer
	// than the one it was fetched from.
	ErrIssuerMismatch = errors.New("issuer mismatch")

	// ErrMissingAuthorizationEndpoint indicates the authorization_endpoint field is missing.
	ErrMissingAuthorizationEndpoint = errors.New("missing authorization_endpoint")

	// ErrMissingTokenEndpoint indicates the token_endpoint field is missing.
	ErrMissingTokenEndpoint = errors.New("missing token_endpoint")

	// ErrMissingRevocationEndpoint indicates the revocation_endpoint field is missing.
	ErrMissingRevocationEndpoint = errors.New("missing revocation_endpoint")

	// ErrMissingValidationEndpoint indicates no token validation endpoint is configured.
	ErrMissingValidationEndpoint = errors.New("missing validation endpoint")

	// ErrMissingJWKSURI indicates the jwks_uri field is missing (required for OIDC).
	ErrMissingJWKSURI = errors.New("missing jwks_uri")

	// ErrMissingResponseTypesSupported indicates the response_types_supported field is missing (required for OIDC).
	ErrMissingResponseTypesSupported = errors.New("missing response_types_supported")
)

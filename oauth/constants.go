// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

// Well-known endpoint paths as defined by RFC 8414 and OpenID Connect Discovery 1.0.
const (
	// WellKnownOIDCPath is the standard OIDC discovery endpoint path
	// per OpenID Connect Discovery 1.0 specification.
	WellKnownOIDCPath = "/.well-known/openid-configuration"

	// WellKnownOAuthServerPath is the standard OAuth authorization server metadata endpoint path
	// per RFC 8414 (OAuth 2.0 Authorization Server Metadata).
	WellKnownOAuthServerPath = "/.well-known/oauth-authorization-server"
)

// Grant types as defined by RFC 6749.
const (
	// GrantTypeAuthorizationCode is the authorization code grant type (RFC 6749 Section 4.1).
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypeRefreshToken is the refresh token grant type (RFC 6749 Section 6).
	GrantTypeRefreshToken = "refresh_token"

	// GrantTypeClientCredentials is the client credentials grant type (RFC 6749 Section 4.4).
	// The provider issues app access tokens through it.
	GrantTypeClientCredentials = "client_credentials"
)

// Response types as defined by RFC 6749.
const (
	// ResponseTypeCode is the authorization code response type (RFC 6749 Section 4.1.1).
	ResponseTypeCode = "code"
)

// Token endpoint authentication methods as defined by RFC 7591.
const (
	// TokenEndpointAuthMethodNone indicates no client authentication (public clients).
	TokenEndpointAuthMethodNone = "none"

	// TokenEndpointAuthMethodClientSecretPost sends client_id and client_secret
	// in the form body. This is what the provider expects.
	TokenEndpointAuthMethodClientSecretPost = "client_secret_post"
)

// PKCE (Proof Key for Code Exchange) methods as defined by RFC 7636.
const (
	// PKCEMethodS256 uses SHA-256 hash of the code verifier (recommended).
	PKCEMethodS256 = "S256"
)

// Authorization header schemes.
const (
	// AuthSchemeBearer is used for resource requests (RFC 6750).
	AuthSchemeBearer = "Bearer"

	// AuthSchemeOAuth is the scheme the provider's token validation endpoint expects.
	AuthSchemeOAuth = "OAuth"
)

// Authorization request parameters beyond RFC 6749.
const (
	// ParamForceVerify makes the provider re-prompt the user for consent even
	// if the application is already authorized.
	ParamForceVerify = "force_verify"
)

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "slices"

// ProviderMetadata represents an OpenID Connect Discovery 1.0 document, which
// extends OAuth 2.0 Authorization Server Metadata (RFC 8414).
type ProviderMetadata struct {
	// Issuer is the authorization server's issuer identifier (REQUIRED per RFC 8414).
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is the URL of the authorization endpoint.
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint is the URL of the token endpoint.
	TokenEndpoint string `json:"token_endpoint"`

	// RevocationEndpoint is the URL of the token revocation endpoint (RFC 7009).
	RevocationEndpoint string `json:"revocation_endpoint,omitempty"`

	// JWKSURI is the URL of the JSON Web Key Set document.
	JWKSURI string `json:"jwks_uri"`

	// UserinfoEndpoint is the URL of the UserInfo endpoint (OIDC specific).
	UserinfoEndpoint string `json:"userinfo_endpoint,omitempty"`

	ResponseTypesSupported            []string `json:"response_types_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	SubjectTypesSupported             []string `json:"subject_types_supported,omitempty"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported,omitempty"`
	ClaimsSupported                   []string `json:"claims_supported,omitempty"`
}

// Validate checks for required fields based on whether this is an OIDC or pure OAuth document.
func (m *ProviderMetadata) Validate(isOIDC bool) error {
	if m.Issuer == "" {
		return ErrMissingIssuer
	}
	if m.AuthorizationEndpoint == "" {
		return ErrMissingAuthorizationEndpoint
	}
	if m.TokenEndpoint == "" {
		return ErrMissingTokenEndpoint
	}
	if isOIDC && m.JWKSURI == "" {
		return ErrMissingJWKSURI
	}
	if isOIDC && len(m.ResponseTypesSupported) == 0 {
		return ErrMissingResponseTypesSupported
	}
	return nil
}

// SupportsPKCE returns true if the authorization server supports PKCE with S256.
func (m *ProviderMetadata) SupportsPKCE() bool {
	return slices.Contains(m.CodeChallengeMethodsSupported, PKCEMethodS256)
}

// SupportsGrantType returns true if the authorization server supports the given grant type.
func (m *ProviderMetadata) SupportsGrantType(grantType string) bool {
	return slices.Contains(m.GrantTypesSupported, grantType)
}

// Endpoints converts the metadata into client endpoints. Discovery documents
// carry no token validation endpoint, so validateURL is supplied by the
// caller; empty means the issuer's "/validate".
func (m *ProviderMetadata) Endpoints(validateURL string) Endpoints {
	if validateURL == "" {
		validateURL = m.Issuer + "/validate"
	}
	return Endpoints{
		AuthURL:     m.AuthorizationEndpoint,
		TokenURL:    m.TokenEndpoint,
		RevokeURL:   m.RevocationEndpoint,
		ValidateURL: validateURL,
	}
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"fmt"

	httpval "github.com/stacklok/toolhive-oauth/validation/http"
)

// DefaultIssuer is the identity provider's issuer identifier.
const DefaultIssuer = "https://id.twitch.tv/oauth2"

// Endpoints holds the provider URLs a client talks to. It is plain
// configuration: pass a different value to point the client at a test server.
type Endpoints struct {
	// AuthURL is the authorization endpoint the user is sent to.
	AuthURL string `json:"auth_url" yaml:"auth_url"`

	// TokenURL is the token endpoint for code, refresh and client credential grants.
	TokenURL string `json:"token_url" yaml:"token_url"`

	// RevokeURL is the token revocation endpoint (RFC 7009).
	RevokeURL string `json:"revoke_url" yaml:"revoke_url"`

	// ValidateURL is the provider's token validation endpoint.
	ValidateURL string `json:"validate_url" yaml:"validate_url"`
}

// DefaultEndpoints returns the production endpoints of the identity provider.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthURL:     DefaultIssuer + "/authorize",
		TokenURL:    DefaultIssuer + "/token",
		RevokeURL:   DefaultIssuer + "/revoke",
		ValidateURL: DefaultIssuer + "/validate",
	}
}

// IsZero reports whether no endpoint is set.
func (e Endpoints) IsZero() bool {
	return e == Endpoints{}
}

// Validate checks that every endpoint is set and is a usable URL.
func (e Endpoints) Validate() error {
	for _, f := range []struct {
		name, value string
		missing     error
	}{
		{"auth_url", e.AuthURL, ErrMissingAuthorizationEndpoint},
		{"token_url", e.TokenURL, ErrMissingTokenEndpoint},
		{"revoke_url", e.RevokeURL, ErrMissingRevocationEndpoint},
		{"validate_url", e.ValidateURL, ErrMissingValidationEndpoint},
	} {
		if f.value == "" {
			return f.missing
		}
		if err := httpval.ValidateEndpointURL(f.value); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

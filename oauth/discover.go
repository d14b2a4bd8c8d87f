// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stacklok/toolhive-oauth/httperr"
	httpval "github.com/stacklok/toolhive-oauth/validation/http"
)

// maxMetadataSize bounds the discovery document size.
const maxMetadataSize = 1 << 20

// Discover fetches and validates the OIDC discovery document for issuer.
// A nil httpClient means http.DefaultClient.
func Discover(ctx context.Context, httpClient *http.Client, issuer string) (*ProviderMetadata, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	issuer = strings.TrimSuffix(issuer, "/")
	if err := httpval.ValidateEndpointURL(issuer); err != nil {
		return nil, fmt.Errorf("invalid issuer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+WellKnownOIDCPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", httperr.FromResponse(resp, nil))
	}

	var md ProviderMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(&md); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if err := md.Validate(true); err != nil {
		return nil, fmt.Errorf("invalid discovery document: %w", err)
	}
	if strings.TrimSuffix(md.Issuer, "/") != issuer {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrIssuerMismatch, issuer, md.Issuer)
	}

	return &md, nil
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/stacklok/toolhive-oauth/httperr"
	"github.com/stacklok/toolhive-oauth/metrics"
	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/policy"
	"github.com/stacklok/toolhive-oauth/scope"
	httpval "github.com/stacklok/toolhive-oauth/validation/http"
)

const maxValidateBody = 64 << 10

// ValidatedToken is the provider's view of an access token.
type ValidatedToken struct {
	ClientID  string
	Login     string
	UserID    string
	Scopes    []scope.Scope
	ExpiresIn time.Duration
}

// IsAppToken reports whether the token belongs to an application rather than a user.
func (v *ValidatedToken) IsAppToken() bool {
	return v.UserID == ""
}

func (v *ValidatedToken) clone() *ValidatedToken {
	cp := *v
	cp.Scopes = slices.Clone(v.Scopes)
	return &cp
}

// Activation returns the variables a policy expression is evaluated against.
func (v *ValidatedToken) Activation() map[string]any {
	return map[string]any{
		policy.VarClientID:  v.ClientID,
		policy.VarLogin:     v.Login,
		policy.VarUserID:    v.UserID,
		policy.VarScopes:    scope.Strings(v.Scopes),
		policy.VarExpiresIn: int64(v.ExpiresIn / time.Second),
	}
}

type validateResponse struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login"`
	UserID    string   `json:"user_id"`
	Scopes    []string `json:"scopes"`
	ExpiresIn int64    `json:"expires_in"`
}

func cacheKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}

// Validate asks the provider whether accessToken is still valid. A token the
// provider rejects yields an error matching ErrInvalidToken.
func (c *Client) Validate(ctx context.Context, accessToken string) (*ValidatedToken, error) {
	if err := httpval.ValidateHeaderValue(accessToken); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	key := cacheKey(accessToken)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*ValidatedToken).clone(), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoints.ValidateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create validate request: %w", err)
	}
	req.Header.Set("Authorization", oauth.AuthSchemeOAuth+" "+accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(metrics.EndpointValidate, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(metrics.EndpointValidate, outcomeFor(resp.StatusCode), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		c.logger.Debug("access token rejected by provider")
		return nil, httperr.FromResponse(resp, ErrInvalidToken)
	default:
		return nil, fmt.Errorf("failed to validate token: %w", httperr.FromResponse(resp, nil))
	}

	var body validateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxValidateBody)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode validate response: %w", err)
	}

	v := &ValidatedToken{
		ClientID:  body.ClientID,
		Login:     body.Login,
		UserID:    body.UserID,
		Scopes:    scope.FromStrings(body.Scopes),
		ExpiresIn: time.Duration(body.ExpiresIn) * time.Second,
	}

	if c.cache != nil {
		ttl := c.cacheTTL
		if v.ExpiresIn > 0 && v.ExpiresIn < ttl {
			ttl = v.ExpiresIn
		}
		c.cache.Set(key, v.clone(), ttl)
	}
	return v, nil
}

// Revoke revokes accessToken and forgets any cached validation for it.
// Revoking a token the provider no longer knows yields ErrInvalidToken.
func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	if c.cache != nil {
		c.cache.Delete(cacheKey(accessToken))
	}

	form := url.Values{
		"client_id": {c.cfg.ClientID},
		"token":     {accessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoints.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(metrics.EndpointRevoke, metrics.OutcomeError, time.Since(start))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(metrics.EndpointRevoke, outcomeFor(resp.StatusCode), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		c.logger.Debug("access token revoked")
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized:
		return httperr.FromResponse(resp, ErrInvalidToken)
	default:
		return fmt.Errorf("failed to revoke token: %w", httperr.FromResponse(resp, nil))
	}
}

// Authorize validates accessToken and evaluates p against it. A valid token
// that p rejects yields ErrPolicyDenied along with the validated token.
func (c *Client) Authorize(ctx context.Context, accessToken string, p *policy.Policy) (*ValidatedToken, error) {
	v, err := c.Validate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return v, nil
	}

	ok, err := p.Allows(v.Activation())
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%w: %s", ErrPolicyDenied, p.Source())
	}
	return v, nil
}

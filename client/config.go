// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/toolhive-oauth/csrf"
	"github.com/stacklok/toolhive-oauth/metrics"
	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/scope"
	httpval "github.com/stacklok/toolhive-oauth/validation/http"
)

// DefaultHTTPTimeout applies when no HTTP client is supplied.
const DefaultHTTPTimeout = 30 * time.Second

// Config describes one registered application.
type Config struct {
	// ClientID is the application's client ID. Required.
	ClientID string

	// ClientSecret is required for confidential grants (code exchange,
	// refresh, client credentials).
	ClientSecret string

	// RedirectURL is the registered redirect URI. It must be set for the
	// authorization code flow and must be a loopback URL for Login.
	RedirectURL string

	// Scopes requested in the authorization URL and for app tokens.
	Scopes []scope.Scope

	// Endpoints overrides the provider URLs. Zero means oauth.DefaultEndpoints.
	Endpoints oauth.Endpoints

	// CSRF bounds the age of the state parameter. A zero MaxAge means
	// csrf.DefaultMaxAge.
	CSRF csrf.Config

	// ForceVerify asks the provider to show the consent screen even if the
	// user already authorized the application.
	ForceVerify bool
}

// withDefaults returns a copy with zero fields defaulted.
func (c Config) withDefaults() Config {
	if c.Endpoints.IsZero() {
		c.Endpoints = oauth.DefaultEndpoints()
	}
	if c.CSRF.MaxAge <= 0 {
		c.CSRF.MaxAge = csrf.DefaultMaxAge
	}
	return c
}

// Validate checks the configuration as New would.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.ClientID == "" {
		return fmt.Errorf("%w: client ID is required", ErrInvalidConfig)
	}
	if err := httpval.ValidateHeaderValue(c.ClientID); err != nil {
		return fmt.Errorf("%w: client ID: %w", ErrInvalidConfig, err)
	}
	if c.RedirectURL != "" {
		if err := oauth.ValidateRedirectURI(c.RedirectURL, oauth.RedirectURIPolicyStrict); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if err := c.Endpoints.Validate(); err != nil {
		return fmt.Errorf("%w: endpoints: %w", ErrInvalidConfig, err)
	}
	if err := scope.ValidateAll(c.Scopes); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collectors
	key        *csrf.SecretKey
	cacheTTL   time.Duration
	now        func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for every provider request.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records provider requests and callback outcomes on m.
func WithMetrics(m *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSecretKey uses key to sign state values instead of a fresh random key,
// so that several client instances accept each other's state.
func WithSecretKey(key csrf.SecretKey) Option {
	return func(o *options) {
		o.key = &key
	}
}

// WithValidationCache caches successful Validate results for up to ttl,
// and never past the token's own expiry. Zero disables the cache.
func WithValidationCache(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithClock overrides the time source used for state values.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

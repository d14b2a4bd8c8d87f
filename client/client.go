// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/stacklok/toolhive-oauth/csrf"
	"github.com/stacklok/toolhive-oauth/httperr"
	"github.com/stacklok/toolhive-oauth/metrics"
	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/scope"
)

// Client talks to the identity provider on behalf of one application.
// It is safe for concurrent use.
type Client struct {
	cfg        Config
	key        csrf.SecretKey
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collectors
	now        func() time.Time

	refreshes singleflight.Group
	cache     *gocache.Cache
	cacheTTL  time.Duration
}

// New validates cfg and returns a Client. A fresh CSRF secret key is
// generated unless WithSecretKey is given.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := options{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var key csrf.SecretKey
	if o.key != nil {
		key = *o.key
	} else {
		k, err := csrf.NewSecretKey()
		if err != nil {
			return nil, err
		}
		key = k
	}

	c := &Client{
		cfg:        cfg,
		key:        key,
		httpClient: o.httpClient,
		logger:     o.logger,
		metrics:    o.metrics,
		now:        o.now,
		cacheTTL:   o.cacheTTL,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scope.Strings(cfg.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.Endpoints.AuthURL,
				TokenURL:  cfg.Endpoints.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
	if o.cacheTTL > 0 {
		c.cache = gocache.New(o.cacheTTL, 2*o.cacheTTL)
	}
	return c, nil
}

// Config returns the effective configuration with defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// AuthorizationURL mints a state value bound to subject and returns the URL
// to send the user to along with that state. subject may be empty.
func (c *Client) AuthorizationURL(subject string) (authURL, state string) {
	state = csrf.GenerateAt(c.key, subject, c.now())

	var params []oauth2.AuthCodeOption
	if c.cfg.ForceVerify {
		params = append(params, oauth2.SetAuthURLParam(oauth.ParamForceVerify, "true"))
	}
	return c.oauth.AuthCodeURL(state, params...), state
}

// VerifyState reports whether state was minted by this client's key for
// subject and is still within the configured age window.
func (c *Client) VerifyState(state, subject string) bool {
	return csrf.ValidateAt(c.key, state, subject, c.cfg.CSRF, c.now())
}

// Exchange trades an authorization code for a token. It does not check the
// state; use CompleteAuthorization for that.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}
	tok, err := c.token(ctx, oauth.GrantTypeAuthorizationCode, func(ctx context.Context) (*oauth2.Token, error) {
		return c.oauth.Exchange(ctx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// CompleteAuthorization verifies state for subject and, if it is valid,
// exchanges code. An invalid state aborts with ErrInvalidState before any
// request is made.
func (c *Client) CompleteAuthorization(ctx context.Context, code, state, subject string) (*Token, error) {
	if !c.VerifyState(state, subject) {
		c.logger.Warn("authorization state rejected")
		return nil, ErrInvalidState
	}
	return c.Exchange(ctx, code)
}

// Refresh exchanges a refresh token for a new token. Concurrent calls with
// the same refresh token share one request. The shared request is not
// cancelled with any single caller's ctx; each caller stops waiting when its
// own ctx is done.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.token(context.WithoutCancel(ctx), oauth.GrantTypeRefreshToken, func(ctx context.Context) (*oauth2.Token, error) {
			// An empty access token forces the source to refresh.
			old := (&Token{RefreshToken: refreshToken}).oauth2Token()
			return c.oauth.TokenSource(ctx, old).Token()
		})
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to refresh token: %w", context.Cause(ctx))
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", res.Err)
		}
		if res.Shared {
			c.logger.Debug("refresh request shared")
		}
		return res.Val.(*Token), nil
	}
}

// AppToken obtains an app access token with the client credentials grant.
func (c *Client) AppToken(ctx context.Context) (*Token, error) {
	cc := &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.Endpoints.TokenURL,
		Scopes:       scope.Strings(c.cfg.Scopes),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := c.token(ctx, oauth.GrantTypeClientCredentials, cc.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain app token: %w", err)
	}
	return tok, nil
}

// token runs one token endpoint call with the client's HTTP client and
// converts errors and metrics.
func (c *Client) token(ctx context.Context, grant string, fetch func(context.Context) (*oauth2.Token, error)) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	start := time.Now()
	tok, err := fetch(ctx)
	elapsed := time.Since(start)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			c.metrics.ObserveRequest(metrics.EndpointToken, outcomeFor(rerr.Response.StatusCode), elapsed)
			c.logger.Debug("token request rejected", "grant_type", grant, "status", rerr.Response.StatusCode)
			return nil, httperr.FromStatus(rerr.Response.StatusCode, rerr.Body, nil)
		}
		c.metrics.ObserveRequest(metrics.EndpointToken, metrics.OutcomeError, elapsed)
		return nil, err
	}

	c.metrics.ObserveRequest(metrics.EndpointToken, metrics.OutcomeSuccess, elapsed)
	out := fromOAuth2(tok)
	c.logger.Debug("token issued", "grant_type", grant, "expiry", out.Expiry, "scopes", scope.Strings(out.Scopes))
	return out, nil
}

func outcomeFor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return metrics.OutcomeSuccess
	case status >= 400 && status < 500:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

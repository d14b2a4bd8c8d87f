// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/toolhive-oauth/callback"
	"github.com/stacklok/toolhive-oauth/oauth"
)

// DefaultLoginTimeout bounds how long Login waits for the redirect.
const DefaultLoginTimeout = 2 * time.Minute

// Callback outcome labels beyond callback.Status.
const (
	outcomeInvalidState = "invalid_state"
	outcomeFailed       = "failed"
)

// LoginOptions tunes Login.
type LoginOptions struct {
	// Timeout bounds the wait for the redirect. Zero means DefaultLoginTimeout.
	Timeout time.Duration

	// Open is called with the authorization URL once the callback listener
	// is bound, typically to print it or launch a browser. May be nil.
	Open func(authURL string) error

	// Responder writes the page the user's browser shows after the redirect.
	// Nil closes the connection without a reply.
	Responder callback.Responder
}

// Login runs the authorization code flow through a loopback redirect: it
// binds a listener on the redirect URL, hands the authorization URL to
// opts.Open, waits for the redirect, verifies the returned state for subject
// and exchanges the code.
func (c *Client) Login(ctx context.Context, subject string, opts LoginOptions) (*Token, error) {
	if err := oauth.ValidateLoopbackRedirectURI(c.cfg.RedirectURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}

	log := c.logger.With("flow_id", uuid.NewString())

	listenOpts := []callback.Option{callback.WithLogger(log)}
	if opts.Responder != nil {
		listenOpts = append(listenOpts, callback.WithResponder(opts.Responder))
	}
	l, err := callback.Listen(c.cfg.RedirectURL, listenOpts...)
	if err != nil {
		return nil, err
	}

	authURL, _ := c.AuthorizationURL(subject)
	if opts.Open != nil {
		if err := opts.Open(authURL); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("failed to open authorization URL: %w", err)
		}
	}
	log.Debug("waiting for authorization callback", "addr", l.Addr().String(), "timeout", timeout)

	out, err := l.Await(ctx, timeout)
	if err != nil {
		c.metrics.ObserveCallback(outcomeFailed)
		return nil, err
	}

	switch out.Status {
	case callback.StatusTimedOut:
		c.metrics.ObserveCallback(out.Status.String())
		return nil, ErrAuthorizationTimedOut
	case callback.StatusCancelled:
		c.metrics.ObserveCallback(out.Status.String())
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrAuthorizationCancelled, cause)
		}
		return nil, ErrAuthorizationCancelled
	}

	if !c.VerifyState(out.State, subject) {
		c.metrics.ObserveCallback(outcomeInvalidState)
		log.Warn("authorization state rejected")
		return nil, ErrInvalidState
	}
	c.metrics.ObserveCallback(out.Status.String())

	tok, err := c.Exchange(ctx, out.Code)
	if err != nil {
		return nil, err
	}
	log.Info("authorization completed", "scopes", len(tok.Scopes))
	return tok, nil
}

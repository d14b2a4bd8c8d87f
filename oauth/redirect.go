// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ory/fosite"

	httpval "github.com/stacklok/toolhive-oauth/validation/http"
)

// MaxRedirectURILength is the maximum allowed length for a redirect URI.
const MaxRedirectURILength = 2048

// ErrNotLoopbackRedirect is returned when a redirect URI cannot be served by
// a local callback listener.
var ErrNotLoopbackRedirect = errors.New("redirect_uri is not a loopback address with an explicit port")

// RedirectURIPolicy controls which URI schemes are accepted during redirect URI validation.
type RedirectURIPolicy int

const (
	// RedirectURIPolicyStrict allows only https and http-loopback schemes
	// (RFC 8252 Section 8.4).
	RedirectURIPolicyStrict RedirectURIPolicy = iota

	// RedirectURIPolicyAllowPrivateSchemes also allows private-use URI schemes
	// such as myapp:// (RFC 8252 Section 7.1).
	RedirectURIPolicyAllowPrivateSchemes
)

// ValidateRedirectURI validates a redirect URI per RFC 6749 Section 3.1.2 and RFC 8252.
//
// Validation rules applied:
//   - URI must not exceed MaxRedirectURILength
//   - URI must be absolute and must not contain a fragment
//   - Strict: only https or http-loopback
//   - AllowPrivateSchemes: also private-use schemes
func ValidateRedirectURI(uri string, policy RedirectURIPolicy) error {
	if len(uri) > MaxRedirectURILength {
		return fmt.Errorf("redirect_uri too long (maximum %d characters)", MaxRedirectURILength)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid redirect_uri format: %w", err)
	}

	if !fosite.IsValidRedirectURI(parsed) {
		return fmt.Errorf("redirect_uri must be an absolute URI without a fragment")
	}

	switch policy {
	case RedirectURIPolicyStrict:
		if !fosite.IsRedirectURISecureStrict(context.Background(), parsed) {
			return fmt.Errorf("redirect_uri must use http (for loopback) or https scheme")
		}
	case RedirectURIPolicyAllowPrivateSchemes:
		if !fosite.IsRedirectURISecure(context.Background(), parsed) {
			return fmt.Errorf("redirect_uri must use a secure scheme (https, http for loopback, or a private-use scheme)")
		}
	default:
		return fmt.Errorf("unknown redirect URI policy: %d", policy)
	}

	return nil
}

// ValidateLoopbackRedirectURI checks that uri passes the strict policy and
// names an http loopback host with an explicit, non-zero port, so a local
// callback listener can receive the redirect.
func ValidateLoopbackRedirectURI(uri string) error {
	if err := ValidateRedirectURI(uri, RedirectURIPolicyStrict); err != nil {
		return err
	}
	parsed, _ := url.Parse(uri)
	if parsed.Scheme != "http" || !httpval.IsLoopbackHost(parsed.Hostname()) {
		return fmt.Errorf("%w: %s", ErrNotLoopbackRedirect, uri)
	}
	if p, err := strconv.ParseUint(parsed.Port(), 10, 16); err != nil || p == 0 {
		return fmt.Errorf("%w: %s", ErrNotLoopbackRedirect, uri)
	}
	return nil
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"errors"
	"fmt"
)

// Configuration errors. These are returned before any socket is opened.
var (
	// ErrInvalidBindURL indicates the bind URL could not be parsed.
	ErrInvalidBindURL = errors.New("invalid callback bind URL")

	// ErrNonLoopbackHost indicates the bind URL does not name the loopback host.
	ErrNonLoopbackHost = errors.New("callback host must be localhost")

	// ErrMissingPort indicates the bind URL has no explicit port.
	ErrMissingPort = errors.New("callback bind URL must include an explicit port")
)

// Errors for a received connection that could not be used.
var (
	// ErrMissingParameter indicates the redirect lacked code or state.
	ErrMissingParameter = errors.New("callback request is missing a required query parameter")

	// ErrMalformedRequest indicates the request line could not be parsed.
	ErrMalformedRequest = errors.New("malformed callback request")
)

// ErrListenerUsed is returned when Await is called more than once.
var ErrListenerUsed = errors.New("callback listener has already been awaited")

// ProviderError is returned when the identity provider redirects back with an
// error instead of a code, for example when the user denies consent.
type ProviderError struct {
	Code        string
	Description string
	State       string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
}

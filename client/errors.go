// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "errors"

var (
	// ErrInvalidConfig indicates the client configuration was rejected by New.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrInvalidState indicates the state returned with an authorization code
	// did not validate. No detail is given on purpose.
	ErrInvalidState = errors.New("invalid authorization state")

	// ErrInvalidToken indicates the provider rejected an access token.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrPolicyDenied indicates a valid token did not satisfy a policy.
	ErrPolicyDenied = errors.New("token denied by policy")

	// ErrAuthorizationTimedOut indicates no redirect arrived within the login timeout.
	ErrAuthorizationTimedOut = errors.New("authorization timed out")

	// ErrAuthorizationCancelled indicates the login was cancelled before a redirect arrived.
	ErrAuthorizationCancelled = errors.New("authorization cancelled")

	// ErrNoRefreshToken indicates a refresh was requested without a refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")
)

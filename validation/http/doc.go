// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package http provides validation functions for values the client sends to the
identity provider.

# Header Validation

Client IDs and access tokens end up in request headers. Validate them per
RFC 7230 before use:

	if err := http.ValidateHeaderValue(accessToken); err != nil {
		// Reject the token
	}

The validator rejects CRLF sequences, other control characters and values
longer than MaxHeaderValueLength.

# Endpoint Validation

Authorization, token, revocation and validation endpoints must be absolute
https URLs. Plain http is accepted only for loopback hosts, which keeps local
test servers usable:

	if err := http.ValidateEndpointURL("https://id.twitch.tv/oauth2/token"); err != nil {
		// Handle invalid endpoint
	}
*/
package http

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr provides error types that carry the HTTP status of a failed
identity provider call.

The CodedError type implements the standard error interface and supports
wrapping via errors.Is() and errors.As().

# Provider Responses

Turn a non-2xx response into an error:

	if resp.StatusCode != http.StatusOK {
		return httperr.FromResponse(resp, ErrInvalidToken)
	}

FromResponse understands both the provider's {"status","message"} body and
the RFC 6749 {"error","error_description"} body. The RFC error code, when
present, is available through Reason.

# Extracting Status Codes

	code := httperr.Code(err)
	// Returns the code if err contains a CodedError
	// Returns http.StatusInternalServerError (500) if no CodedError found
	// Returns http.StatusOK (200) if err is nil

	if httperr.Reason(err) == "invalid_grant" {
		// The refresh token is no longer usable
	}
*/
package httperr

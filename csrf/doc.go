// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package csrf implements stateless, signed anti-forgery tokens for the OAuth
authorization code redirect flow.

A token carries its issuance time and an HMAC-SHA256 signature over that time
and an optional subject (the user or client the flow belongs to). Nothing is
stored server side: a token is valid if it was signed with the same
[SecretKey], names the same subject, and is still inside the configured age
window.

# Wire Format

	base64url_nopad( ascii(timestamp) ":" hex(hmac_sha256(key, ascii(timestamp) ":" subject)) )

The encoded form only contains URL-safe characters and can be used directly as
the OAuth state query parameter.

# Basic Usage

	key, err := csrf.NewSecretKey()
	if err != nil {
		return err
	}
	state := csrf.Generate(key, "client123")

	// ... later, on the callback ...
	if !csrf.Validate(key, state, "client123", csrf.DefaultConfig()) {
		// abort the flow
	}

# Clock Skew

When the issuer and the validator run on different machines, set
[Config.ClockSkew]. The tolerance widens both ends of the accepted window, so a
token may be presented slightly before its nominal issuance time as well as
slightly after [Config.MaxAge].

# Diagnostics

[ExtractTimestamp], [ExtractTime], [TokenAge] and [IsExpired] decode the
timestamp without checking the signature. They exist for logging and must
never gate a security decision.
*/
package csrf

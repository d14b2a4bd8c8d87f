// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package callback receives the single OAuth authorization redirect on a
loopback address.

The listener is not an HTTP server. It accepts exactly one connection, reads
the request line, and pulls the code and state query parameters out of the
request target. Headers and body are ignored.

# Outcomes

[Listener.Await] returns once one of three things happens first:

  - a redirect is received ([StatusReceived], with Code and State set)
  - the timeout elapses ([StatusTimedOut])
  - the context is cancelled ([StatusCancelled])

Timeout and cancellation are outcomes, not errors. Errors are reserved for
configuration problems (a non-loopback host, a missing port) and for a
received request that cannot be used (missing parameters, a malformed request
line, or an error redirect from the provider). An error is always paired with
[StatusUnknown].

# Usage

Bind first, then send the user to the authorization URL, then wait:

	l, err := callback.Listen("http://localhost:3000/callback")
	if err != nil {
		return err
	}
	openBrowser(authURL)
	out, err := l.Await(ctx, 2*time.Minute)

The returned State is untrusted input. Validate it with the csrf package
before exchanging the code.
*/
package callback

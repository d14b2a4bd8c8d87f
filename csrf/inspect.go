// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package csrf

import "time"

// The helpers below read the issuance time without verifying the signature.
// Use them for logging only, never to accept or reject a token.

// ExtractTimestamp returns the issuance time of token in Unix seconds.
// ok is false when the token cannot be decoded.
func ExtractTimestamp(token string) (ts int64, ok bool) {
	ts, _, ok = decode(token)
	return ts, ok
}

// ExtractTime returns the issuance time of token in UTC.
func ExtractTime(token string) (time.Time, bool) {
	ts, ok := ExtractTimestamp(token)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(ts, 0).UTC(), true
}

// TokenAge returns how long ago token was issued, relative to now.
// The result is negative for tokens issued in the future.
func TokenAge(token string, now time.Time) (time.Duration, bool) {
	issued, ok := ExtractTime(token)
	if !ok {
		return 0, false
	}
	return now.Sub(issued), true
}

// IsExpired reports whether token is older than maxAge at now.
// ok is false when the token is malformed, which is distinct from expired.
func IsExpired(token string, maxAge time.Duration, now time.Time) (expired, ok bool) {
	age, ok := TokenAge(token, now)
	if !ok {
		return false, false
	}
	return age > maxAge, true
}

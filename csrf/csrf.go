// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// SecretKeySize is the size of a CSRF signing key in bytes.
	SecretKeySize = 32

	// DefaultMaxAge is how long a token stays valid when no other
	// value is configured.
	DefaultMaxAge = 30 * time.Minute

	separator = ":"
)

// SecretKey is the symmetric key used to sign tokens.
//
// A key is generated once per client instance and held in memory for its
// lifetime. Losing the key invalidates every token signed with it.
type SecretKey [SecretKeySize]byte

// NewSecretKey returns a key filled from a cryptographically secure source.
func NewSecretKey() (SecretKey, error) {
	var k SecretKey
	if _, err := rand.Read(k[:]); err != nil {
		return SecretKey{}, fmt.Errorf("failed to generate CSRF secret key: %w", err)
	}
	return k, nil
}

// String implements fmt.Stringer without revealing key material.
func (SecretKey) String() string {
	return "csrf.SecretKey([REDACTED])"
}

// GoString implements fmt.GoStringer without revealing key material.
func (k SecretKey) GoString() string {
	return k.String()
}

// LogValue implements slog.LogValuer without revealing key material.
func (SecretKey) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

// Config controls the accepted age window of a token.
type Config struct {
	// ClockSkew widens both ends of the accepted window. Zero or negative
	// means no tolerance. Tokens carry whole seconds, so a fractional skew is
	// rounded up to the next second.
	ClockSkew time.Duration

	// MaxAge is the maximum age of a token, measured from its issuance time.
	// A fractional part is truncated to whole seconds.
	MaxAge time.Duration
}

// DefaultConfig returns a Config with DefaultMaxAge and no clock skew.
func DefaultConfig() Config {
	return Config{MaxAge: DefaultMaxAge}
}

func (c Config) tolerance() int64 {
	if c.ClockSkew <= 0 {
		return 0
	}
	secs := int64(c.ClockSkew / time.Second)
	if c.ClockSkew%time.Second != 0 {
		secs++
	}
	return secs
}

// Generate returns a token issued now and bound to subject. An empty subject
// means the token is not bound to any identity.
func Generate(key SecretKey, subject string) string {
	return GenerateAt(key, subject, time.Now())
}

// GenerateAt returns a token with the given issuance time.
func GenerateAt(key SecretKey, subject string, issued time.Time) string {
	ts := strconv.FormatInt(issued.Unix(), 10)
	raw := ts + separator + hex.EncodeToString(sign(key, ts, subject))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Validate reports whether token was signed with key for subject and is
// within the age window of cfg at the current time.
func Validate(key SecretKey, token, subject string, cfg Config) bool {
	return ValidateAt(key, token, subject, cfg, time.Now())
}

// ValidateAt is Validate evaluated at now.
//
// It never panics: malformed input, a wrong key, a wrong subject and an
// expired token are all reported as false, with no way to tell them apart.
func ValidateAt(key SecretKey, token, subject string, cfg Config, now time.Time) bool {
	ts, sig, ok := decode(token)
	if !ok || ts < 0 {
		return false
	}
	mac, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	tol := cfg.tolerance()
	age := now.Unix() - ts
	if age < -tol || age > int64(cfg.MaxAge/time.Second)+tol {
		return false
	}

	return hmac.Equal(mac, sign(key, strconv.FormatInt(ts, 10), subject))
}

func sign(key SecretKey, ts, subject string) []byte {
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(ts + separator + subject))
	return h.Sum(nil)
}

// decode splits an encoded token into its timestamp and hex signature.
func decode(token string) (int64, string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || !utf8.Valid(b) {
		return 0, "", false
	}
	parts := strings.Split(string(b), separator)
	if len(parts) != 2 {
		return 0, "", false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ts, parts[1], true
}

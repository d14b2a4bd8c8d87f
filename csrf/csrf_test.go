// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package csrf

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) SecretKey {
	t.Helper()
	k, err := NewSecretKey()
	require.NoError(t, err)
	return k
}

func encode(raw string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func TestNewSecretKey(t *testing.T) {
	t.Parallel()

	a := mustKey(t)
	b := mustKey(t)
	assert.NotEqual(t, a, b, "two generated keys should differ")
	assert.NotEqual(t, SecretKey{}, a, "key should not be all zeroes")
}

func TestSecretKey_NeverPrinted(t *testing.T) {
	t.Parallel()

	var k SecretKey
	for i := range k {
		k[i] = 0xAB
	}

	assert.NotContains(t, fmt.Sprintf("%v", k), "ab")
	assert.NotContains(t, fmt.Sprintf("%#v", k), "0xab")
	assert.NotContains(t, fmt.Sprintf("%s", k), "171")
	assert.Equal(t, "[REDACTED]", k.LogValue().String())
	assert.Equal(t, slog.KindString, k.LogValue().Kind())
}

func TestGenerate_Format(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(1700000000, 0)
	token := GenerateAt(key, "client123", issued)

	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), token, "token must be URL safe")

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^1700000000:[0-9a-f]{64}$`), string(raw))
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(1700000000, 0)

	assert.Equal(t, GenerateAt(key, "alice", issued), GenerateAt(key, "alice", issued))
	assert.NotEqual(t, GenerateAt(key, "alice", issued), GenerateAt(key, "bob", issued))
}

func TestValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	subjects := []string{"", "client123", "alice", "üñíçødé", "with:colon"}
	for _, subject := range subjects {
		t.Run(fmt.Sprintf("subject %q", subject), func(t *testing.T) {
			t.Parallel()
			key := mustKey(t)
			issued := time.Now()
			token := GenerateAt(key, subject, issued)

			assert.True(t, ValidateAt(key, token, subject, DefaultConfig(), issued))
			assert.True(t, Validate(key, token, subject, DefaultConfig()))
		})
	}
}

func TestValidate_SubjectBinding(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	token := Generate(key, "alice")

	assert.False(t, Validate(key, token, "bob", DefaultConfig()))
	assert.False(t, Validate(key, token, "", DefaultConfig()))
	assert.True(t, Validate(key, token, "alice", DefaultConfig()))
}

func TestValidate_KeyBinding(t *testing.T) {
	t.Parallel()

	keyA := mustKey(t)
	keyB := mustKey(t)
	token := Generate(keyA, "client123")

	assert.False(t, Validate(keyB, token, "client123", DefaultConfig()))
}

func TestValidate_ExpiryWindow(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	t0 := time.Unix(1700000000, 0)
	token := GenerateAt(key, "client123", t0)

	tests := []struct {
		name   string
		cfg    Config
		offset time.Duration
		want   bool
	}{
		{"at issuance", Config{MaxAge: time.Minute}, 0, true},
		{"at max age", Config{MaxAge: time.Minute}, time.Minute, true},
		{"one second past max age", Config{MaxAge: time.Minute}, time.Minute + time.Second, false},
		{"one second before issuance without skew", Config{MaxAge: time.Minute}, -time.Second, false},
		{"skew allows early presentation", Config{MaxAge: time.Minute, ClockSkew: 5 * time.Second}, -5 * time.Second, true},
		{"skew lower bound is closed", Config{MaxAge: time.Minute, ClockSkew: 5 * time.Second}, -6 * time.Second, false},
		{"skew extends max age", Config{MaxAge: time.Minute, ClockSkew: 5 * time.Second}, time.Minute + 5*time.Second, true},
		{"skew upper bound is closed", Config{MaxAge: time.Minute, ClockSkew: 5 * time.Second}, time.Minute + 6*time.Second, false},
		{"fractional skew rounds up", Config{MaxAge: time.Minute, ClockSkew: 1500 * time.Millisecond}, -2 * time.Second, true},
		{"fractional skew bound is closed", Config{MaxAge: time.Minute, ClockSkew: 1500 * time.Millisecond}, -3 * time.Second, false},
		{"sub-second skew is one second", Config{MaxAge: time.Minute, ClockSkew: time.Millisecond}, time.Minute + time.Second, true},
		{"negative skew is treated as none", Config{MaxAge: time.Minute, ClockSkew: -time.Hour}, -time.Second, false},
		{"zero max age accepts same second", Config{MaxAge: 0}, 0, true},
		{"zero max age rejects next second", Config{MaxAge: 0}, time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ValidateAt(key, token, "client123", tt.cfg, t0.Add(tt.offset))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Tampering(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	t0 := time.Unix(1700000000, 0)
	token := GenerateAt(key, "client123", t0)
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	sig := string(raw[len("1700000000:"):])

	t.Run("tampered timestamp", func(t *testing.T) {
		t.Parallel()
		forged := encode("1700000001:" + sig)
		assert.False(t, ValidateAt(key, forged, "client123", DefaultConfig(), t0))
	})

	t.Run("tampered signature", func(t *testing.T) {
		t.Parallel()
		flipped := []byte(sig)
		if flipped[0] == '0' {
			flipped[0] = '1'
		} else {
			flipped[0] = '0'
		}
		forged := encode("1700000000:" + string(flipped))
		assert.False(t, ValidateAt(key, forged, "client123", DefaultConfig(), t0))
	})

	t.Run("truncated signature", func(t *testing.T) {
		t.Parallel()
		forged := encode("1700000000:" + sig[:62])
		assert.False(t, ValidateAt(key, forged, "client123", DefaultConfig(), t0))
	})
}

func TestValidate_MalformedInput(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	now := time.Unix(1700000000, 0)
	validSig := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not base64", "not-valid-base64!!!"},
		{"non utf8 payload", base64.RawURLEncoding.EncodeToString([]byte{0xff, 0xfe, ':', 0xfd})},
		{"no separator", encode("1700000000" + validSig)},
		{"too many segments", encode("1700000000:" + validSig + ":extra")},
		{"non numeric timestamp", encode("abc:" + validSig)},
		{"empty timestamp", encode(":" + validSig)},
		{"negative timestamp", encode("-5:" + validSig)},
		{"timestamp overflow", encode("99999999999999999999:" + validSig)},
		{"odd length signature", encode("1700000000:abc")},
		{"non hex signature", encode("1700000000:zz")},
		{"empty signature", encode("1700000000:")},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.False(t, ValidateAt(key, tt.token, "", DefaultConfig(), now))
			})
		})
	}
}

func TestValidate_NegativeTimestampRejectedEvenWhenSigned(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(-10, 0)
	token := GenerateAt(key, "", issued)

	cfg := Config{MaxAge: time.Hour, ClockSkew: time.Hour}
	assert.False(t, ValidateAt(key, token, "", cfg, issued))
}

func TestValidate_EndToEnd(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	token := Generate(key, "client123")
	require.True(t, Validate(key, token, "client123", Config{MaxAge: time.Hour}))

	time.Sleep(time.Second + 100*time.Millisecond)

	assert.False(t, Validate(key, token, "client123", Config{MaxAge: 0}), "should be expired with zero max age")
	assert.True(t, Validate(key, token, "client123", Config{MaxAge: time.Hour}), "should still be valid with an hour max age")
}

func TestValidate_ConcurrentUse(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	token := Generate(key, "shared")

	done := make(chan bool, 32)
	for range 32 {
		go func() {
			done <- Validate(key, token, "shared", DefaultConfig())
		}()
	}
	for range 32 {
		assert.True(t, <-done)
	}
}

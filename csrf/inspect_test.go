// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractTimestamp(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(1700000000, 0)

	tests := []struct {
		name   string
		token  string
		wantTS int64
		wantOK bool
	}{
		{"valid token", GenerateAt(key, "x", issued), 1700000000, true},
		{"signature is not checked", encode("42:deadbeef"), 42, true},
		{"negative timestamp is reported", encode("-1:00"), -1, true},
		{"garbage", "%%%", 0, false},
		{"wrong segment count", encode("1:2:3"), 0, false},
		{"non numeric", encode("now:00"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts, ok := ExtractTimestamp(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTS, ts)
		})
	}
}

func TestExtractTime(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Date(2026, 2, 17, 10, 30, 0, 0, time.UTC)

	got, ok := ExtractTime(GenerateAt(key, "", issued))
	assert.True(t, ok)
	assert.Equal(t, issued, got)

	_, ok = ExtractTime("")
	assert.False(t, ok)
}

func TestTokenAge(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(1700000000, 0)
	token := GenerateAt(key, "", issued)

	age, ok := TokenAge(token, issued.Add(90*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, age)

	age, ok = TokenAge(token, issued.Add(-time.Second))
	assert.True(t, ok)
	assert.Equal(t, -time.Second, age)

	_, ok = TokenAge("bogus!", issued)
	assert.False(t, ok)
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	issued := time.Unix(1700000000, 0)
	token := GenerateAt(key, "", issued)

	tests := []struct {
		name        string
		token       string
		now         time.Time
		wantExpired bool
		wantOK      bool
	}{
		{"fresh", token, issued.Add(time.Minute), false, true},
		{"exactly max age", token, issued.Add(time.Hour), false, true},
		{"expired", token, issued.Add(time.Hour + time.Second), true, true},
		{"malformed is not expired", "@@@", issued, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expired, ok := IsExpired(tt.token, time.Hour, tt.now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantExpired, expired)
		})
	}
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func listen(t *testing.T, opts ...Option) *Listener {
	t.Helper()
	l, err := Listen(fmt.Sprintf("http://localhost:%d/callback", freePort(t)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func send(t *testing.T, addr net.Addr, raw string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	if raw != "" {
		_, err = io.WriteString(conn, raw)
		require.NoError(t, err)
	}
	return conn
}

func TestBindAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{name: "localhost with port", url: "http://localhost:3000/callback", want: "127.0.0.1:3000"},
		{name: "uppercase localhost", url: "http://LOCALHOST:3000", want: "127.0.0.1:3000"},
		{name: "loopback literal", url: "http://127.0.0.1:8080/cb", want: "127.0.0.1:8080"},
		{name: "remote host", url: "http://example.com:3000/callback", wantErr: ErrNonLoopbackHost},
		{name: "wildcard address", url: "http://0.0.0.0:3000/callback", wantErr: ErrNonLoopbackHost},
		{name: "other loopback name", url: "http://localhost.example.com:3000", wantErr: ErrNonLoopbackHost},
		{name: "missing port", url: "http://localhost/callback", wantErr: ErrMissingPort},
		{name: "ephemeral port", url: "http://localhost:0/callback", wantErr: ErrInvalidBindURL},
		{name: "port out of range", url: "http://localhost:70000/callback", wantErr: ErrInvalidBindURL},
		{name: "no host", url: "/callback", wantErr: ErrInvalidBindURL},
		{name: "unparseable", url: "http://[::1", wantErr: ErrInvalidBindURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BindAddress(tt.url)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListen_NonLoopbackDoesNotBind(t *testing.T) {
	t.Parallel()

	port := freePort(t)
	_, err := Await(context.Background(), fmt.Sprintf("http://example.com:%d/callback", port), time.Second)
	require.ErrorIs(t, err, ErrNonLoopbackHost)

	// The port must still be available.
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestAwait_Received(t *testing.T) {
	t.Parallel()

	l := listen(t)
	go func() {
		conn, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "GET /?code=abc&state=xyz HTTP/1.1\r\nHost: localhost\r\n\r\n")
	}()

	out, err := l.Await(context.Background(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Status: StatusReceived, Code: "abc", State: "xyz"}, out)
}

func TestAwait_ConvenienceWrapper(t *testing.T) {
	t.Parallel()

	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	go func() {
		var conn net.Conn
		assert.Eventually(t, func() bool {
			var err error
			conn, err = net.Dial("tcp", addr)
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)
		if conn == nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "GET /callback?code=c0de&state=st%3Ate HTTP/1.1\r\n\r\n")
	}()

	out, err := Await(context.Background(), fmt.Sprintf("http://localhost:%d/callback", port), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, out.Status)
	assert.Equal(t, "c0de", out.Code)
	assert.Equal(t, "st:te", out.State, "query values should be percent-decoded")
}

func TestAwait_TimesOut(t *testing.T) {
	t.Parallel()

	l := listen(t)
	start := time.Now()
	out, err := l.Await(context.Background(), 100*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, out.Status)
	assert.Empty(t, out.Code)
	assert.Empty(t, out.State)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestAwait_TimesOutWithSilentConnection(t *testing.T) {
	t.Parallel()

	l := listen(t)
	conn := send(t, l.Addr(), "")

	out, err := l.Await(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, out.Status)

	// The half-open connection is closed by the listener.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestAwait_Cancelled(t *testing.T) {
	t.Parallel()

	l := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	out, err := l.Await(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAwait_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	l := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := l.Await(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
}

func TestAwait_OneShot(t *testing.T) {
	t.Parallel()

	l := listen(t)
	send(t, l.Addr(), "GET /?code=a&state=b HTTP/1.1\r\n\r\n")

	out, err := l.Await(context.Background(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, out.Status)

	_, err = l.Await(context.Background(), time.Second)
	require.ErrorIs(t, err, ErrListenerUsed)

	// The socket is gone once Await has returned.
	_, err = net.DialTimeout("tcp", l.Addr().String(), time.Second)
	assert.Error(t, err)
}

func TestAwait_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"missing code", "GET /callback?state=xyz HTTP/1.1\r\n\r\n", ErrMissingParameter},
		{"missing state", "GET /callback?code=abc HTTP/1.1\r\n\r\n", ErrMissingParameter},
		{"empty code", "GET /callback?code=&state=xyz HTTP/1.1\r\n\r\n", ErrMissingParameter},
		{"no query", "GET /callback HTTP/1.1\r\n\r\n", ErrMissingParameter},
		{"single token line", "GARBAGE\r\n", ErrMalformedRequest},
		{"closed before newline", "GET /?code=a&state=b", ErrMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := listen(t)
			go func() {
				conn, err := net.Dial("tcp", l.Addr().String())
				if err != nil {
					return
				}
				_, _ = io.WriteString(conn, tt.raw)
				_ = conn.Close()
			}()

			out, err := l.Await(context.Background(), 5*time.Second)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StatusUnknown, out.Status)
			assert.Empty(t, out.Code)
			assert.Empty(t, out.State)
		})
	}
}

func TestAwait_RequestLineTooLong(t *testing.T) {
	t.Parallel()

	l := listen(t, WithMaxRequestLine(32))
	go func() {
		conn, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "GET /callback?code=aaaaaaaaaaaaaaaaaaaaaaaa&state=b HTTP/1.1\r\n\r\n")
	}()

	_, err := l.Await(context.Background(), 5*time.Second)
	require.ErrorIs(t, err, ErrMalformedRequest)
}

func TestAwait_ProviderError(t *testing.T) {
	t.Parallel()

	l := listen(t)
	send(t, l.Addr(), "GET /callback?error=access_denied&error_description=The+user+denied+you+access&state=s1 HTTP/1.1\r\n\r\n")

	out, err := l.Await(context.Background(), 5*time.Second)
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "access_denied", perr.Code)
	assert.Equal(t, "The user denied you access", perr.Description)
	assert.Equal(t, "s1", perr.State)
	assert.NotEqual(t, StatusReceived, out.Status)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestAwait_PlainTextResponder(t *testing.T) {
	t.Parallel()

	l := listen(t, WithResponder(PlainTextResponder))

	type reply struct {
		status int
		body   string
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/callback?code=abc&state=xyz", l.Addr()))
		if err != nil {
			replies <- reply{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		replies <- reply{status: resp.StatusCode, body: string(b), err: err}
	}()

	out, err := l.Await(context.Background(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Code)

	r := <-replies
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.body, "Authorization received")
}

func TestParseRequestLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Outcome
		wantErr error
	}{
		{
			name: "origin form",
			line: "GET /callback?code=abc&state=xyz HTTP/1.1",
			want: Outcome{Status: StatusReceived, Code: "abc", State: "xyz"},
		},
		{
			name: "absolute form",
			line: "GET http://localhost:3000/callback?state=xyz&code=abc HTTP/1.1",
			want: Outcome{Status: StatusReceived, Code: "abc", State: "xyz"},
		},
		{
			name: "extra parameters are ignored",
			line: "GET /?code=abc&scope=user%3Aread%3Aemail&state=xyz HTTP/1.1",
			want: Outcome{Status: StatusReceived, Code: "abc", State: "xyz"},
		},
		{
			name: "no protocol version",
			line: "GET /?code=abc&state=xyz",
			want: Outcome{Status: StatusReceived, Code: "abc", State: "xyz"},
		},
		{name: "empty line", line: "", wantErr: ErrMalformedRequest},
		{name: "bad escape", line: "GET /%zz?code=a&state=b HTTP/1.1", wantErr: ErrMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseRequestLine(tt.line)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "received", StatusReceived.String())
	assert.Equal(t, "timed_out", StatusTimedOut.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.Equal(t, StatusUnknown, Outcome{}.Status)
}

func TestAwait_ResponderPanic(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	l := listen(t, WithLogger(logger), WithResponder(func(io.Writer, error) {
		panic("responder exploded")
	}))
	send(t, l.Addr(), "GET /callback?code=abc&state=xyz HTTP/1.1\r\n\r\n")

	out, err := l.Await(context.Background(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, out.Status)
	assert.Equal(t, "abc", out.Code)
	assert.Contains(t, logs.String(), "responder exploded")
	assert.Contains(t, logs.String(), "callback responder panicked")
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxRequestLine bounds how many bytes are read from the connection.
const DefaultMaxRequestLine = 8 << 10

// loopbackIP is the only address the listener ever binds.
const loopbackIP = "127.0.0.1"

// Status is the terminal state of a single Await call.
type Status int

const (
	// StatusUnknown is the zero value. Await reports it only alongside an error.
	StatusUnknown Status = iota
	// StatusReceived means a redirect carrying code and state arrived.
	StatusReceived
	// StatusTimedOut means the timeout elapsed before a redirect arrived.
	StatusTimedOut
	// StatusCancelled means the context was cancelled first.
	StatusCancelled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusTimedOut:
		return "timed_out"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of Await. Code and State are only set when Status is
// StatusReceived.
type Outcome struct {
	Status Status
	Code   string
	State  string
}

// Responder writes a reply on the accepted connection. err is the result of
// parsing the request line, nil on success.
type Responder func(w io.Writer, err error)

type config struct {
	responder Responder
	logger    *slog.Logger
	maxLine   int
}

// Option configures a Listener.
type Option func(*config)

// WithResponder sets a Responder for the accepted connection. By default no
// reply is written and the connection is simply closed.
func WithResponder(r Responder) Option {
	return func(c *config) {
		c.responder = r
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxRequestLine overrides DefaultMaxRequestLine.
func WithMaxRequestLine(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLine = n
		}
	}
}

// BindAddress validates bindURL and returns the loopback address it maps to.
// The host must be "localhost" (any case) or the literal 127.0.0.1; either way
// the returned address is 127.0.0.1:<port>. It performs no network activity.
func BindAddress(bindURL string) (string, error) {
	u, err := url.Parse(bindURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBindURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidBindURL, bindURL)
	}

	host := u.Hostname()
	if !strings.EqualFold(host, "localhost") && host != loopbackIP {
		return "", fmt.Errorf("%w: got %q", ErrNonLoopbackHost, host)
	}

	port := u.Port()
	if port == "" {
		return "", ErrMissingPort
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return "", fmt.Errorf("%w: invalid port %q", ErrInvalidBindURL, port)
	}

	return net.JoinHostPort(loopbackIP, port), nil
}

// Listener is a bound loopback socket that accepts at most one connection.
type Listener struct {
	ln   net.Listener
	cfg  config
	used atomic.Bool
}

// Listen validates bindURL and binds the loopback listener. Configuration
// errors are returned before any socket is opened.
func Listen(bindURL string, opts ...Option) (*Listener, error) {
	addr, err := BindAddress(bindURL)
	if err != nil {
		return nil, err
	}

	cfg := config{
		logger:  slog.New(slog.DiscardHandler),
		maxLine: DefaultMaxRequestLine,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener on %s: %w", addr, err)
	}
	cfg.logger.Debug("callback listener bound", "addr", ln.Addr().String())

	return &Listener{ln: ln, cfg: cfg}, nil
}

// Await is a convenience wrapper around Listen and Listener.Await.
func Await(ctx context.Context, bindURL string, timeout time.Duration, opts ...Option) (Outcome, error) {
	l, err := Listen(bindURL, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return l.Await(ctx, timeout)
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close releases the socket without waiting. It is safe to call after Await.
func (l *Listener) Close() error {
	return l.ln.Close()
}

type result struct {
	outcome Outcome
	err     error
}

// Await waits for the first of: one redirect, the timeout, or ctx being done.
// The socket is closed when Await returns, so at most one connection is ever
// read. Await can only be called once.
func (l *Listener) Await(ctx context.Context, timeout time.Duration) (Outcome, error) {
	if !l.used.CompareAndSwap(false, true) {
		return Outcome{}, ErrListenerUsed
	}
	if ctx.Err() != nil {
		_ = l.ln.Close()
		return Outcome{Status: StatusCancelled}, nil
	}

	conns := &connTracker{}
	results := make(chan result, 1)
	go l.serveOne(conns, time.Now().Add(timeout), results)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		_ = l.ln.Close()
		return r.outcome, r.err
	case <-timer.C:
		l.abandon(conns)
		l.cfg.logger.Debug("callback timed out", "timeout", timeout)
		return Outcome{Status: StatusTimedOut}, nil
	case <-ctx.Done():
		l.abandon(conns)
		l.cfg.logger.Debug("callback cancelled", "cause", context.Cause(ctx))
		return Outcome{Status: StatusCancelled}, nil
	}
}

func (l *Listener) abandon(conns *connTracker) {
	_ = l.ln.Close()
	conns.close()
}

// serveOne accepts a single connection and parses its request line. After the
// listener is abandoned its result is dropped into the buffered channel and
// never read.
func (l *Listener) serveOne(conns *connTracker, deadline time.Time, results chan<- result) {
	conn, err := l.ln.Accept()
	if err != nil {
		results <- result{err: fmt.Errorf("failed to accept callback connection: %w", err)}
		return
	}
	if !conns.track(conn) {
		_ = conn.Close()
		return
	}
	defer conn.Close()
	_ = conn.SetDeadline(deadline)

	l.cfg.logger.Debug("callback connection accepted", "remote", conn.RemoteAddr().String())

	br := bufio.NewReader(io.LimitReader(conn, int64(l.cfg.maxLine)))
	out, perr := readRequestLine(br)
	if l.cfg.responder != nil {
		discardHeaders(br)
		l.respond(conn, perr)
	}
	results <- result{outcome: out, err: perr}
}

// respond runs the Responder. A panic is logged with its stack and swallowed.
func (l *Listener) respond(w io.Writer, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.cfg.logger.Error("callback responder panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	l.cfg.responder(w, err)
}

func readRequestLine(br *bufio.Reader) (Outcome, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return parseRequestLine(strings.TrimRight(line, "\r\n"))
}

// parseRequestLine extracts code and state from a line such as
// "GET /callback?code=abc&state=xyz HTTP/1.1".
func parseRequestLine(line string) (Outcome, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Outcome{}, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}

	base := &url.URL{Scheme: "http", Host: "localhost"}
	target, err := base.Parse(fields[1])
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	q := target.Query()
	if code := q.Get("error"); code != "" {
		return Outcome{}, &ProviderError{
			Code:        code,
			Description: q.Get("error_description"),
			State:       q.Get("state"),
		}
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" {
		return Outcome{}, fmt.Errorf("%w: code", ErrMissingParameter)
	}
	if state == "" {
		return Outcome{}, fmt.Errorf("%w: state", ErrMissingParameter)
	}

	return Outcome{Status: StatusReceived, Code: code, State: state}, nil
}

// discardHeaders consumes header lines up to the blank line so that a reply
// is not cut off by a reset from unread input.
func discardHeaders(br *bufio.Reader) {
	for {
		line, err := br.ReadString('\n')
		if err != nil || line == "\r\n" || line == "\n" {
			return
		}
	}
}

// PlainTextResponder replies with a short text page and closes the connection.
func PlainTextResponder(w io.Writer, err error) {
	status, body := "200 OK", "Authorization received. You can close this window.\n"
	if err != nil {
		status, body = "400 Bad Request", "Authorization failed. Return to the application for details.\n"
	}
	_, _ = fmt.Fprintf(w,
		"HTTP/1.1 %s\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		status, len(body), body)
}

// connTracker lets Await close a connection that serveOne is still reading.
type connTracker struct {
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func (t *connTracker) track(c net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.conn = c
	return true
}

func (t *connTracker) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.conn != nil {
		_ = t.conn.Close()
	}
}

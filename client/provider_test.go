// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/scope"
)

const (
	testClientID     = "test-client"
	testClientSecret = "test-secret"
	testCode         = "good-code"
	testAccessToken  = "access-1"
	testRefreshToken = "refresh-1"
	testAppToken     = "app-token"
)

// fakeProvider mimics the identity provider's token, validate and revoke
// endpoints.
type fakeProvider struct {
	srv *httptest.Server

	tokenCalls    atomic.Int32
	validateCalls atomic.Int32
	revokeCalls   atomic.Int32

	// refreshStarted receives once a refresh request reaches the handler;
	// refreshGate, when set, holds it until closed.
	refreshStarted chan struct{}
	refreshGate    chan struct{}

	idToken string

	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		refreshStarted: make(chan struct{}, 1),
		revoked:        map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", p.token)
	mux.HandleFunc("GET /validate", p.validate)
	mux.HandleFunc("POST /revoke", p.revoke)
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) endpoints() oauth.Endpoints {
	return oauth.Endpoints{
		AuthURL:     p.srv.URL + "/authorize",
		TokenURL:    p.srv.URL + "/token",
		RevokeURL:   p.srv.URL + "/revoke",
		ValidateURL: p.srv.URL + "/validate",
	}
}

func (p *fakeProvider) config(redirectURL string) Config {
	return Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []scope.Scope{scope.UserReadEmail, scope.ChatRead},
		Endpoints:    p.endpoints(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func providerError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":  status,
		"error":   http.StatusText(status),
		"message": msg,
	})
}

func (p *fakeProvider) token(w http.ResponseWriter, r *http.Request) {
	p.tokenCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		providerError(w, http.StatusBadRequest, "malformed form")
		return
	}
	if r.PostForm.Get("client_id") != testClientID || r.PostForm.Get("client_secret") != testClientSecret {
		providerError(w, http.StatusForbidden, "invalid client secret")
		return
	}

	switch r.PostForm.Get("grant_type") {
	case oauth.GrantTypeAuthorizationCode:
		if r.PostForm.Get("code") != testCode {
			providerError(w, http.StatusBadRequest, "Invalid authorization code")
			return
		}
		body := map[string]any{
			"access_token":  testAccessToken,
			"refresh_token": testRefreshToken,
			"expires_in":    3600,
			"scope":         []string{"user:read:email", "chat:read"},
			"token_type":    "bearer",
		}
		if p.idToken != "" {
			body["id_token"] = p.idToken
		}
		writeJSON(w, http.StatusOK, body)

	case oauth.GrantTypeRefreshToken:
		select {
		case p.refreshStarted <- struct{}{}:
		default:
		}
		if p.refreshGate != nil {
			<-p.refreshGate
		}
		if r.PostForm.Get("refresh_token") != testRefreshToken {
			providerError(w, http.StatusBadRequest, "Invalid refresh token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
			"scope":         []string{"user:read:email", "chat:read"},
			"token_type":    "bearer",
		})

	case oauth.GrantTypeClientCredentials:
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": testAppToken,
			"expires_in":   5011271,
			"token_type":   "bearer",
		})

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "unsupported_grant_type",
			"error_description": "grant type not supported",
		})
	}
}

func (p *fakeProvider) isRevoked(tok string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revoked[tok]
}

func (p *fakeProvider) validate(w http.ResponseWriter, r *http.Request) {
	p.validateCalls.Add(1)
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), oauth.AuthSchemeOAuth+" ")
	if !ok || p.isRevoked(tok) {
		providerError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	switch tok {
	case testAccessToken:
		writeJSON(w, http.StatusOK, map[string]any{
			"client_id":  testClientID,
			"login":      "someone",
			"user_id":    "42",
			"scopes":     []string{"user:read:email", "chat:read"},
			"expires_in": 3600,
		})
	case testAppToken:
		writeJSON(w, http.StatusOK, map[string]any{
			"client_id":  testClientID,
			"scopes":     []string{},
			"expires_in": 5011271,
		})
	default:
		providerError(w, http.StatusUnauthorized, "invalid access token")
	}
}

func (p *fakeProvider) revoke(w http.ResponseWriter, r *http.Request) {
	p.revokeCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		providerError(w, http.StatusBadRequest, "malformed form")
		return
	}
	if r.PostForm.Get("client_id") != testClientID {
		providerError(w, http.StatusNotFound, "client does not exist")
		return
	}
	tok := r.PostForm.Get("token")
	if (tok != testAccessToken && tok != testAppToken) || p.isRevoked(tok) {
		providerError(w, http.StatusBadRequest, "Invalid token")
		return
	}
	p.mu.Lock()
	p.revoked[tok] = true
	p.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func newTestClient(t *testing.T, p *fakeProvider, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(p.srv.Client())}, opts...)
	c, err := New(p.config("http://localhost:3000/callback"), opts...)
	require.NoError(t, err)
	return c
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/stacklok/toolhive-oauth/scope"
)

// ErrNoIDToken is returned by Token.IDClaims when no ID token was issued.
var ErrNoIDToken = errors.New("token has no id_token")

// Token is an access token with its refresh token and granted scopes.
type Token struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type,omitempty"`
	Expiry       time.Time     `json:"expiry,omitzero"`
	Scopes       []scope.Scope `json:"scopes,omitempty"`
	IDToken      string        `json:"id_token,omitempty"`
}

// HasRefreshToken reports whether the token can be refreshed.
func (t *Token) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != ""
}

// IsExpired reports whether the token is expired at now. A token without an
// expiry never expires.
func (t *Token) IsExpired(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}

// IDClaims decodes the claims of the OpenID Connect ID token without
// verifying its signature. Use it for display and diagnostics only.
func (t *Token) IDClaims() (jwt.MapClaims, error) {
	if t == nil || t.IDToken == "" {
		return nil, ErrNoIDToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id_token: %w", err)
	}
	return claims, nil
}

// oauth2Token converts back for use with an oauth2.TokenSource.
func (t *Token) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// fromOAuth2 converts a token response. The provider returns "scope" as a
// JSON array; a space-separated string is accepted too.
func fromOAuth2(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	switch v := tok.Extra("scope").(type) {
	case []any:
		raw := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				raw = append(raw, str)
			}
		}
		out.Scopes = scope.FromStrings(raw)
	case string:
		out.Scopes = scope.Parse(v)
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = id
	}
	return out
}

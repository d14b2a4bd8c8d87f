// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client implements the authorization code, refresh token and client
// credentials grants against the identity provider, plus token validation and
// revocation.
//
// # Authorization Code Flow
//
// Login runs the whole flow through a loopback redirect. The callback listener
// is bound before the user is sent to the authorization URL:
//
//	c, err := client.New(client.Config{
//		ClientID:     id,
//		ClientSecret: secret,
//		RedirectURL:  "http://localhost:3000/callback",
//		Scopes:       []scope.Scope{scope.UserReadEmail},
//	})
//	if err != nil {
//		return err
//	}
//	tok, err := c.Login(ctx, "", client.LoginOptions{
//		Open: func(u string) error {
//			fmt.Println("Open this URL to authorize:", u)
//			return nil
//		},
//	})
//
// Servers that receive the redirect themselves use AuthorizationURL and
// CompleteAuthorization. The state value is signed with the client's key and
// bound to the subject passed to both calls.
//
// # Validation
//
// Validate asks the provider about an access token. Authorize additionally
// evaluates a policy.Policy against the result:
//
//	p, _ := policy.Compile(`"chat:read" in scopes`)
//	v, err := c.Authorize(ctx, accessToken, p)
//	if errors.Is(err, client.ErrPolicyDenied) {
//		// token is valid but lacks chat:read
//	}
package client

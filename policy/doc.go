// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package policy compiles CEL expressions that decide whether a validated access
token is acceptable.

Expressions see these variables:

	client_id   string        client the token was issued to
	login       string        user login, empty for app tokens
	user_id     string        user ID, empty for app tokens
	scopes      list(string)  granted scopes
	expires_in  int           seconds until expiry

# Basic Usage

	p, err := policy.Compile(`"chat:read" in scopes && expires_in > 300`)
	if err != nil {
	    return err
	}
	ok, err := p.Allows(validated.Activation())

# Error Handling

Compilation errors carry the source and issue locations:

	_, err := policy.Compile(`"chat:read" in scope`)
	var checkErr *policy.CheckError
	if errors.As(err, &checkErr) {
	    fmt.Println(checkErr.AsJSON())
	}

Expressions are bounded by DefaultMaxExpressionLength and DefaultCostLimit.
A compiled Policy is safe for concurrent use.
*/
package policy

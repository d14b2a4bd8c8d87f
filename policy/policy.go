// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

const (
	// DefaultMaxExpressionLength is the maximum allowed length for a policy expression.
	DefaultMaxExpressionLength = 4096

	// DefaultCostLimit is the default runtime cost limit for policy evaluation.
	DefaultCostLimit = 100000
)

// Variables available to policy expressions.
const (
	VarClientID  = "client_id"
	VarLogin     = "login"
	VarUserID    = "user_id"
	VarScopes    = "scopes"
	VarExpiresIn = "expires_in"
)

// env is shared by every policy. Declarations never change, so it is built once.
var env = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarClientID, cel.StringType),
		cel.Variable(VarLogin, cel.StringType),
		cel.Variable(VarUserID, cel.StringType),
		cel.Variable(VarScopes, cel.ListType(cel.StringType)),
		cel.Variable(VarExpiresIn, cel.IntType),
	)
})

type options struct {
	maxExpressionLength int
	costLimit           uint64
}

// Option tunes compilation limits.
type Option func(*options)

// WithMaxExpressionLength overrides DefaultMaxExpressionLength.
func WithMaxExpressionLength(n int) Option {
	return func(o *options) {
		o.maxExpressionLength = n
	}
}

// WithCostLimit overrides DefaultCostLimit.
func WithCostLimit(limit uint64) Option {
	return func(o *options) {
		o.costLimit = limit
	}
}

// Policy is a compiled boolean requirement on a validated token.
// It is safe for concurrent use.
type Policy struct {
	source  string
	program cel.Program
}

// Source returns the original expression.
func (p *Policy) Source() string {
	return p.source
}

// String implements fmt.Stringer.
func (p *Policy) String() string {
	return p.source
}

// Compile parses, type checks and compiles expr. The expression must
// evaluate to a bool.
//
// Returns a ParseError for syntax errors and a CheckError for type errors,
// including a non-bool result type.
func Compile(expr string, opts ...Option) (*Policy, error) {
	o := options{
		maxExpressionLength: DefaultMaxExpressionLength,
		costLimit:           DefaultCostLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	checked, err := check(expr, o.maxExpressionLength)
	if err != nil {
		return nil, err
	}

	e, _ := env()
	program, err := e.Program(checked, cel.CostLimit(o.costLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create program for %q: %w", expr, err)
	}

	return &Policy{source: expr, program: program}, nil
}

// Check validates expr without building a program. Useful for configuration validation.
func Check(expr string) error {
	_, err := check(expr, DefaultMaxExpressionLength)
	return err
}

func check(expr string, maxLen int) (*cel.Ast, error) {
	if len(expr) > maxLen {
		return nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), maxLen)
	}

	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	parsed, issues := e.Parse(expr)
	if issues.Err() != nil {
		return nil, newParseError(expr, issues)
	}

	checked, issues := e.Check(parsed)
	if issues.Err() != nil {
		return nil, newCheckError(expr, issues)
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression %q must evaluate to bool, got %s",
			ErrExpressionCheck, expr, checked.OutputType())
	}

	return checked, nil
}

// Allows evaluates the policy against an activation built from a validated
// token. Every variable must be present.
func (p *Policy) Allows(activation map[string]any) (bool, error) {
	out, _, err := p.program.Eval(activation)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrEvaluation, err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrInvalidResult, out.Value())
	}
	return allowed, nil
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for policy compilation and evaluation.
var (
	// ErrExpressionCheck is returned when a policy fails syntax or type checking.
	ErrExpressionCheck = errors.New("policy check failed")

	// ErrEvaluation is returned when evaluation fails, for example on a missing variable.
	ErrEvaluation = errors.New("policy evaluation failed")

	// ErrInvalidResult is returned when evaluation does not produce a bool.
	ErrInvalidResult = errors.New("policy returned a non-bool result")
)

// ErrKind identifies the compilation stage that failed.
type ErrKind string

const (
	// ErrKindParse indicates a syntax error in the CEL expression.
	ErrKindParse ErrKind = "parse"
	// ErrKindCheck indicates a type checking error in the CEL expression.
	ErrKindCheck ErrKind = "check"
)

// ErrInstance is one issue at a source location.
type ErrInstance struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// ErrDetails lists the issues found in a policy expression.
type ErrDetails struct {
	Errors []ErrInstance `json:"errors,omitempty"`
	Source string        `json:"source,omitempty"`
}

// AsJSON returns the ErrDetails as a JSON string.
func (ed *ErrDetails) AsJSON() string {
	edBytes, err := json.Marshal(ed)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err)
	}
	return string(edBytes)
}

func detailsFromIssues(source string, issues *cel.Issues) ErrDetails {
	ed := ErrDetails{Source: source, Errors: make([]ErrInstance, 0, len(issues.Errors()))}
	for _, err := range issues.Errors() {
		ed.Errors = append(ed.Errors, ErrInstance{
			Line: err.Location.Line(),
			Col:  err.Location.Column(),
			Msg:  err.Message,
		})
	}

	return ed
}

// ParseError is a syntax error in a policy expression.
type ParseError struct {
	ErrDetails
	original error
}

// Error implements the error interface.
func (pe *ParseError) Error() string {
	return fmt.Sprintf("policy %s error in %q: %s", ErrKindParse, pe.Source, pe.original)
}

// Unwrap returns the underlying error.
func (pe *ParseError) Unwrap() error {
	return pe.original
}

// CheckError is a type error in a policy expression, such as an unknown variable.
type CheckError struct {
	ErrDetails
	original error
}

// Error implements the error interface.
func (ce *CheckError) Error() string {
	return fmt.Sprintf("policy %s error in %q: %s", ErrKindCheck, ce.Source, ce.original)
}

// Unwrap returns the underlying error.
func (ce *CheckError) Unwrap() error {
	return ce.original
}

func newParseError(source string, issues *cel.Issues) error {
	return &ParseError{
		ErrDetails: detailsFromIssues(source, issues),
		original:   fmt.Errorf("%w: %w", ErrExpressionCheck, issues.Err()),
	}
}

func newCheckError(source string, issues *cel.Issues) error {
	return &CheckError{
		ErrDetails: detailsFromIssues(source, issues),
		original:   fmt.Errorf("%w: %w", ErrExpressionCheck, issues.Err()),
	}
}

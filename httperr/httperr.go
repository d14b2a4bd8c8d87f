// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package httperr provides error types that carry the HTTP status of a failed provider call.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 64 << 10

// CodedError wraps an error with an HTTP status code and, when the provider
// supplied one, its machine-readable error reason (for example "invalid_grant").
type CodedError struct {
	err    error
	code   int
	reason string
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *CodedError) HTTPCode() int {
	return e.code
}

// Reason returns the provider's error reason, or "" if none was given.
func (e *CodedError) Reason() string {
	return e.reason
}

// WithCode wraps an error with an HTTP status code.
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// Code extracts the HTTP status code from an error.
// It unwraps the error chain looking for a CodedError.
// If no CodedError is found, it returns http.StatusInternalServerError (500).
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}

	return http.StatusInternalServerError
}

// Reason extracts the provider error reason from an error chain.
func Reason(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.reason
	}
	return ""
}

// New creates a new error with the given message and HTTP status code.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// providerBody covers both error shapes the provider returns: its own
// {"status","message"} form and the RFC 6749 {"error","error_description"} form.
type providerBody struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// FromResponse builds a CodedError from a non-2xx provider response. It reads
// (and does not close) the response body.
func FromResponse(resp *http.Response, sentinel error) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return FromStatus(resp.StatusCode, raw, sentinel)
}

// FromStatus builds a CodedError from a status code and an already-read
// response body. The returned error wraps sentinel when sentinel is non-nil
// so callers can match it with errors.Is.
func FromStatus(status int, raw []byte, sentinel error) error {
	var body providerBody
	_ = json.Unmarshal(raw, &body)

	reason := body.Error
	msg := body.Message
	if msg == "" {
		msg = body.Description
	}
	if msg == "" && body.Error == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = reason
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	// The provider's own shape puts the status text in "error".
	if body.Message != "" && strings.EqualFold(reason, http.StatusText(status)) {
		reason = ""
	}

	var err error
	if sentinel != nil {
		err = fmt.Errorf("%w: provider returned %d: %s", sentinel, status, msg)
	} else {
		err = fmt.Errorf("provider returned %d: %s", status, msg)
	}
	return &CodedError{err: err, code: status, reason: reason}
}

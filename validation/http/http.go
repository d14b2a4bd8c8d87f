// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package http provides validation functions for values sent to the identity provider.
package http

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// MaxHeaderValueLength bounds credentials placed in request headers.
const MaxHeaderValueLength = 8192

// ValidateHeaderValue validates that a string is a valid HTTP header value per RFC 7230.
// It checks for CRLF injection and control characters.
func ValidateHeaderValue(value string) error {
	if value == "" {
		return fmt.Errorf("header value cannot be empty")
	}

	if len(value) > MaxHeaderValueLength {
		return fmt.Errorf("header value exceeds maximum length of %d bytes", MaxHeaderValueLength)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid HTTP header value: contains control characters")
	}

	return nil
}

// ValidateEndpointURL validates a provider endpoint URL.
//
// A valid endpoint:
//   - Is absolute with a host that is a valid Host header
//   - Uses https, or http when the host is loopback
//   - Has no fragment, user info or query
func ValidateEndpointURL(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint URL cannot be empty")
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}

	if parsed.Host == "" {
		return fmt.Errorf("endpoint URL must include a host: %s", endpoint)
	}
	if !httpguts.ValidHostHeader(parsed.Host) {
		return fmt.Errorf("endpoint URL has an invalid host: %s", endpoint)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !IsLoopbackHost(parsed.Hostname()) {
			return fmt.Errorf("endpoint URL must use https for non-loopback hosts: %s", endpoint)
		}
	default:
		return fmt.Errorf("endpoint URL must use http or https: %s", endpoint)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("endpoint URL must not contain fragments (#): %s", endpoint)
	}
	if parsed.User != nil {
		return fmt.Errorf("endpoint URL must not contain user info: %s", endpoint)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("endpoint URL must not contain a query: %s", endpoint)
	}

	return nil
}

// IsLoopbackHost reports whether host is localhost or a loopback IP literal.
func IsLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

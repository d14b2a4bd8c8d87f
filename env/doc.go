// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

# Basic Usage

Use OSReader to read environment variables via the standard os package:

	reader := &env.OSReader{}
	clientID := reader.Getenv("CLIENT_ID")
	port := env.GetOr(reader, "PORT", "3000")

# Dotenv Files

LoadDotenv reads KEY=VALUE files (via github.com/joho/godotenv) into the
process environment. Variables that are already set are not overridden, and
missing files are skipped:

	if err := env.LoadDotenv(".env"); err != nil {
		return err
	}

# Testing

The Reader interface allows injecting a mock in tests to avoid relying on
real environment variables. A generated mock is available in the mocks
sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("CLIENT_ID").Return("test-client")

	result := myFunc(mock)

Production code such as the config loader accepts an env.Reader, while tests
substitute the generated mock.
*/
package env

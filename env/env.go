// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDotenvFile is the dotenv file loaded when no path is given.
const DefaultDotenvFile = ".env"

// Reader defines an interface for environment variable access
type Reader interface {
	Getenv(key string) string
}

// OSReader implements Reader using the standard os package
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// GetOr returns r.Getenv(key), or def when the variable is unset or empty.
func GetOr(r Reader, key, def string) string {
	if v := r.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadDotenv loads variables from the given dotenv files into the process
// environment without overriding variables that are already set. Files that
// do not exist are skipped. With no paths, DefaultDotenvFile is tried.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotenvFile}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

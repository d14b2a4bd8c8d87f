// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging provides a pre-configured [log/slog.Logger] factory with
consistent defaults and credential redaction.

Library packages in this module take a *slog.Logger option and log nothing by
default. Binaries build their logger here so that every token, code, state
and secret that reaches a log attribute is replaced with [Redacted].

# Defaults

  - Format: JSON ([FormatJSON]) via [log/slog.JSONHandler]
  - Level: INFO ([log/slog.LevelInfo])
  - Output: [os.Stderr]
  - Timestamps: [time.RFC3339]
  - Redaction: [DefaultRedactedKeys], matched case-insensitively

# Basic Usage

Create a logger with default settings:

	logger := logging.New()
	logger.Info("token refreshed", "access_token", tok) // access_token=[REDACTED]

# Configuration

Use functional options to customize the logger:

	logger := logging.New(
		logging.WithFormat(logging.FormatText),
		logging.WithLevel(slog.LevelDebug),
	)

# Dynamic Level Changes

Pass a [log/slog.LevelVar] to change the level at runtime:

	var lvl slog.LevelVar
	logger := logging.New(logging.WithLevel(&lvl))
	lvl.Set(slog.LevelDebug) // takes effect immediately

# Testing

Inject a buffer to capture log output in tests:

	var buf bytes.Buffer
	logger := logging.New(logging.WithOutput(&buf))
	logger.Info("test message")
	// inspect buf.String()

# Handler Access

Use [NewHandler] when you need to wrap the handler with middleware:

	base := logging.NewHandler(logging.WithLevel(slog.LevelDebug))
	wrapped := &myMiddleware{Handler: base}
	logger := slog.New(wrapped)

# Flags

[ParseLevel] and [ParseFormat] turn command-line flag values into options:

	lvl, err := logging.ParseLevel("debug")
	format, err := logging.ParseFormat("text")
	logger := logging.New(logging.WithLevel(lvl), logging.WithFormat(format))
*/
package logging

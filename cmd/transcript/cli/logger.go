// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogParams adds --verbose to a command. Embed it in a params struct.
type LogParams struct {
	Verbose bool `flag:"verbose,v" desc:"log debug detail about entries that could not be fully interpreted"`
}

// LogLevel returns the level the command logger should use.
func (p *LogParams) LogLevel() slog.Level {
	if p.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// levelSource is implemented by params structs that embed LogParams.
type levelSource interface {
	LogLevel() slog.Level
}

// NewCommandLogger creates a structured logger for CLI commands.
// When stderr is a terminal it uses slog.TextHandler for
// human-readable output; when stderr is piped or redirected it uses
// slog.JSONHandler for machine-parseable output.
func NewCommandLogger(level slog.Level) *slog.Logger {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	return newLogger(os.Stderr, isTerminal, level)
}

func newLogger(w io.Writer, text bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if text {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

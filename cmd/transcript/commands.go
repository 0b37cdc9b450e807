// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/transcript/cmd/transcript/cli"
	"github.com/bureau-foundation/transcript/lib/version"
)

// rootCommand builds the command tree. Command output goes to stdout;
// help and logs go to stderr.
func rootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "transcript",
		Description: `transcript: render Claude Code session logs as Markdown.

Reads the JSONL log Claude Code writes for each session and produces a
readable transcript: the conversation, questions with the chosen
answers, and every plan revision with what changed between them.`,
		Subcommands: []*cli.Command{
			renderCommand(stdout),
			plansCommand(stdout),
			presetsCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(stdout, "transcript %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

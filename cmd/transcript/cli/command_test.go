// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type testParams struct {
	LogParams
	Title string `flag:"title" desc:"document title"`
	Jobs  int    `flag:"jobs,j" desc:"parallel renders" default:"4"`
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "transcript",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "render",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "render"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"render"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "render" {
		t.Errorf("dispatched to %q, want %q", called, "render")
	}
}

func TestCommand_Execute_ParsesParams(t *testing.T) {
	var params testParams
	var receivedArgs []string
	var debugEnabled bool

	root := &Command{
		Name: "transcript",
		Subcommands: []*Command{{
			Name:   "render",
			Params: func() any { return &params },
			Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
				receivedArgs = args
				debugEnabled = logger.Enabled(ctx, slog.LevelDebug)
				return nil
			},
		}},
	}

	err := root.Execute(context.Background(), []string{"render", "--title", "Fix bug", "-v", "a.jsonl", "b.jsonl"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Title != "Fix bug" || params.Jobs != 4 {
		t.Errorf("params = %+v", params)
	}
	if len(receivedArgs) != 2 || receivedArgs[0] != "a.jsonl" || receivedArgs[1] != "b.jsonl" {
		t.Errorf("args = %v", receivedArgs)
	}
	if !debugEnabled {
		t.Error("--verbose should enable debug logging")
	}
}

func TestCommand_Execute_RunWithSubcommands(t *testing.T) {
	var called string
	plans := &Command{
		Name: "plans",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			called = "plans " + strings.Join(args, " ")
			return nil
		},
		Subcommands: []*Command{{
			Name: "export",
			Run: func(_ context.Context, args []string, _ *slog.Logger) error {
				called = "export " + strings.Join(args, " ")
				return nil
			},
		}},
	}
	root := &Command{Name: "transcript", Subcommands: []*Command{plans}}

	if err := root.Execute(context.Background(), []string{"plans", "session.jsonl"}); err != nil {
		t.Fatal(err)
	}
	if called != "plans session.jsonl" {
		t.Errorf("called = %q", called)
	}

	if err := root.Execute(context.Background(), []string{"plans", "export", "session.jsonl"}); err != nil {
		t.Fatal(err)
	}
	if called != "export session.jsonl" {
		t.Errorf("called = %q", called)
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name:       "transcript",
		HelpOutput: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "render", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"rendr"})
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "render"?`) {
		t.Errorf("error should suggest render: %v", err)
	}
}

func TestCommand_Execute_UnknownFlag(t *testing.T) {
	var params testParams
	root := &Command{
		Name: "transcript",
		Subcommands: []*Command{{
			Name:   "render",
			Params: func() any { return &params },
			Run:    func(context.Context, []string, *slog.Logger) error { return nil },
		}},
	}

	err := root.Execute(context.Background(), []string{"render", "--titel", "x"})
	if err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --title?") {
		t.Errorf("error should suggest --title: %v", err)
	}
	if !strings.Contains(err.Error(), "Run 'transcript render --help'") {
		t.Errorf("error should point at help: %v", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "transcript",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "render", Summary: "Render a session log"}},
	}

	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("expected an error without a subcommand")
	}
	if !strings.Contains(help.String(), "render   Render a session log") {
		t.Errorf("help should list subcommands:\n%s", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params testParams
	var help bytes.Buffer
	root := &Command{Name: "transcript", HelpOutput: &help}
	render := &Command{
		Name:        "render",
		Description: "Render session logs as Markdown.",
		Usage:       "transcript render <log> [output.md] [flags]",
		Params:      func() any { return &params },
		Examples: []Example{
			{Description: "Render with tool calls", Command: "transcript render session.jsonl --show-tools"},
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}
	root.Subcommands = []*Command{render}

	if err := root.Execute(context.Background(), []string{"render", "--help"}); err != nil {
		t.Fatal(err)
	}

	output := help.String()
	for _, want := range []string{
		"Render session logs as Markdown.",
		"Usage:\n  transcript render <log> [output.md] [flags]",
		"--title",
		"-j, --jobs",
		"-v, --verbose",
		"# Render with tool calls",
		"transcript render session.jsonl --show-tools",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}

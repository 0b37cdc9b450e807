// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/bureau-foundation/transcript/cmd/transcript/cli"
	"github.com/bureau-foundation/transcript/lib/termdoc"
	"github.com/bureau-foundation/transcript/lib/transcript"
)

type renderParams struct {
	cli.LogParams
	configParams

	ShowTools         bool   `flag:"show-tools" desc:"include tool calls and their results"`
	ShowThinking      bool   `flag:"show-thinking" desc:"include thinking blocks"`
	ExcludeTimestamps bool   `flag:"exclude-timestamps" desc:"omit entry timestamps"`
	NoTruncateInputs  bool   `flag:"no-truncate-inputs" desc:"show tool inputs in full"`
	NoTruncateOutputs bool   `flag:"no-truncate-outputs" desc:"show tool results in full"`
	ExcludeEditTools  bool   `flag:"exclude-edit-tools" desc:"hide Write, Edit, MultiEdit, and NotebookEdit calls"`
	ExcludeViewTools  bool   `flag:"exclude-view-tools" desc:"hide Read, Glob, Grep, LS, and NotebookRead calls"`
	ShowExploreFull   bool   `flag:"show-explore-full" desc:"always show Explore subagent prompts and reports in full"`
	ShowSubagentsFull bool   `flag:"show-subagents-full" desc:"always show other subagent prompts and reports in full"`
	Title             string `flag:"title" desc:"document title (hyphens become spaces)"`
	Description       string `flag:"description" desc:"summary shown under the title"`
	OutputDir         string `flag:"output-dir,o" desc:"render every log into this directory as <name>.md"`
	Jobs              int    `flag:"jobs,j" desc:"logs rendered concurrently with --output-dir" default:"4"`
	Color             string `flag:"color" desc:"style stdout output for a terminal: auto, always, never" default:"auto"`
	Width             int    `flag:"width" desc:"wrap width for styled output (default: terminal width)"`
}

// apply layers the command-line switches over options from the
// configuration. Switches only ever move away from the default, so an
// unset switch leaves the configured value alone.
func (params *renderParams) apply(options transcript.Options) transcript.Options {
	if params.ShowTools {
		options.ShowToolCalls = true
	}
	if params.ShowThinking {
		options.ShowThinking = true
	}
	if params.ExcludeTimestamps {
		options.ShowTimestamps = false
	}
	if params.NoTruncateInputs {
		options.TruncateToolInputs = false
	}
	if params.NoTruncateOutputs {
		options.TruncateToolOutputs = false
	}
	if params.ExcludeEditTools {
		options.ExcludeEditTools = true
	}
	if params.ExcludeViewTools {
		options.ExcludeViewTools = true
	}
	if params.ShowExploreFull {
		options.ShowExploreSubagentFull = true
	}
	if params.ShowSubagentsFull {
		options.ShowOtherSubagentFull = true
	}
	if params.Title != "" {
		options.Title = params.Title
	}
	if params.Description != "" {
		options.Description = params.Description
	}
	return options
}

func renderCommand(stdout io.Writer) *cli.Command {
	var params renderParams

	return &cli.Command{
		Name:    "render",
		Summary: "Render session logs as Markdown",
		Description: `Render one or more Claude Code session logs as Markdown.

With one log, the transcript is written to the output file if given,
otherwise to stdout (styled for the terminal when stdout is one). With
--output-dir, or with several logs, each log is written to
<dir>/<name>.md; several logs are rendered concurrently.

A log may be a path (plain, .zst, .gz, or .lz4) or a bare session ID,
which is looked up under the configured projects directory.`,
		Usage: "transcript render <log> [output.md] [flags]\n  transcript render --output-dir DIR <log>... [flags]",
		Examples: []cli.Example{
			{
				Description: "Read a session in the terminal",
				Command:     "transcript render ~/.claude/projects/-home-dev-app/3f1c.jsonl",
			},
			{
				Description: "Export with tool calls and thinking, untruncated",
				Command:     "transcript render session.jsonl session.md --preset full",
			},
			{
				Description: "Export every session of a project",
				Command:     "transcript render -o exports ~/.claude/projects/-home-dev-app/*.jsonl",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one session log is required")
			}
			if params.Jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1, got %d", params.Jobs)
			}

			cfg, options, err := params.load()
			if err != nil {
				return err
			}
			options = params.apply(options)
			options.Logger = logger

			logs := args
			output := ""
			if params.OutputDir == "" && len(args) == 2 && strings.EqualFold(filepath.Ext(args[1]), ".md") {
				logs, output = args[:1], args[1]
			}
			for index, argument := range logs {
				if logs[index], err = resolveLog(argument, cfg.Paths.Projects); err != nil {
					return err
				}
			}

			switch {
			case params.OutputDir != "":
				return renderAll(ctx, logs, params.OutputDir, params.Jobs, options, logger)
			case len(logs) > 1:
				logger.Info("several logs given without --output-dir", "output_dir", cfg.Paths.ExportDir)
				return renderAll(ctx, logs, cfg.Paths.ExportDir, params.Jobs, options, logger)
			case output != "":
				return renderToFile(logs[0], output, options, logger)
			default:
				return renderToStdout(logs[0], stdout, params.Color, params.Width, options)
			}
		},
	}
}

// renderToFile renders into a temporary file next to outputPath and
// renames it into place, so a failed render leaves any existing output
// untouched.
func renderToFile(logPath, outputPath string, options transcript.Options, logger *slog.Logger) error {
	file, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	temporary := file.Name()
	document, err := transcript.RenderFile(logPath, file, options)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing %s: %w", temporary, closeErr)
	}
	if err == nil {
		// CreateTemp uses 0600; transcripts are ordinary documents.
		err = os.Chmod(temporary, 0o644)
	}
	if err == nil {
		err = os.Rename(temporary, outputPath)
	}
	if err != nil {
		os.Remove(temporary)
		return err
	}
	logger.Info("rendered transcript", "log", logPath, "output", outputPath, "bytes", len(document))
	return nil
}

func renderToStdout(logPath string, stdout io.Writer, colorMode string, width int, options transcript.Options) error {
	document, err := transcript.RenderFile(logPath, nil, options)
	if err != nil {
		return err
	}

	profile, styled, err := resolveColor(colorMode, stdout)
	if err != nil {
		return err
	}
	if styled {
		document = termdoc.Render(document, termdoc.Options{
			Width:   resolveWidth(width, stdout),
			Profile: profile,
		})
	}
	_, err = io.WriteString(stdout, document)
	return err
}

// renderAll renders every log into directory, at most jobs at a time.
// The first failure cancels the renders that have not started.
func renderAll(ctx context.Context, logs []string, directory string, jobs int, options transcript.Options, logger *slog.Logger) error {
	outputs := make(map[string]string, len(logs))
	for _, logPath := range logs {
		name := outputName(logPath)
		if previous, ok := outputs[name]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", previous, logPath, name)
		}
		outputs[name] = logPath
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)
	for _, logPath := range logs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return renderToFile(logPath, filepath.Join(directory, outputName(logPath)), options, logger)
		})
	}
	if err := group.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("rendering interrupted: %w", err)
		}
		return err
	}
	logger.Info("rendered transcripts", "count", len(logs), "output_dir", directory)
	return nil
}

// resolveColor decides whether stdout output is styled and with which
// color profile. "auto" styles only a terminal that supports color.
func resolveColor(mode string, stdout io.Writer) (termenv.Profile, bool, error) {
	file, isFile := stdout.(*os.File)
	switch mode {
	case "never":
		return termenv.Ascii, false, nil
	case "always":
		if isFile {
			if profile := termenv.NewOutput(file).EnvColorProfile(); profile != termenv.Ascii {
				return profile, true, nil
			}
		}
		return termenv.ANSI256, true, nil
	case "auto":
		if !isFile || !term.IsTerminal(int(file.Fd())) {
			return termenv.Ascii, false, nil
		}
		profile := termenv.NewOutput(file).EnvColorProfile()
		return profile, profile != termenv.Ascii, nil
	default:
		return termenv.Ascii, false, fmt.Errorf("--color must be auto, always, or never, got %q", mode)
	}
}

// resolveWidth returns the explicit width, the terminal width, or the
// default, in that order.
func resolveWidth(width int, stdout io.Writer) int {
	if width > 0 {
		return width
	}
	if file, ok := stdout.(*os.File); ok {
		if columns, _, err := term.GetSize(int(file.Fd())); err == nil && columns > 0 {
			return columns
		}
	}
	return termdoc.DefaultWidth
}

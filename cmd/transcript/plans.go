// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/transcript/cmd/transcript/cli"
	"github.com/bureau-foundation/transcript/lib/config"
	"github.com/bureau-foundation/transcript/lib/plan"
	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

type plansParams struct {
	cli.LogParams
	configParams
}

type exportParams struct {
	cli.LogParams
	configParams

	Dir string `flag:"dir,d" desc:"directory to write revisions to (default: <export_dir>/<name>-plans)"`
}

func plansCommand(stdout io.Writer) *cli.Command {
	var params plansParams

	return &cli.Command{
		Name:    "plans",
		Summary: "List the plan revisions in a session log",
		Description: `List every plan submitted for approval in a session log, in
submission order, with its outcome and the revision that replaced it.

Exits with status 1 when the log contains no plan submissions.`,
		Usage:       "transcript plans <log> [flags]",
		Params:      func() any { return &params },
		Subcommands: []*cli.Command{plansExportCommand(stdout)},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one session log is required, got %d arguments", len(args))
			}
			_, timeline, err := loadTimeline(&params.configParams, args[0], logger)
			if err != nil {
				return err
			}
			if timeline.Len() == 0 {
				fmt.Fprintf(stdout, "no plan submissions in %s\n", args[0])
				return &cli.ExitError{Code: 1}
			}
			return writePlanTable(stdout, timeline)
		},
	}
}

func plansExportCommand(stdout io.Writer) *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Write every plan revision to its own file",
		Description: `Write each plan revision in a session log to DIR as
plan-NN.<status>.md, numbered from 01 in submission order. A rejected
revision that was followed by another also gets plan-NN.rejected.diff,
the change between the two.`,
		Usage:  "transcript plans export <log> [--dir DIR] [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{{
			Description: "Export the plans of a session next to its transcript",
			Command:     "transcript plans export session.jsonl --dir exports/session-plans",
		}},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one session log is required, got %d arguments", len(args))
			}
			cfg, timeline, err := loadTimeline(&params.configParams, args[0], logger)
			if err != nil {
				return err
			}
			if timeline.Len() == 0 {
				fmt.Fprintf(stdout, "no plan submissions in %s\n", args[0])
				return &cli.ExitError{Code: 1}
			}

			directory := params.Dir
			if directory == "" {
				directory = filepath.Join(cfg.Paths.ExportDir, strings.TrimSuffix(outputName(args[0]), ".md")+"-plans")
			}
			written, err := exportPlans(directory, timeline)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(stdout, path)
			}
			logger.Info("exported plan revisions", "count", timeline.Len(), "dir", directory)
			return nil
		},
	}
}

// loadTimeline reads a session log and rebuilds its plan timeline with
// the configured approval keywords.
func loadTimeline(params *configParams, argument string, logger *slog.Logger) (*config.Config, *plan.Timeline, error) {
	cfg, options, err := params.load()
	if err != nil {
		return nil, nil, err
	}
	logPath, err := resolveLog(argument, cfg.Paths.Projects)
	if err != nil {
		return nil, nil, err
	}
	entries, err := sessionlog.ReadFile(logPath)
	if err != nil {
		return nil, nil, err
	}
	timeline := plan.BuildTimeline(entries, plan.TimelineOptions{
		ApprovalKeywords:  options.Phrases.ApprovalKeywords,
		RejectionKeywords: options.Phrases.RejectionKeywords,
		Logger:            logger,
	})
	return cfg, timeline, nil
}

func writePlanTable(w io.Writer, timeline *plan.Timeline) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "REV\tSTATUS\tLINES\tNEXT\tTOOL ID")
	for _, revision := range timeline.Revisions() {
		next := "-"
		if successor, ok := timeline.Successor(revision.Index); ok {
			next = fmt.Sprintf("%d", successor.Index+1)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			revision.Index+1, revision.Status(), lineCount(revision.Content), next, revision.ToolID)
	}
	return tw.Flush()
}

// exportPlans writes each revision (and each rejected revision's diff
// to its successor) into directory and returns the written paths.
func exportPlans(directory string, timeline *plan.Timeline) ([]string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating plan directory: %w", err)
	}

	var written []string
	write := func(name, content string) error {
		path := filepath.Join(directory, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing plan revision: %w", err)
		}
		written = append(written, path)
		return nil
	}

	for _, revision := range timeline.Revisions() {
		stem := fmt.Sprintf("plan-%02d.%s", revision.Index+1, revision.Status())
		if err := write(stem+".md", ensureTrailingNewline(revision.Content)); err != nil {
			return written, err
		}
		successor, ok := timeline.Successor(revision.Index)
		if !ok {
			continue
		}
		if diff, changed := plan.Diff(revision.Content, successor.Content); changed {
			if err := write(stem+".diff", ensureTrailingNewline(diff)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func lineCount(content string) int {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}

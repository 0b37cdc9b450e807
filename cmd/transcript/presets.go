// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/transcript/cmd/transcript/cli"
	"github.com/bureau-foundation/transcript/lib/config"
	"github.com/bureau-foundation/transcript/lib/transcript"
)

type presetsParams struct {
	cli.LogParams

	Config string `flag:"config" desc:"configuration file (default: $TRANSCRIPT_CONFIG)"`
}

func presetsCommand(stdout io.Writer) *cli.Command {
	var params presetsParams

	return &cli.Command{
		Name:    "presets",
		Summary: "List the available option presets",
		Description: `List the option presets "transcript render --preset" accepts:
the built-in presets and any defined in the configuration file, with
the options each one turns on.`,
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			loader := configParams{Config: params.Config}
			cfg, _, err := loader.load()
			if err != nil {
				return err
			}
			return writePresetTable(stdout, cfg)
		},
	}
}

func writePresetTable(w io.Writer, cfg *config.Config) error {
	builtins := config.BuiltinPresets()
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tOPTIONS\tDESCRIPTION")
	for _, name := range cfg.PresetNames() {
		overrides, _ := cfg.Preset(name)
		source := "config"
		if _, ok := cfg.Presets[name]; !ok {
			source = "built-in"
		} else if _, ok := builtins[name]; ok {
			source = "config (replaces built-in)"
		}
		options, err := cfg.Options(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, source, describeOptions(options), overrides.Description)
	}
	return tw.Flush()
}

// describeOptions lists the switches that are on, in flag order.
func describeOptions(options transcript.Options) string {
	var enabled []string
	add := func(on bool, name string) {
		if on {
			enabled = append(enabled, name)
		}
	}
	add(options.ShowToolCalls, "tools")
	add(options.ShowThinking, "thinking")
	add(options.ShowTimestamps, "timestamps")
	add(options.TruncateToolInputs, "truncate-inputs")
	add(options.TruncateToolOutputs, "truncate-outputs")
	add(options.ExcludeEditTools, "no-edit-tools")
	add(options.ExcludeViewTools, "no-view-tools")
	add(options.ShowExploreSubagentFull, "explore-full")
	add(options.ShowOtherSubagentFull, "subagents-full")
	if len(enabled) == 0 {
		return "-"
	}
	return strings.Join(enabled, ",")
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/transcript/lib/config"
	"github.com/bureau-foundation/transcript/lib/transcript"
)

// configParams selects the configuration file and preset. Embedded by
// every command that renders or classifies.
type configParams struct {
	Config string `flag:"config" desc:"configuration file (default: $TRANSCRIPT_CONFIG)"`
	Preset string `flag:"preset,p" desc:"named option preset (built in: condensed, full)"`
}

// load reads and validates the configuration, then resolves the
// preset into engine options.
func (params *configParams) load() (*config.Config, transcript.Options, error) {
	var cfg *config.Config
	var err error
	if params.Config != "" {
		cfg, err = config.LoadFile(params.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, transcript.Options{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, transcript.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	options, err := cfg.Options(params.Preset)
	if err != nil {
		return nil, transcript.Options{}, err
	}
	return cfg, options, nil
}

// resolveLog maps a command-line argument to a session log path. An
// existing path is used as is. A bare session ID (no directory, no
// extension) is looked up as <projects>/*/<id>.jsonl. Anything else
// is returned unchanged so the reader reports the missing file.
func resolveLog(argument, projects string) (string, error) {
	if _, err := os.Stat(argument); err == nil {
		return argument, nil
	}
	if strings.ContainsRune(argument, filepath.Separator) || filepath.Ext(argument) != "" || projects == "" {
		return argument, nil
	}

	matches, err := filepath.Glob(filepath.Join(projects, "*", argument+".jsonl"))
	if err != nil {
		return "", fmt.Errorf("searching for session %s: %w", argument, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("session %q: no file or session log under %s", argument, projects)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session %q is ambiguous: %s", argument, strings.Join(matches, ", "))
	}
}

// outputName returns the Markdown file name for a log: its base name
// with every extension removed ("abc.jsonl.zst" becomes "abc.md").
func outputName(logPath string) string {
	base := filepath.Base(logPath)
	if index := strings.IndexByte(base, '.'); index > 0 {
		base = base[:index]
	}
	return base + ".md"
}

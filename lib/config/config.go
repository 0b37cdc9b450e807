// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/transcript/lib/transcript"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "TRANSCRIPT_CONFIG"

// ErrUnknownPreset is returned by [Config.Options] for a preset name
// that is neither built in nor defined in the file.
var ErrUnknownPreset = errors.New("unknown preset")

// Config is the transcript tool's configuration.
type Config struct {
	// Defaults are the render options used when no preset is named,
	// and the base every preset overrides.
	Defaults RenderConfig `yaml:"defaults"`

	// Presets are named overrides of Defaults. Entries here replace
	// built-in presets of the same name.
	Presets map[string]RenderOverrides `yaml:"presets"`

	// Phrases overrides classifier trigger phrases. Lists left empty
	// keep their built-in values.
	Phrases transcript.Phrases `yaml:"phrases"`

	// Paths configures where logs are found and exports are written.
	Paths PathsConfig `yaml:"paths"`
}

// RenderConfig mirrors the boolean fields of [transcript.Options].
type RenderConfig struct {
	ShowToolCalls           bool `yaml:"show_tool_calls"`
	ShowThinking            bool `yaml:"show_thinking"`
	ShowTimestamps          bool `yaml:"show_timestamps"`
	TruncateToolInputs      bool `yaml:"truncate_tool_inputs"`
	TruncateToolOutputs     bool `yaml:"truncate_tool_outputs"`
	ExcludeEditTools        bool `yaml:"exclude_edit_tools"`
	ExcludeViewTools        bool `yaml:"exclude_view_tools"`
	ShowExploreSubagentFull bool `yaml:"show_explore_subagent_full"`
	ShowOtherSubagentFull   bool `yaml:"show_other_subagent_full"`
}

// RenderOverrides holds the fields a preset sets. Nil fields keep the
// value from Defaults.
type RenderOverrides struct {
	// Description is shown by "transcript presets".
	Description string `yaml:"description,omitempty"`

	ShowToolCalls           *bool `yaml:"show_tool_calls,omitempty"`
	ShowThinking            *bool `yaml:"show_thinking,omitempty"`
	ShowTimestamps          *bool `yaml:"show_timestamps,omitempty"`
	TruncateToolInputs      *bool `yaml:"truncate_tool_inputs,omitempty"`
	TruncateToolOutputs     *bool `yaml:"truncate_tool_outputs,omitempty"`
	ExcludeEditTools        *bool `yaml:"exclude_edit_tools,omitempty"`
	ExcludeViewTools        *bool `yaml:"exclude_view_tools,omitempty"`
	ShowExploreSubagentFull *bool `yaml:"show_explore_subagent_full,omitempty"`
	ShowOtherSubagentFull   *bool `yaml:"show_other_subagent_full,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Projects is the directory Claude Code writes session logs
	// under, one subdirectory per project. Bare session IDs given to
	// the CLI are looked up here.
	Projects string `yaml:"projects"`

	// ExportDir is where rendered transcripts go when several logs are
	// rendered without an explicit --output-dir.
	ExportDir string `yaml:"export_dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaults := transcript.DefaultOptions()

	return &Config{
		Defaults: RenderConfig{
			ShowTimestamps:      defaults.ShowTimestamps,
			TruncateToolInputs:  defaults.TruncateToolInputs,
			TruncateToolOutputs: defaults.TruncateToolOutputs,
		},
		Paths: PathsConfig{
			Projects:  filepath.Join(homeDir, ".claude", "projects"),
			ExportDir: "exports",
		},
	}
}

// BuiltinPresets returns the presets available without a config file.
// "condensed" keeps the dialogue and Explore reports; "full" shows
// everything untruncated.
func BuiltinPresets() map[string]RenderOverrides {
	yes, no := true, false
	return map[string]RenderOverrides{
		"condensed": {
			Description:             "dialogue, questions, plans, and Explore reports",
			ShowToolCalls:           &no,
			ShowThinking:            &no,
			ShowTimestamps:          &no,
			TruncateToolInputs:      &yes,
			TruncateToolOutputs:     &yes,
			ExcludeEditTools:        &yes,
			ExcludeViewTools:        &yes,
			ShowExploreSubagentFull: &yes,
		},
		"full": {
			Description:         "every tool call, thinking block, and timestamp, untruncated",
			ShowToolCalls:       &yes,
			ShowThinking:        &yes,
			ShowTimestamps:      &yes,
			TruncateToolInputs:  &no,
			TruncateToolOutputs: &no,
		},
	}
}

// Load loads the file named by TRANSCRIPT_CONFIG. When the variable is
// unset it returns [Default].
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over [Default]. Unknown keys
// are errors, so a misspelled option does not silently do nothing.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile decodes one file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.Projects = expandVars(c.Paths.Projects, vars)
	c.Paths.ExportDir = expandVars(c.Paths.ExportDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Preset returns the named preset, preferring the file's definition
// over a built-in one.
func (c *Config) Preset(name string) (RenderOverrides, bool) {
	if overrides, ok := c.Presets[name]; ok {
		return overrides, true
	}
	overrides, ok := BuiltinPresets()[name]
	return overrides, ok
}

// PresetNames returns every available preset name, sorted.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets)+2)
	for name := range BuiltinPresets() {
		names = append(names, name)
	}
	for name := range c.Presets {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Options returns render options for the named preset, or for Defaults
// when preset is empty. Phrases are completed with built-in values.
func (c *Config) Options(preset string) (transcript.Options, error) {
	render := c.Defaults
	if preset != "" {
		overrides, ok := c.Preset(preset)
		if !ok {
			return transcript.Options{}, fmt.Errorf("%w %q (available: %s)",
				ErrUnknownPreset, preset, strings.Join(c.PresetNames(), ", "))
		}
		render = render.Apply(overrides)
	}

	options := render.Options()
	options.Phrases = c.Phrases.WithDefaults()
	return options, nil
}

// Apply returns r with every non-nil override applied.
func (r RenderConfig) Apply(overrides RenderOverrides) RenderConfig {
	set := func(field *bool, value *bool) {
		if value != nil {
			*field = *value
		}
	}
	set(&r.ShowToolCalls, overrides.ShowToolCalls)
	set(&r.ShowThinking, overrides.ShowThinking)
	set(&r.ShowTimestamps, overrides.ShowTimestamps)
	set(&r.TruncateToolInputs, overrides.TruncateToolInputs)
	set(&r.TruncateToolOutputs, overrides.TruncateToolOutputs)
	set(&r.ExcludeEditTools, overrides.ExcludeEditTools)
	set(&r.ExcludeViewTools, overrides.ExcludeViewTools)
	set(&r.ShowExploreSubagentFull, overrides.ShowExploreSubagentFull)
	set(&r.ShowOtherSubagentFull, overrides.ShowOtherSubagentFull)
	return r
}

// Options converts r to engine options with no title, description, or
// logger.
func (r RenderConfig) Options() transcript.Options {
	return transcript.Options{
		ShowToolCalls:           r.ShowToolCalls,
		ShowThinking:            r.ShowThinking,
		ShowTimestamps:          r.ShowTimestamps,
		TruncateToolInputs:      r.TruncateToolInputs,
		TruncateToolOutputs:     r.TruncateToolOutputs,
		ExcludeEditTools:        r.ExcludeEditTools,
		ExcludeViewTools:        r.ExcludeViewTools,
		ShowExploreSubagentFull: r.ShowExploreSubagentFull,
		ShowOtherSubagentFull:   r.ShowOtherSubagentFull,
	}
}

var presetNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	for _, name := range slices.Sorted(maps.Keys(c.Presets)) {
		if !presetNamePattern.MatchString(name) {
			errs = append(errs, fmt.Errorf("presets: invalid name %q (lowercase letters, digits, '-' and '_')", name))
		}
	}

	if err := c.Phrases.WithDefaults().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("phrases.%w", err))
	}

	if c.Paths.ExportDir == "" {
		errs = append(errs, fmt.Errorf("paths.export_dir is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

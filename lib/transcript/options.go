// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import "log/slog"

// Options controls what a rendered transcript includes.
type Options struct {
	// ShowToolCalls renders tool calls and their outcomes. Question
	// and plan tools are always rendered.
	ShowToolCalls bool

	// ShowThinking renders the assistant's thinking blocks.
	ShowThinking bool

	// ShowTimestamps adds the entry time under each section header.
	ShowTimestamps bool

	// TruncateToolInputs shortens long tool input fields to
	// ToolInputLimit characters.
	TruncateToolInputs bool

	// TruncateToolOutputs shortens tool outcomes to ToolOutputLimit
	// characters.
	TruncateToolOutputs bool

	// ExcludeEditTools hides file-modifying tool calls (Write, Edit,
	// MultiEdit, NotebookEdit) and their outcomes even when
	// ShowToolCalls is set.
	ExcludeEditTools bool

	// ExcludeViewTools hides file-reading tool calls (Read, Glob,
	// Grep, LS, NotebookRead) and their outcomes even when
	// ShowToolCalls is set.
	ExcludeViewTools bool

	// ShowExploreSubagentFull renders Task calls that delegate to the
	// Explore subagent with their full prompt and report, regardless
	// of ShowToolCalls and truncation.
	ShowExploreSubagentFull bool

	// ShowOtherSubagentFull does the same for every other subagent
	// type.
	ShowOtherSubagentFull bool

	// Title replaces the default document title. Hyphens become
	// spaces and the result is title-cased.
	Title string

	// Description is rendered as a blockquote under the title.
	Description string

	// Phrases overrides the trigger phrases used by the classifiers.
	// Empty fields fall back to DefaultPhrases.
	Phrases Phrases

	// Logger receives debug records about entries that could not be
	// fully interpreted. Nil discards them.
	Logger *slog.Logger
}

// Truncation limits, in characters.
const (
	ToolInputLimit  = 1500
	ToolOutputLimit = 2000
)

// DefaultOptions returns the options for a condensed transcript:
// conversation text, questions, and plans, with timestamps.
func DefaultOptions() Options {
	return Options{
		ShowTimestamps:      true,
		TruncateToolInputs:  true,
		TruncateToolOutputs: true,
	}
}

func (options Options) logger() *slog.Logger {
	if options.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return options.Logger
}

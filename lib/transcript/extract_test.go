// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"strings"
	"testing"
)

func TestExtractToolVisibility(t *testing.T) {
	t.Parallel()

	log := newTestLog(t).
		toolUse("w1", "Write", map[string]any{"file_path": "/repo/main.go", "content": "package main"}).
		toolResult("w1", "File created").
		toolUse("b1", "Bash", map[string]any{"command": "go test ./...", "description": "Run tests"}).
		toolResult("b1", "ok").
		toolUse("g1", "Grep", map[string]any{"pattern": "TODO", "path": "/repo"}).
		toolResult("g1", "main.go:3")

	hidden := log.extractAll(DefaultOptions())
	for position, extraction := range hidden {
		if extraction.Visible() {
			t.Errorf("entry %d visible with tool calls off: %+v", position, extraction.Parts)
		}
	}

	options := DefaultOptions()
	options.ShowToolCalls = true
	options.ExcludeEditTools = true
	options.ExcludeViewTools = true
	shown := log.extractAll(options)

	wantVisible := []bool{false, false, true, true, false, false}
	for position, want := range wantVisible {
		if got := shown[position].Visible(); got != want {
			t.Errorf("entry %d visible = %v, want %v", position, got, want)
		}
	}

	call := shown[2].Text()
	for _, want := range []string{"📦 **Tool: Bash**", "*Run tests*", "```bash\ngo test ./...\n```"} {
		if !strings.Contains(call, want) {
			t.Errorf("Bash call missing %q:\n%s", want, call)
		}
	}
	if shown[2].ContentType != ContentToolCall || shown[3].ContentType != ContentToolResult {
		t.Errorf("content types = %q, %q", shown[2].ContentType, shown[3].ContentType)
	}
	if !strings.Contains(shown[3].Text(), "✅ Result (tool: Bash):\n```\nok\n```") {
		t.Errorf("Bash outcome = %q", shown[3].Text())
	}
}

func TestExtractTruncation(t *testing.T) {
	t.Parallel()

	longOutput := strings.Repeat("y", ToolOutputLimit+500)
	log := newTestLog(t).
		toolUse("b1", "Bash", map[string]any{"command": strings.Repeat("x", ToolInputLimit+10)}).
		toolResult("b1", longOutput)

	options := DefaultOptions()
	options.ShowToolCalls = true
	truncated := log.extractAll(options)
	if !strings.Contains(truncated[0].Text(), "[1510 chars total]") {
		t.Error("long input not truncated")
	}
	if !strings.Contains(truncated[1].Text(), "[2500 chars total]") {
		t.Error("long output not truncated")
	}

	options.TruncateToolInputs = false
	options.TruncateToolOutputs = false
	full := log.extractAll(options)
	if strings.Contains(full[0].Text(), "chars total") || strings.Contains(full[1].Text(), "chars total") {
		t.Error("truncation applied with truncation off")
	}
	if !strings.Contains(full[1].Text(), longOutput) {
		t.Error("full output missing")
	}
}

func TestExtractSubagentFull(t *testing.T) {
	t.Parallel()

	prompt := strings.Repeat("Find the handlers. ", 100)
	report := strings.Repeat("Found handler. ", 200)
	log := newTestLog(t).
		toolUse("t1", "Task", map[string]any{"subagent_type": "Explore", "description": "Map handlers", "prompt": prompt}).
		toolResult("t1", report).
		toolUse("t2", "Task", map[string]any{"subagent_type": "general-purpose", "description": "Refactor", "prompt": "Do it"}).
		toolResult("t2", "Done")

	options := DefaultOptions()
	options.ShowExploreSubagentFull = true
	extractions := log.extractAll(options)

	if !extractions[0].Visible() || !extractions[1].Visible() {
		t.Fatal("Explore call should be forced visible")
	}
	if !strings.Contains(extractions[0].Text(), "**Subagent:** Explore") {
		t.Errorf("Task call = %q", extractions[0].Text())
	}
	if strings.Contains(extractions[0].Text(), "chars total") || strings.Contains(extractions[1].Text(), "chars total") {
		t.Error("forced subagent detail should not be truncated")
	}
	if !strings.Contains(extractions[1].Text(), report) {
		t.Error("Explore report should be shown in full")
	}
	if extractions[2].Visible() || extractions[3].Visible() {
		t.Error("other subagents should stay hidden")
	}

	options = DefaultOptions()
	options.ShowOtherSubagentFull = true
	extractions = log.extractAll(options)
	if extractions[0].Visible() || !extractions[2].Visible() || !extractions[3].Visible() {
		t.Error("ShowOtherSubagentFull should force only non-Explore subagents")
	}
}

func TestExtractQuestionAnsweredInline(t *testing.T) {
	t.Parallel()

	log := newTestLog(t).
		toolUse("q1", "AskUserQuestion", map[string]any{"questions": []any{map[string]any{
			"header": "Approach", "question": "Which approach?",
			"options": []any{map[string]any{"label": "A"}, map[string]any{"label": "B"}},
		}}}).
		toolResult("q1", "I'll go with A")

	extractions := log.extractAll(DefaultOptions())
	question := extractions[0].Text()
	if !strings.Contains(question, "❓ **Question for User:**") || !strings.Contains(question, "1. <ins>**A**</ins>") {
		t.Errorf("question = %q", question)
	}
	if extractions[1].Visible() {
		t.Error("the answer outcome is rendered with the question, not on its own")
	}
}

func TestExtractErrorEntry(t *testing.T) {
	t.Parallel()

	extractions := newTestLog(t).raw("not json at all " + strings.Repeat("z", 500)).extractAll(DefaultOptions())
	extraction := extractions[0]
	if !extraction.Unreadable || len(extraction.Parts) != 1 {
		t.Fatalf("extraction = %+v", extraction)
	}
	if !strings.HasPrefix(extraction.Parts[0].Text, "[ERROR] line 1: ") {
		t.Errorf("marker = %q", extraction.Parts[0].Text)
	}
	if len(extraction.Parts[0].Text) > 300 {
		t.Errorf("marker should be bounded, got %d bytes", len(extraction.Parts[0].Text))
	}
}

func TestExtractTextBlocksApplyFilters(t *testing.T) {
	t.Parallel()

	extractions := newTestLog(t).
		blocks("user",
			map[string]any{"type": "text", "text": "Caveat: the messages below were generated by the user"},
			map[string]any{"type": "text", "text": "Real question"},
		).
		blocks("user", map[string]any{"type": "image", "source": map[string]any{}}).
		extractAll(DefaultOptions())

	if got := extractions[0].Text(); got != "Real question" {
		t.Errorf("text blocks = %q, want only the real question", got)
	}
	if got := extractions[1].Text(); got != "*[image]*" {
		t.Errorf("image block = %q", got)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// Tool names with dedicated handling.
const (
	taskToolName      = "Task"
	exploreSubagent   = "Explore"
	unknownToolHeader = "unknown tool"
)

// editTools modify files; viewTools only read them.
var (
	editTools = map[string]bool{
		"Write": true, "Edit": true, "MultiEdit": true, "NotebookEdit": true,
	}
	viewTools = map[string]bool{
		"Read": true, "Glob": true, "Grep": true, "LS": true, "NotebookRead": true,
	}
)

// toolFormatter renders the body of one tool call. limit is the
// per-field character budget, or 0 for no truncation.
type toolFormatter func(invocation *sessionlog.ToolInvocation, limit int) string

var toolFormatters = map[string]toolFormatter{
	"Write":     formatWrite,
	"Edit":      formatEdit,
	"MultiEdit": formatMultiEdit,
	"Read":      formatRead,
	"Bash":      formatBash,
	"Grep":      formatSearch,
	"Glob":      formatSearch,
	"Task":      formatTask,
	"TodoWrite": formatTodoWrite,
	"WebFetch":  formatWebFetch,
	"WebSearch": formatWebSearch,
}

// FormatToolCall renders a tool call: a header naming the tool, then
// a tool-specific body. Tools without a dedicated formatter, and
// inputs a formatter cannot decode, fall back to an indented JSON
// dump.
func FormatToolCall(invocation *sessionlog.ToolInvocation, limit int) string {
	header := fmt.Sprintf("\n📦 **Tool: %s**", invocation.Name)
	body := ""
	if formatter, ok := toolFormatters[invocation.Name]; ok {
		body = formatter(invocation, limit)
	}
	if body == "" {
		body = formatGeneric(invocation.Input, limit)
	}
	return header + "\n" + body
}

// FormatToolOutcome renders a tool outcome. invocation is nil when
// the log holds no matching call.
func FormatToolOutcome(outcome *sessionlog.ToolOutcome, invocation *sessionlog.ToolInvocation, limit int) string {
	status := "✅ Result"
	if outcome.IsError {
		status = "❌ Error"
	}

	text := outcome.Text()
	if limit > 0 {
		text = Truncate(text, limit)
	}

	if invocation == nil {
		return fmt.Sprintf("\n%s (%s `%s`):\n%s", status, unknownToolHeader, shortID(outcome.ToolUseID), Fence(text, ""))
	}
	if invocation.Name == taskToolName {
		// Subagent reports are Markdown and read better unfenced.
		return fmt.Sprintf("\n%s (tool: %s):\n%s", status, invocation.Name, text)
	}
	return fmt.Sprintf("\n%s (tool: %s):\n%s", status, invocation.Name, Fence(text, ""))
}

func formatWrite(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	if invocation.Decode(&input) != nil || input.FilePath == "" {
		return ""
	}
	return fmt.Sprintf("`%s`\n%s", input.FilePath, Fence(clip(input.Content, limit), languageForPath(input.FilePath)))
}

type editInput struct {
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func formatEdit(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		FilePath string `json:"file_path"`
		editInput
	}
	if invocation.Decode(&input) != nil || input.FilePath == "" {
		return ""
	}
	return fmt.Sprintf("`%s`\n%s", input.FilePath, formatReplacement(input.editInput, limit))
}

func formatMultiEdit(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		FilePath string      `json:"file_path"`
		Edits    []editInput `json:"edits"`
	}
	if invocation.Decode(&input) != nil || input.FilePath == "" {
		return ""
	}
	parts := []string{fmt.Sprintf("`%s` (%d edits)", input.FilePath, len(input.Edits))}
	for _, edit := range input.Edits {
		parts = append(parts, formatReplacement(edit, limit))
	}
	return strings.Join(parts, "\n")
}

func formatReplacement(edit editInput, limit int) string {
	var lines []string
	for _, line := range strings.Split(clip(edit.OldString, limit), "\n") {
		lines = append(lines, "-"+line)
	}
	for _, line := range strings.Split(clip(edit.NewString, limit), "\n") {
		lines = append(lines, "+"+line)
	}
	block := Fence(strings.Join(lines, "\n"), "diff")
	if edit.ReplaceAll {
		block = "*(all occurrences)*\n" + block
	}
	return block
}

func formatRead(invocation *sessionlog.ToolInvocation, _ int) string {
	var input struct {
		FilePath string `json:"file_path"`
		Offset   int    `json:"offset"`
		Limit    int    `json:"limit"`
	}
	if invocation.Decode(&input) != nil || input.FilePath == "" {
		return ""
	}
	switch {
	case input.Offset > 0 && input.Limit > 0:
		return fmt.Sprintf("`%s` (lines %d-%d)", input.FilePath, input.Offset, input.Offset+input.Limit-1)
	case input.Offset > 0:
		return fmt.Sprintf("`%s` (from line %d)", input.FilePath, input.Offset)
	case input.Limit > 0:
		return fmt.Sprintf("`%s` (first %d lines)", input.FilePath, input.Limit)
	default:
		return fmt.Sprintf("`%s`", input.FilePath)
	}
}

func formatBash(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	if invocation.Decode(&input) != nil || input.Command == "" {
		return ""
	}
	block := Fence(clip(input.Command, limit), "bash")
	if input.Description != "" {
		return "*" + input.Description + "*\n" + block
	}
	return block
}

func formatSearch(invocation *sessionlog.ToolInvocation, _ int) string {
	var input struct {
		Pattern    string `json:"pattern"`
		Path       string `json:"path"`
		Glob       string `json:"glob"`
		Type       string `json:"type"`
		OutputMode string `json:"output_mode"`
	}
	if invocation.Decode(&input) != nil || input.Pattern == "" {
		return ""
	}
	lines := []string{fmt.Sprintf("Pattern: `%s`", input.Pattern)}
	if input.Path != "" {
		lines = append(lines, fmt.Sprintf("Path: `%s`", input.Path))
	}
	if input.Glob != "" {
		lines = append(lines, fmt.Sprintf("Files: `%s`", input.Glob))
	}
	if input.Type != "" {
		lines = append(lines, fmt.Sprintf("Type: `%s`", input.Type))
	}
	if input.OutputMode != "" {
		lines = append(lines, fmt.Sprintf("Mode: %s", input.OutputMode))
	}
	return strings.Join(lines, "  \n")
}

func formatTask(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		SubagentType string `json:"subagent_type"`
		Description  string `json:"description"`
		Prompt       string `json:"prompt"`
	}
	if invocation.Decode(&input) != nil {
		return ""
	}
	var lines []string
	if input.SubagentType != "" {
		lines = append(lines, fmt.Sprintf("**Subagent:** %s  ", input.SubagentType))
	}
	if input.Description != "" {
		lines = append(lines, fmt.Sprintf("**Description:** %s", input.Description))
	}
	if input.Prompt != "" {
		lines = append(lines, "")
		for _, line := range strings.Split(clip(input.Prompt, limit), "\n") {
			lines = append(lines, strings.TrimRight("> "+line, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func formatTodoWrite(invocation *sessionlog.ToolInvocation, _ int) string {
	var input struct {
		Todos []struct {
			Content string `json:"content"`
			Status  string `json:"status"`
		} `json:"todos"`
	}
	if invocation.Decode(&input) != nil || len(input.Todos) == 0 {
		return ""
	}
	lines := make([]string, 0, len(input.Todos))
	for _, todo := range input.Todos {
		switch todo.Status {
		case "completed":
			lines = append(lines, "- [x] "+todo.Content)
		case "in_progress":
			lines = append(lines, "- [ ] "+todo.Content+" *(in progress)*")
		default:
			lines = append(lines, "- [ ] "+todo.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func formatWebFetch(invocation *sessionlog.ToolInvocation, limit int) string {
	var input struct {
		URL    string `json:"url"`
		Prompt string `json:"prompt"`
	}
	if invocation.Decode(&input) != nil || input.URL == "" {
		return ""
	}
	if input.Prompt == "" {
		return input.URL
	}
	return input.URL + "\n\n> " + strings.ReplaceAll(clip(input.Prompt, limit), "\n", "\n> ")
}

func formatWebSearch(invocation *sessionlog.ToolInvocation, _ int) string {
	query := invocation.StringField("query")
	if query == "" {
		return ""
	}
	return fmt.Sprintf("Query: `%s`", query)
}

func formatGeneric(input json.RawMessage, limit int) string {
	if len(input) == 0 {
		return Fence("{}", "json")
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, input, "", "  "); err != nil {
		return Fence(clip(string(input), limit), "json")
	}
	return Fence(clip(indented.String(), limit), "json")
}

// clip truncates text when limit is positive.
func clip(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	return Truncate(text, limit)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

var languagesByExtension = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "jsx",
	".ts":   "typescript",
	".tsx":  "tsx",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".sh":   "bash",
	".bash": "bash",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".html": "html",
	".css":  "css",
	".sql":  "sql",
	".nix":  "nix",
}

// languageForPath picks a fence language from a file extension.
func languageForPath(path string) string {
	return languagesByExtension[strings.ToLower(filepath.Ext(path))]
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// BlockType classifies a content block inside a message.
type BlockType string

const (
	// BlockText is a plain text block.
	BlockText BlockType = "text"

	// BlockThinking is the assistant's chain-of-thought reasoning.
	BlockThinking BlockType = "thinking"

	// BlockToolUse is a tool invocation by the assistant.
	BlockToolUse BlockType = "tool_use"

	// BlockToolResult is the outcome of a tool invocation, carried in
	// a user-role message.
	BlockToolResult BlockType = "tool_result"

	// BlockUnknown is any other element: object blocks of a type this
	// package does not model (images, redacted thinking), and list
	// items that are not objects at all.
	BlockUnknown BlockType = "unknown"
)

// Block is one element of a message's content list. Exactly one of
// the type-specific fields is meaningful, selected by Type.
type Block struct {
	Type BlockType

	// Text is set for BlockText and BlockThinking. For BlockUnknown
	// list items that were not JSON objects, Text holds their raw
	// JSON so they can be shown literally.
	Text string

	// ToolUse is set for BlockToolUse.
	ToolUse *ToolInvocation

	// ToolResult is set for BlockToolResult.
	ToolResult *ToolOutcome

	// RawType is the declared "type" of a BlockUnknown object block
	// (e.g. "image"). Empty for non-object items.
	RawType string
}

// ToolInvocation is a request by the assistant to run a tool.
type ToolInvocation struct {
	// ID is unique within a log and shared with the matching outcome.
	ID string

	// Name is the tool name (e.g. "Write", "Bash", "ExitPlanMode").
	Name string

	// Input is the tool input object, preserved as raw JSON.
	Input json.RawMessage
}

// StringField returns a top-level string field of the input object,
// or "" when the field is absent or not a string.
func (invocation *ToolInvocation) StringField(field string) string {
	return stringField(invocation.Input, field)
}

// Decode unmarshals the input object into target.
func (invocation *ToolInvocation) Decode(target any) error {
	if len(invocation.Input) == 0 {
		return fmt.Errorf("tool %s (%s): empty input", invocation.Name, invocation.ID)
	}
	if err := json.Unmarshal(invocation.Input, target); err != nil {
		return fmt.Errorf("tool %s (%s): decoding input: %w", invocation.Name, invocation.ID, err)
	}
	return nil
}

// ToolOutcome is the result of a tool invocation.
type ToolOutcome struct {
	// ToolUseID matches ToolInvocation.ID.
	ToolUseID string

	// IsError reports that the tool call failed (or was refused).
	IsError bool

	// Content is the output payload: a JSON string, a list of typed
	// items, or (rarely) some other JSON value.
	Content json.RawMessage
}

// Text flattens the outcome payload into plain text. String payloads
// are returned verbatim. List payloads join their text items with
// newlines; image items become "[image]". Any other payload is
// returned as its raw JSON.
func (outcome *ToolOutcome) Text() string {
	return flattenContent(outcome.Content)
}

// Entry is one parsed line of a session log.
type Entry struct {
	// Index is the ordinal position among non-blank lines (0-based).
	Index int

	// Line is the 1-based line number in the source file.
	Line int

	// Type is the record's declared type ("user", "assistant",
	// "system", "summary", ...).
	Type string

	// Role is message.role, empty when the record has no message.
	Role string

	// Timestamp is the raw ISO-8601 timestamp, empty when absent.
	Timestamp string

	// HasText reports that message.content was a plain string, held
	// in Text. Otherwise the content (if any) is in Blocks.
	HasText bool
	Text    string
	Blocks  []Block

	// Session metadata, present on most records.
	SessionID        string
	AgentID          string
	Slug             string
	Version          string
	WorkingDirectory string
	GitBranch        string

	// ToolUseResult is the structured side-channel payload some
	// records attach alongside a tool_result block.
	ToolUseResult json.RawMessage

	// ParseError is the diagnostic for a line that could not be
	// parsed. When set, every other field except Index and Line is
	// zero.
	ParseError string
}

// IsError reports whether the line failed to parse.
func (entry *Entry) IsError() bool {
	return entry.ParseError != ""
}

// EffectiveRole returns message.role, falling back to the record type
// for records that carry no message.
func (entry *Entry) EffectiveRole() string {
	if entry.Role != "" {
		return entry.Role
	}
	return entry.Type
}

// ToolUses returns the tool invocations in this entry, in block order.
func (entry *Entry) ToolUses() []*ToolInvocation {
	var invocations []*ToolInvocation
	for index := range entry.Blocks {
		if entry.Blocks[index].Type == BlockToolUse {
			invocations = append(invocations, entry.Blocks[index].ToolUse)
		}
	}
	return invocations
}

// ToolResults returns the tool outcomes in this entry, in block order.
func (entry *Entry) ToolResults() []*ToolOutcome {
	var outcomes []*ToolOutcome
	for index := range entry.Blocks {
		if entry.Blocks[index].Type == BlockToolResult {
			outcomes = append(outcomes, entry.Blocks[index].ToolResult)
		}
	}
	return outcomes
}

// rawEntry mirrors the subset of a log record this package reads.
// Unknown fields are ignored.
type rawEntry struct {
	Type          string          `json:"type"`
	Message       json.RawMessage `json:"message"`
	Timestamp     string          `json:"timestamp"`
	SessionID     string          `json:"sessionId"`
	AgentID       string          `json:"agentId"`
	Slug          string          `json:"slug"`
	Version       string          `json:"version"`
	CWD           string          `json:"cwd"`
	GitBranch     string          `json:"gitBranch"`
	ToolUseResult json.RawMessage `json:"toolUseResult"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   json.RawMessage `json:"content"`
}

// parseEntry decodes one non-blank log line. The returned error is a
// diagnostic for the caller to record; it never indicates an I/O
// problem.
func parseEntry(line []byte) (Entry, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		// json.Unmarshal into a struct accepts "null", so reject
		// non-objects up front with a clear diagnostic.
		if err := json.Unmarshal(trimmed, new(any)); err != nil {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("expected a JSON object")
	}

	var raw rawEntry
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Type:             raw.Type,
		Timestamp:        raw.Timestamp,
		SessionID:        raw.SessionID,
		AgentID:          raw.AgentID,
		Slug:             raw.Slug,
		Version:          raw.Version,
		WorkingDirectory: raw.CWD,
		GitBranch:        raw.GitBranch,
		ToolUseResult:    nullToEmpty(raw.ToolUseResult),
	}

	// message is normally an object, but a record whose message is
	// some other JSON value is still a valid record with no content.
	var message rawMessage
	if len(raw.Message) > 0 && json.Unmarshal(raw.Message, &message) == nil {
		entry.Role = message.Role
		parseContent(&entry, message.Content)
	}

	return entry, nil
}

// parseContent fills HasText/Text or Blocks from message.content.
func parseContent(entry *Entry, content json.RawMessage) {
	content = nullToEmpty(content)
	if len(content) == 0 {
		return
	}

	var text string
	if json.Unmarshal(content, &text) == nil {
		entry.HasText = true
		entry.Text = text
		return
	}

	var items []json.RawMessage
	if json.Unmarshal(content, &items) != nil {
		return
	}

	entry.Blocks = make([]Block, 0, len(items))
	for _, item := range items {
		entry.Blocks = append(entry.Blocks, parseBlock(item))
	}
}

func parseBlock(item json.RawMessage) Block {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return Block{Type: BlockUnknown, Text: literalJSON(item)}
	}

	var raw rawBlock
	if err := json.Unmarshal(item, &raw); err != nil {
		return Block{Type: BlockUnknown, Text: string(item)}
	}

	switch BlockType(raw.Type) {
	case BlockText:
		return Block{Type: BlockText, Text: raw.Text}
	case BlockThinking:
		return Block{Type: BlockThinking, Text: raw.Thinking}
	case BlockToolUse:
		return Block{Type: BlockToolUse, ToolUse: &ToolInvocation{
			ID:    raw.ID,
			Name:  raw.Name,
			Input: nullToEmpty(raw.Input),
		}}
	case BlockToolResult:
		return Block{Type: BlockToolResult, ToolResult: &ToolOutcome{
			ToolUseID: raw.ToolUseID,
			IsError:   raw.IsError,
			Content:   nullToEmpty(raw.Content),
		}}
	default:
		return Block{Type: BlockUnknown, RawType: raw.Type}
	}
}

// flattenContent converts a tool_result payload into text.
func flattenContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(content, &text) == nil {
		return text
	}

	var items []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if json.Unmarshal(content, &items) == nil {
		var parts []string
		for _, item := range items {
			switch item.Type {
			case "text":
				parts = append(parts, item.Text)
			case "image":
				parts = append(parts, "[image]")
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	return string(content)
}

// literalJSON renders a non-object list item for display: strings
// lose their quotes, everything else keeps its JSON spelling.
func literalJSON(item json.RawMessage) string {
	var text string
	if json.Unmarshal(item, &text) == nil {
		return text
	}
	return string(item)
}

func stringField(object json.RawMessage, field string) string {
	if len(object) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(object, &fields) != nil {
		return ""
	}
	raw, ok := fields[field]
	if !ok {
		return ""
	}
	var value string
	if json.Unmarshal(raw, &value) != nil {
		return ""
	}
	return value
}

func nullToEmpty(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

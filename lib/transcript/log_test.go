// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bureau-foundation/transcript/lib/plan"
	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// testLog assembles a session log line by line.
type testLog struct {
	t     *testing.T
	lines []string
}

func newTestLog(t *testing.T) *testLog {
	t.Helper()
	return &testLog{t: t}
}

func (log *testLog) record(value map[string]any) *testLog {
	log.t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		log.t.Fatalf("Marshal: %v", err)
	}
	log.lines = append(log.lines, string(data))
	return log
}

func (log *testLog) raw(line string) *testLog {
	log.lines = append(log.lines, line)
	return log
}

// user adds a user message with plain string content.
func (log *testLog) user(text string) *testLog {
	return log.record(map[string]any{
		"type":    "user",
		"message": map[string]any{"role": "user", "content": text},
	})
}

// assistant adds an assistant message with one text block.
func (log *testLog) assistant(text string) *testLog {
	return log.blocks("assistant", map[string]any{"type": "text", "text": text})
}

func (log *testLog) thinking(text string) *testLog {
	return log.blocks("assistant", map[string]any{"type": "thinking", "thinking": text})
}

func (log *testLog) toolUse(id, name string, input map[string]any) *testLog {
	return log.blocks("assistant", map[string]any{
		"type": "tool_use", "id": id, "name": name, "input": input,
	})
}

func (log *testLog) toolResult(id, text string) *testLog {
	return log.blocks("user", map[string]any{
		"type": "tool_result", "tool_use_id": id, "content": text,
	})
}

func (log *testLog) blocks(role string, blocks ...map[string]any) *testLog {
	content := make([]any, len(blocks))
	for position, block := range blocks {
		content[position] = block
	}
	return log.record(map[string]any{
		"type":    role,
		"message": map[string]any{"role": role, "content": content},
	})
}

func (log *testLog) String() string {
	return strings.Join(log.lines, "\n") + "\n"
}

func (log *testLog) entries() []*sessionlog.Entry {
	log.t.Helper()
	entries, err := sessionlog.Read(strings.NewReader(log.String()))
	if err != nil {
		log.t.Fatalf("Read: %v", err)
	}
	return entries
}

// extractAll runs the pre-pass and extracts every entry.
func (log *testLog) extractAll(options Options) []Extraction {
	log.t.Helper()
	entries := log.entries()
	phrases := options.Phrases.WithDefaults()
	timeline := plan.BuildTimeline(entries, plan.TimelineOptions{
		ApprovalKeywords:  phrases.ApprovalKeywords,
		RejectionKeywords: phrases.RejectionKeywords,
	})
	extractor := NewExtractor(sessionlog.BuildIndex(entries), timeline, options)
	extractions := make([]Extraction, len(entries))
	for position, entry := range entries {
		extractions[position] = extractor.Extract(entry)
	}
	return extractions
}

// render renders the log with timestamps off.
func (log *testLog) render(options Options) string {
	log.t.Helper()
	options.ShowTimestamps = false
	return Render(log.entries(), "session.jsonl", options)
}

// countLines counts lines exactly equal to want.
func countLines(document, want string) int {
	count := 0
	for _, line := range strings.Split(document, "\n") {
		if line == want {
			count++
		}
	}
	return count
}

// countPrefix counts lines starting with prefix.
func countPrefix(document, prefix string) int {
	count := 0
	for _, line := range strings.Split(document, "\n") {
		if strings.HasPrefix(line, prefix) {
			count++
		}
	}
	return count
}

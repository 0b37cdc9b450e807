// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionlog

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// sampleLog is a representative fragment of a Claude Code session log.
const sampleLog = `{"type":"user","sessionId":"s-1","cwd":"/work","gitBranch":"main","version":"2.0.1","timestamp":"2026-01-02T03:04:05.000Z","message":{"role":"user","content":"Add a README"}}
{"type":"assistant","timestamp":"2026-01-02T03:04:06.000Z","message":{"role":"assistant","content":[{"type":"thinking","thinking":"Simple task."},{"type":"text","text":"Let me write it."},{"type":"tool_use","id":"tu-1","name":"Write","input":{"file_path":"/work/README.md","content":"# Hi\n"}}]}}

{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu-1","content":"File created","is_error":false}]}}
{"type":"summary","summary":"README work"}
`

func TestReadParsesEntries(t *testing.T) {
	t.Parallel()

	entries, err := Read(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4 (blank line skipped)", len(entries))
	}

	first := entries[0]
	if first.Index != 0 || first.Line != 1 {
		t.Errorf("first entry Index/Line = %d/%d, want 0/1", first.Index, first.Line)
	}
	if !first.HasText || first.Text != "Add a README" {
		t.Errorf("first entry text = %q (HasText=%v)", first.Text, first.HasText)
	}
	if first.SessionID != "s-1" || first.WorkingDirectory != "/work" || first.GitBranch != "main" {
		t.Errorf("metadata not parsed: %+v", first)
	}

	assistant := entries[1]
	if assistant.EffectiveRole() != "assistant" {
		t.Errorf("assistant role = %q", assistant.EffectiveRole())
	}
	if len(assistant.Blocks) != 3 {
		t.Fatalf("assistant has %d blocks, want 3", len(assistant.Blocks))
	}
	if assistant.Blocks[0].Type != BlockThinking || assistant.Blocks[0].Text != "Simple task." {
		t.Errorf("block 0 = %+v, want thinking", assistant.Blocks[0])
	}
	toolUse := assistant.Blocks[2].ToolUse
	if toolUse == nil || toolUse.Name != "Write" || toolUse.ID != "tu-1" {
		t.Fatalf("block 2 tool use = %+v", toolUse)
	}
	if got := toolUse.StringField("file_path"); got != "/work/README.md" {
		t.Errorf("file_path = %q", got)
	}

	// The blank line still counts toward line numbers.
	result := entries[2]
	if result.Line != 4 {
		t.Errorf("tool result Line = %d, want 4", result.Line)
	}
	outcomes := result.ToolResults()
	if len(outcomes) != 1 || outcomes[0].Text() != "File created" {
		t.Errorf("tool results = %+v", outcomes)
	}

	summary := entries[3]
	if summary.EffectiveRole() != "summary" {
		t.Errorf("summary role = %q, want type fallback", summary.EffectiveRole())
	}
	if summary.HasText || len(summary.Blocks) != 0 {
		t.Errorf("summary should carry no content: %+v", summary)
	}
}

func TestReadMalformedLineContinues(t *testing.T) {
	t.Parallel()

	input := `{"type":"user","message":{"role":"user","content":"one"}}
{not json
null
{"type":"user","message":{"role":"user","content":"two"}}
`
	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if !entries[1].IsError() || !strings.HasPrefix(entries[1].ParseError, "line 2: ") {
		t.Errorf("entry 1 ParseError = %q, want line 2 diagnostic", entries[1].ParseError)
	}
	if !entries[2].IsError() || !strings.Contains(entries[2].ParseError, "JSON object") {
		t.Errorf("entry 2 ParseError = %q, want non-object diagnostic", entries[2].ParseError)
	}
	if entries[3].IsError() || entries[3].Text != "two" {
		t.Errorf("entry after bad lines not parsed: %+v", entries[3])
	}
}

func TestReadLongLine(t *testing.T) {
	t.Parallel()

	// Longer than bufio.Scanner's default and the reader's buffer.
	payload := strings.Repeat("x", 3*1024*1024)
	input := `{"type":"user","message":{"role":"user","content":"` + payload + `"}}` + "\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Text) != len(payload) {
		t.Fatalf("long line not read intact")
	}
}

func TestReadNonObjectListItems(t *testing.T) {
	t.Parallel()

	input := `{"type":"user","message":{"role":"user","content":["plain string",42,{"type":"image","source":{}}]}}`
	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	blocks := entries[0].Blocks
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[0].Type != BlockUnknown || blocks[0].Text != "plain string" {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	if blocks[1].Text != "42" {
		t.Errorf("block 1 text = %q, want 42", blocks[1].Text)
	}
	if blocks[2].RawType != "image" || blocks[2].Text != "" {
		t.Errorf("block 2 = %+v, want image with no text", blocks[2])
	}
}

func TestToolOutcomeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"string", `"hello"`, "hello"},
		{"list", `[{"type":"text","text":"a"},{"type":"image"},{"type":"text","text":"b"}]`, "a\n[image]\nb"},
		{"object", `{"k":1}`, `{"k":1}`},
		{"empty", ``, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			outcome := &ToolOutcome{Content: []byte(test.content)}
			if got := outcome.Text(); got != test.want {
				t.Errorf("Text() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestReadCompressed(t *testing.T) {
	t.Parallel()

	compressors := map[Compression]func(*bytes.Buffer) error{
		CompressionZstd: func(buffer *bytes.Buffer) error {
			encoder, err := zstd.NewWriter(buffer)
			if err != nil {
				return err
			}
			if _, err := encoder.Write([]byte(sampleLog)); err != nil {
				return err
			}
			return encoder.Close()
		},
		CompressionGzip: func(buffer *bytes.Buffer) error {
			writer := gzip.NewWriter(buffer)
			if _, err := writer.Write([]byte(sampleLog)); err != nil {
				return err
			}
			return writer.Close()
		},
		CompressionLZ4: func(buffer *bytes.Buffer) error {
			writer := lz4.NewWriter(buffer)
			if _, err := writer.Write([]byte(sampleLog)); err != nil {
				return err
			}
			return writer.Close()
		},
	}

	for compression, compress := range compressors {
		t.Run(string(compression), func(t *testing.T) {
			var buffer bytes.Buffer
			if err := compress(&buffer); err != nil {
				t.Fatalf("compressing: %v", err)
			}
			if got := DetectCompression(buffer.Bytes()); got != compression {
				t.Fatalf("DetectCompression = %q, want %q", got, compression)
			}
			entries, err := Read(&buffer)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(entries) != 4 {
				t.Errorf("got %d entries, want 4", len(entries))
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("writing log: %v", err)
	}
	entries, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d entries, want 4", len(entries))
	}
}

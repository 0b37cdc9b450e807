// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/transcript/lib/transcript"
)

func TestRenderToStdout(t *testing.T) {
	logPath := newSession(t).user("Hello there").assistant("General Kenobi").write(t.TempDir(), "abc.jsonl")

	output, err := execute(t, "render", logPath, "--color", "never", "--title", "first-contact")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"# First Contact", "## 🧑 USER #1", "Hello there", "## 🤖 Claude", "General Kenobi"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderStyledStdout(t *testing.T) {
	logPath := newSession(t).user("Hello there").write(t.TempDir(), "abc.jsonl")

	output, err := execute(t, "render", logPath, "--color", "always", "--width", "60")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(output, "## 🧑") {
		t.Errorf("styled output should not carry heading markers:\n%s", output)
	}
	if output == ansi.Strip(output) {
		t.Error("--color always should style the output")
	}
	if !strings.Contains(ansi.Strip(output), "Hello there") {
		t.Errorf("styled output missing text:\n%s", output)
	}
}

func TestRenderToFile(t *testing.T) {
	directory := t.TempDir()
	logPath := newSession(t).planSession().write(directory, "abc.jsonl")
	outputPath := filepath.Join(directory, "out.md")

	stdout, err := execute(t, "render", logPath, outputPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stdout != "" {
		t.Errorf("nothing should go to stdout, got %q", stdout)
	}
	document, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"**Reason:** Add tests", "**Changes to next revision:**", "+1. Test"} {
		if !strings.Contains(string(document), want) {
			t.Errorf("document missing %q:\n%s", want, document)
		}
	}
}

func TestRenderOutputDir(t *testing.T) {
	directory := t.TempDir()
	first := newSession(t).user("first session").write(directory, "one.jsonl")
	second := newSession(t).user("second session").write(directory, "two.jsonl")
	outputDir := filepath.Join(directory, "exports")

	if _, err := execute(t, "render", "-o", outputDir, "-j", "2", first, second); err != nil {
		t.Fatalf("render: %v", err)
	}
	for name, want := range map[string]string{"one.md": "first session", "two.md": "second session"} {
		document, err := os.ReadFile(filepath.Join(outputDir, name))
		if err != nil {
			t.Errorf("reading %s: %v", name, err)
			continue
		}
		if !strings.Contains(string(document), want) {
			t.Errorf("%s missing %q", name, want)
		}
	}
}

func TestRenderSeveralLogsUseExportDir(t *testing.T) {
	directory := t.TempDir()
	exportDir := filepath.Join(directory, "configured")
	configPath := writeConfigFile(t, "paths:\n  export_dir: "+exportDir+"\n")
	first := newSession(t).user("one").write(directory, "one.jsonl")
	second := newSession(t).user("two").write(directory, "two.jsonl")

	if _, err := execute(t, "render", "--config", configPath, first, second); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, name := range []string{"one.md", "two.md"} {
		if _, err := os.Stat(filepath.Join(exportDir, name)); err != nil {
			t.Errorf("expected %s in the configured export dir: %v", name, err)
		}
	}
}

func TestRenderDuplicateOutputNames(t *testing.T) {
	directory := t.TempDir()
	first := newSession(t).user("a").write(directory, "a/abc.jsonl")
	second := newSession(t).user("b").write(directory, "b/abc.jsonl")

	_, err := execute(t, "render", "-o", filepath.Join(directory, "out"), first, second)
	if err == nil || !strings.Contains(err.Error(), "abc.md") {
		t.Errorf("error = %v, want a duplicate output name error", err)
	}
}

func TestRenderErrors(t *testing.T) {
	logPath := newSession(t).user("hi").write(t.TempDir(), "abc.jsonl")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no logs", []string{"render"}, "at least one session log"},
		{"bad color", []string{"render", logPath, "--color", "sometimes"}, "--color must be"},
		{"bad jobs", []string{"render", logPath, "-j", "0"}, "--jobs must be at least 1"},
		{"unknown preset", []string{"render", logPath, "--preset", "verbose"}, "unknown preset"},
		{"flag typo", []string{"render", logPath, "--show-tool"}, "did you mean --show-tools"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := execute(t, test.args...)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestRenderFailureKeepsExistingOutput(t *testing.T) {
	directory := t.TempDir()
	outputPath := filepath.Join(directory, "out.md")
	if err := os.WriteFile(outputPath, []byte("previous transcript\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	err := renderToFile(filepath.Join(directory, "missing.jsonl"), outputPath, transcript.DefaultOptions(), logger)
	if err == nil {
		t.Fatal("expected an error for a missing log")
	}
	content, readErr := os.ReadFile(outputPath)
	if readErr != nil || string(content) != "previous transcript\n" {
		t.Errorf("existing output changed: %q, %v", content, readErr)
	}
	entries, readErr := os.ReadDir(directory)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestRenderReplacesOutput(t *testing.T) {
	directory := t.TempDir()
	logPath := newSession(t).user("fresh content").write(directory, "abc.jsonl")
	outputPath := filepath.Join(directory, "out.md")
	if err := os.WriteFile(outputPath, []byte("stale\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if err := renderToFile(logPath, outputPath, transcript.DefaultOptions(), logger); err != nil {
		t.Fatalf("renderToFile: %v", err)
	}
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "stale") || !strings.Contains(string(content), "fresh content") {
		t.Errorf("output not replaced:\n%s", content)
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("output mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestRenderAllCanceled(t *testing.T) {
	directory := t.TempDir()
	logPath := newSession(t).user("hi").write(directory, "abc.jsonl")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := renderAll(ctx, []string{logPath}, filepath.Join(directory, "out"), 1, transcript.DefaultOptions(), logger)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("error = %v, want an interruption error", err)
	}
}

func TestRenderParamsApply(t *testing.T) {
	params := renderParams{
		ShowTools:         true,
		ExcludeTimestamps: true,
		NoTruncateOutputs: true,
		Title:             "my-session",
	}
	options := params.apply(transcript.DefaultOptions())
	if !options.ShowToolCalls || options.ShowTimestamps || options.TruncateToolOutputs {
		t.Errorf("switches not applied: %+v", options)
	}
	if !options.TruncateToolInputs {
		t.Error("unset switches should keep the configured value")
	}
	if options.Title != "my-session" {
		t.Errorf("title = %q", options.Title)
	}

	var none renderParams
	full := transcript.DefaultOptions()
	full.ShowThinking = true
	if got := none.apply(full); !got.ShowThinking {
		t.Error("an unset switch must not turn off a configured option")
	}
}

func TestResolveColor(t *testing.T) {
	var buffer bytes.Buffer

	if _, styled, err := resolveColor("auto", &buffer); err != nil || styled {
		t.Errorf("auto on a buffer = styled %v, err %v; want plain", styled, err)
	}
	if _, styled, err := resolveColor("never", &buffer); err != nil || styled {
		t.Errorf("never = styled %v, err %v", styled, err)
	}
	profile, styled, err := resolveColor("always", &buffer)
	if err != nil || !styled || profile != termenv.ANSI256 {
		t.Errorf("always on a buffer = %v, %v, %v; want ANSI256 styled", profile, styled, err)
	}
	if _, _, err := resolveColor("yes", &buffer); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestResolveWidth(t *testing.T) {
	var buffer bytes.Buffer
	if got := resolveWidth(72, &buffer); got != 72 {
		t.Errorf("explicit width = %d", got)
	}
	if got := resolveWidth(0, &buffer); got != 100 {
		t.Errorf("default width = %d, want 100", got)
	}
}

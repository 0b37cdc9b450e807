// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termdoc

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// stripped renders markdown and returns ANSI-stripped visible text.
func stripped(input string, width int) string {
	return ansi.Strip(raw(input, width))
}

// raw renders markdown with a 256-color profile.
func raw(input string, width int) string {
	return Render(input, Options{Width: width, Profile: termenv.ANSI256})
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	if result := Render("", Options{}); result != "" {
		t.Errorf("expected empty string for empty input, got %q", result)
	}
}

func TestRenderParagraphReflow(t *testing.T) {
	t.Parallel()

	input := "This is a paragraph that was\nwritten at a narrow width with\nhard line breaks embedded in it."
	result := strings.TrimRight(stripped(input, 120), "\n")

	if strings.Contains(result, "\n") {
		t.Errorf("expected no newlines at width=120, got:\n%s", result)
	}
	if !strings.Contains(result, "was written at") {
		t.Errorf("expected soft break converted to space, got:\n%s", result)
	}
}

func TestRenderParagraphWrapsToWidth(t *testing.T) {
	t.Parallel()

	input := "This is a paragraph that should be wrapped at the target width."
	for _, line := range strings.Split(stripped(input, 30), "\n") {
		if ansi.StringWidth(line) > 30 {
			t.Errorf("line exceeds width 30: %q", line)
		}
	}
}

func TestRenderSectionHeadings(t *testing.T) {
	t.Parallel()

	input := "# Session\n\n## 🧑 USER #1\n\nHello\n\n---\n\n## 🤖 Claude\n\nHi\n"
	result := stripped(input, 80)

	for _, want := range []string{"Session", "🧑 USER #1", "🤖 Claude", "Hello", "Hi", "────"} {
		if !strings.Contains(result, want) {
			t.Errorf("output missing %q:\n%s", want, result)
		}
	}
	if strings.Contains(result, "## ") {
		t.Errorf("heading markers should not survive:\n%s", result)
	}
}

func TestHeadingColor(t *testing.T) {
	t.Parallel()

	theme := DefaultTheme
	tests := []struct {
		level   int
		content string
		want    string
	}{
		{2, "🧑 USER #3", string(theme.UserHeading)},
		{2, "🤖 Claude", string(theme.AssistantHeading)},
		{2, "🤖 Claude Progress", string(theme.ProgressHeading)},
		{2, "♻️ Session Compacted", string(theme.NoticeHeading)},
		{2, "⚠️ Unreadable Entry", string(theme.NoticeHeading)},
		{1, "Session Transcript", string(theme.HeaderForeground)},
		{3, "🧑 USER #3", string(theme.NormalText)},
	}
	for _, test := range tests {
		if got := string(theme.HeadingColor(test.level, test.content)); got != test.want {
			t.Errorf("HeadingColor(%d, %q) = %s, want %s", test.level, test.content, got, test.want)
		}
	}
}

func TestRenderDiffBlock(t *testing.T) {
	t.Parallel()

	input := "```diff\n@@ -1,2 +1,3 @@ ## Steps\n 1. Build\n+2. Test\n-3. Ship\n```\n"
	result := raw(input, 80)
	plain := ansi.Strip(result)

	for _, want := range []string{"@@ -1,2 +1,3 @@ ## Steps", "+2. Test", "-3. Ship"} {
		if !strings.Contains(plain, want) {
			t.Errorf("diff output missing %q:\n%s", want, plain)
		}
	}
	if result == plain {
		t.Error("diff lines should be colored")
	}
}

func TestRenderCodeBlockKeepsLines(t *testing.T) {
	t.Parallel()

	input := "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n"
	result := stripped(input, 20)
	if !strings.Contains(result, "func main() {") || !strings.Contains(result, "println(\"hi\")") {
		t.Errorf("code lines should not be reflowed:\n%s", result)
	}
}

func TestRenderSelectedAnswer(t *testing.T) {
	t.Parallel()

	input := "1. <ins>**SQLite**</ins>  \n   Embedded  \n2. **Postgres**\n"
	result := raw(input, 80)
	plain := ansi.Strip(result)

	if strings.Contains(plain, "<ins>") || strings.Contains(plain, "</ins>") {
		t.Errorf("ins tags should be consumed:\n%s", plain)
	}
	if !strings.Contains(plain, "SQLite") || !strings.Contains(plain, "Postgres") {
		t.Errorf("answer labels missing:\n%s", plain)
	}
	// SGR 4 is underline.
	if !strings.Contains(result, "4") || !strings.Contains(result, "\x1b[") {
		t.Errorf("selected answer should be styled:\n%q", result)
	}
}

func TestRenderNavigationLink(t *testing.T) {
	t.Parallel()

	result := stripped("[⏭ Skip to next user message](#-user-2)\n\n[docs](https://example.com)\n", 80)
	if strings.Contains(result, "#-user-2") {
		t.Errorf("in-document anchors should not be printed:\n%s", result)
	}
	if !strings.Contains(result, "⏭ Skip to next user message") {
		t.Errorf("link text missing:\n%s", result)
	}
	if !strings.Contains(result, "docs (https://example.com)") {
		t.Errorf("external destination should be shown:\n%s", result)
	}
}

func TestRenderList(t *testing.T) {
	t.Parallel()

	result := stripped("- one\n- two\n\n3. three\n4. four\n", 80)
	for _, want := range []string{"• one", "• two", "3. three", "4. four"} {
		if !strings.Contains(result, want) {
			t.Errorf("output missing %q:\n%s", want, result)
		}
	}
}

func TestRenderBlockquote(t *testing.T) {
	t.Parallel()

	result := stripped("> Debugging the login flow\n", 80)
	if !strings.Contains(result, "│ Debugging the login flow") {
		t.Errorf("blockquote prefix missing:\n%s", result)
	}
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	result := stripped("| Rev | Status |\n|---|---|\n| 1 | rejected |\n| 2 | approved |\n", 80)
	for _, want := range []string{"Rev", "Status", "rejected", "approved", "───"} {
		if !strings.Contains(result, want) {
			t.Errorf("table missing %q:\n%s", want, result)
		}
	}
}

func TestRenderAsciiProfileIsPlain(t *testing.T) {
	t.Parallel()

	input := "## 🤖 Claude\n\n**Bold** and `code`\n\n```diff\n+added\n```\n"
	result := Render(input, Options{Width: 80, Profile: termenv.Ascii})
	if strings.Contains(result, "\x1b[3") {
		t.Errorf("ascii profile should emit no colors:\n%q", result)
	}
	if !strings.Contains(ansi.Strip(result), "Bold and code") {
		t.Errorf("text missing:\n%s", result)
	}
}

func TestRenderTaskList(t *testing.T) {
	t.Parallel()

	result := stripped("- [x] Write the parser\n- [ ] Wire the CLI\n", 80)
	for _, want := range []string{"• [x] Write the parser", "• [ ] Wire the CLI"} {
		if !strings.Contains(result, want) {
			t.Errorf("output missing %q:\n%s", want, result)
		}
	}
}

func TestRenderInlineTagShownAsText(t *testing.T) {
	t.Parallel()

	result := stripped("Use <kbd>Ctrl</kbd> to select\n", 80)
	if !strings.Contains(result, "Use <kbd>Ctrl</kbd> to select") {
		t.Errorf("inline tags should be printed as written:\n%s", result)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/transcript/lib/plan"
)

// Brevity limits, in characters.
const (
	briefActionLimit = 200
	briefTextLimit   = 300
)

// IsCaveat reports whether text is a local-command caveat preamble.
func (phrases Phrases) IsCaveat(text string) bool {
	return containsAnyFold(text, phrases.Caveat)
}

// IsCompaction reports whether text is a context-compaction banner.
func (phrases Phrases) IsCompaction(text string) bool {
	return containsAnyFold(text, phrases.Compaction)
}

// IsIrrelevantCommand reports whether the slash command is dropped
// from transcripts.
func (phrases Phrases) IsIrrelevantCommand(name string) bool {
	for _, command := range phrases.IrrelevantCommands {
		if name == command {
			return true
		}
	}
	return false
}

// IsBrief reports whether text is short enough to merge into a
// progress block. An action announcement ("Let me ...") or text that
// accompanies a tool call may be up to 200 characters. Anything else
// may be up to 300 characters if it has no heading and no paragraph
// break.
func (phrases Phrases) IsBrief(text string, precedesTool bool) bool {
	text = strings.TrimSpace(text)
	length := utf8.RuneCountInString(text)

	if precedesTool || hasPrefixFold(text, phrases.ActionPrefixes) {
		if length <= briefActionLimit {
			return true
		}
	}
	if length > briefTextLimit {
		return false
	}
	if strings.Contains(text, "\n\n") {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " "), "#") {
			return false
		}
	}
	return true
}

// ClassifyPlanOutcome decides how a plan submission's outcome reads.
// Text that reads as neither (tool errors, unexpected wording) is
// StatusPending and rendered as a raw status.
func (phrases Phrases) ClassifyPlanOutcome(text string) plan.Status {
	return plan.ClassifyOutcome(text, phrases.ApprovalKeywords, phrases.RejectionKeywords)
}

// ExtractRejectionReason returns the user's feedback from a plan
// rejection, or ok=false when the text is only boilerplate.
func (phrases Phrases) ExtractRejectionReason(text string) (reason string, ok bool) {
	reason = strings.TrimSpace(text)
	for _, pattern := range phrases.reasonPatterns() {
		if match := pattern.FindStringSubmatch(reason); len(match) > 1 {
			reason = strings.TrimSpace(match[1])
			break
		}
	}
	if reason == "" {
		return "", false
	}
	for _, prefix := range phrases.BoilerplateReasons {
		if strings.HasPrefix(reason, prefix) {
			return "", false
		}
	}
	return reason, true
}

// Command is a slash command invocation recorded in a user message.
type Command struct {
	Name    string
	Message string
	Args    string
}

// Label renders the command compactly: the bold name followed by its
// arguments, or by its message when that adds anything.
func (command Command) Label() string {
	switch {
	case command.Args != "":
		return fmt.Sprintf("**%s** %s", command.Name, command.Args)
	case command.Message != "" && command.Message != strings.TrimPrefix(command.Name, "/"):
		return fmt.Sprintf("**%s**: %s", command.Name, command.Message)
	default:
		return fmt.Sprintf("**%s**", command.Name)
	}
}

var (
	commandNamePattern    = regexp.MustCompile(`<command-name>([^<]+)</command-name>`)
	commandMessagePattern = regexp.MustCompile(`<command-message>([^<]*)</command-message>`)
	commandArgsPattern    = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)
	commandTagPattern     = regexp.MustCompile(`</?command-(?:name|message|args)>`)
)

// HasCommandMarkup reports whether text carries slash-command markup.
func HasCommandMarkup(text string) bool {
	return strings.Contains(text, "<command-name>")
}

// ParseCommand extracts the slash command from text. ok is false when
// the markup is malformed (no complete command-name element).
func ParseCommand(text string) (command Command, ok bool) {
	name := commandNamePattern.FindStringSubmatch(text)
	if name == nil {
		return Command{}, false
	}
	command.Name = strings.TrimSpace(name[1])
	if command.Name == "" {
		return Command{}, false
	}
	if message := commandMessagePattern.FindStringSubmatch(text); message != nil {
		command.Message = strings.TrimSpace(message[1])
	}
	if args := commandArgsPattern.FindStringSubmatch(text); args != nil {
		command.Args = strings.TrimSpace(args[1])
	}
	return command, true
}

// StripCommandMarkup removes command markup tags, keeping their text.
func StripCommandMarkup(text string) string {
	return strings.TrimSpace(commandTagPattern.ReplaceAllString(text, ""))
}

// IsLocalCommandOutput reports whether text is the captured stdout of
// a local slash command.
func IsLocalCommandOutput(text string) bool {
	return strings.Contains(text, "<local-command-stdout>")
}

// ShiftHeadings demotes every Markdown heading in text by one level,
// so a document embedded under a section header nests beneath it.
// Lines starting with '#' inside code blocks are left alone.
func ShiftHeadings(text string) string {
	headingLines := plan.HeadingLines(text)
	if len(headingLines) == 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for _, line := range headingLines {
		indent := len(lines[line]) - len(strings.TrimLeft(lines[line], " "))
		lines[line] = lines[line][:indent] + "#" + lines[line][indent:]
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens text to limit characters, appending the original
// length. Text within the limit is returned unchanged.
func Truncate(text string, limit int) string {
	length := utf8.RuneCountInString(text)
	if limit <= 0 || length <= limit {
		return text
	}
	return fmt.Sprintf("%s\n... [%d chars total]", truncateRunes(text, limit), length)
}

// Fence wraps body in a fenced code block whose fence is longer than
// any backtick run inside body.
func Fence(body, language string) string {
	longest, run := 0, 0
	for _, character := range body {
		if character == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", max(3, longest+1))
	return fence + language + "\n" + strings.TrimRight(body, "\n") + "\n" + fence
}

func truncateRunes(text string, limit int) string {
	count := 0
	for position := range text {
		if count == limit {
			return text[:position]
		}
		count++
	}
	return text
}

func containsAnyFold(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func hasPrefixFold(text string, prefixes []string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

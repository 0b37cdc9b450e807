// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"log/slog"
	"strings"

	"github.com/bureau-foundation/transcript/lib/plan"
	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// errorDiagnosticLimit bounds the parser diagnostic shown for an
// unreadable line.
const errorDiagnosticLimit = 200

// PartKind is the coarse content type of a rendered part.
type PartKind int

const (
	PartText PartKind = iota
	PartToolCall
	PartToolResult
)

// Part is one rendered fragment of an entry.
type Part struct {
	Kind PartKind
	Text string
}

// ContentType summarizes the kinds of an entry's parts.
type ContentType string

const (
	ContentNone       ContentType = ""
	ContentText       ContentType = "text"
	ContentToolCall   ContentType = "tool_call"
	ContentToolResult ContentType = "tool_result"
	ContentMixed      ContentType = "mixed"
)

// Extraction is what one entry contributes to the transcript.
type Extraction struct {
	Parts []Part

	// Brief marks short status text that may be merged with its
	// neighbours into a progress block.
	Brief bool

	// HasPlanResult is set when the entry carries the outcome of a
	// plan submission. Such entries are never brief.
	HasPlanResult bool

	// PlanOutcome is the classified outcome when HasPlanResult is set.
	PlanOutcome plan.Status

	ContentType ContentType

	// Compaction marks an entry that announced a context compaction.
	Compaction bool

	// Unreadable marks an error entry for a line that did not parse.
	Unreadable bool
}

// Visible reports whether the entry produces any output.
func (extraction *Extraction) Visible() bool {
	return len(extraction.Parts) > 0 || extraction.Compaction
}

// Text joins the parts the way they are rendered.
func (extraction *Extraction) Text() string {
	texts := make([]string, len(extraction.Parts))
	for position, part := range extraction.Parts {
		texts[position] = part.Text
	}
	return strings.Join(texts, "\n")
}

// Extractor classifies entries against one log's tool index and plan
// timeline. It is read-only after construction.
type Extractor struct {
	options  Options
	phrases  Phrases
	index    *sessionlog.Index
	timeline *plan.Timeline
	logger   *slog.Logger
}

// NewExtractor returns an Extractor for a log whose index and
// timeline have already been built.
func NewExtractor(index *sessionlog.Index, timeline *plan.Timeline, options Options) *Extractor {
	return &Extractor{
		options:  options,
		phrases:  options.Phrases.WithDefaults(),
		index:    index,
		timeline: timeline,
		logger:   options.logger(),
	}
}

// Extract produces the renderable parts of entry.
func (extractor *Extractor) Extract(entry *sessionlog.Entry) Extraction {
	var extraction Extraction

	if entry.IsError() {
		extraction.Unreadable = true
		extraction.Parts = []Part{{
			Kind: PartText,
			Text: "[ERROR] " + Truncate(entry.ParseError, errorDiagnosticLimit),
		}}
		extraction.ContentType = ContentText
		return extraction
	}

	if entry.HasText {
		extractor.extractText(&extraction, entry.Text)
	}

	hasToolUse := false
	for blockIndex := range entry.Blocks {
		block := &entry.Blocks[blockIndex]
		switch block.Type {
		case sessionlog.BlockText:
			extractor.extractText(&extraction, block.Text)

		case sessionlog.BlockThinking:
			if extractor.options.ShowThinking && strings.TrimSpace(block.Text) != "" {
				extraction.add(PartText, "\n💭 **Thinking:**")
				extraction.add(PartText, block.Text)
			}

		case sessionlog.BlockToolUse:
			hasToolUse = true
			extractor.extractToolUse(&extraction, block.ToolUse)

		case sessionlog.BlockToolResult:
			extractor.extractToolResult(&extraction, block.ToolResult)

		case sessionlog.BlockUnknown:
			switch {
			case block.RawType == "image":
				extraction.add(PartText, "*[image]*")
			case block.RawType == "" && block.Text != "":
				extraction.add(PartText, block.Text)
			}
		}
	}

	extraction.ContentType = contentType(extraction.Parts)
	extraction.Brief = len(extraction.Parts) > 0 &&
		!extraction.HasPlanResult &&
		extractor.phrases.IsBrief(extraction.Text(), hasToolUse)
	return extraction
}

// extractText applies the text filters: caveat preambles are dropped,
// compaction banners become a marker, slash commands are reduced to a
// label (or dropped), and local command output is dropped.
func (extractor *Extractor) extractText(extraction *Extraction, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	switch {
	case extractor.phrases.IsCaveat(text):
		return
	case extractor.phrases.IsCompaction(text):
		extraction.Compaction = true
		return
	case HasCommandMarkup(text):
		command, ok := ParseCommand(text)
		if !ok {
			if literal := StripCommandMarkup(text); literal != "" {
				extraction.add(PartText, literal)
			}
			return
		}
		if extractor.phrases.IsIrrelevantCommand(command.Name) {
			return
		}
		extraction.add(PartText, command.Label())
	case IsLocalCommandOutput(text):
		return
	default:
		extraction.add(PartText, text)
	}
}

func (extractor *Extractor) extractToolUse(extraction *Extraction, invocation *sessionlog.ToolInvocation) {
	switch invocation.Name {
	case sessionlog.QuestionToolName:
		questions, err := DecodeQuestions(invocation.Input)
		if err != nil {
			extractor.logger.Debug("question input not decoded", "tool_id", invocation.ID, "error", err)
		}
		answer, _ := extractor.index.Answer(invocation.ID)
		extraction.add(PartToolCall, "\n❓ **Question for User:**\n")
		extraction.add(PartToolCall, FormatQuestions(questions, answer))

	case plan.SubmitToolName:
		extraction.add(PartToolCall, "\n📋 **Submitting plan for approval...**")

	default:
		visible, full := extractor.toolVisibility(invocation)
		if !visible {
			return
		}
		extraction.add(PartToolCall, FormatToolCall(invocation, extractor.inputLimit(full)))
	}
}

func (extractor *Extractor) extractToolResult(extraction *Extraction, outcome *sessionlog.ToolOutcome) {
	id := outcome.ToolUseID
	if extractor.index.IsQuestion(id) {
		// Rendered inline with the question.
		return
	}

	if revision, ok := extractor.timeline.ByToolID(id); ok {
		successor, _ := extractor.timeline.Successor(revision.Index)
		text, status := extractor.phrases.FormatPlanOutcome(outcome.Text(), revision, successor)
		extraction.add(PartToolResult, "\n"+text)
		extraction.HasPlanResult = true
		extraction.PlanOutcome = status
		return
	}

	invocation, known := extractor.index.Invocation(id)
	if !known {
		if !extractor.options.ShowToolCalls {
			return
		}
		extractor.logger.Debug("tool outcome without a matching call", "tool_id", id)
		extraction.add(PartToolResult, FormatToolOutcome(outcome, nil, extractor.outputLimit(false)))
		return
	}

	visible, full := extractor.toolVisibility(invocation)
	if !visible {
		return
	}
	extraction.add(PartToolResult, FormatToolOutcome(outcome, invocation, extractor.outputLimit(full)))
}

// toolVisibility decides whether a call and its outcome are rendered,
// and whether they are forced to full detail. Delegated subagent calls
// can be forced on independently of ShowToolCalls.
func (extractor *Extractor) toolVisibility(invocation *sessionlog.ToolInvocation) (visible, full bool) {
	options := extractor.options
	if invocation.Name == taskToolName {
		explore := invocation.StringField("subagent_type") == exploreSubagent
		if (explore && options.ShowExploreSubagentFull) || (!explore && options.ShowOtherSubagentFull) {
			return true, true
		}
	}
	if !options.ShowToolCalls {
		return false, false
	}
	if options.ExcludeEditTools && editTools[invocation.Name] {
		return false, false
	}
	if options.ExcludeViewTools && viewTools[invocation.Name] {
		return false, false
	}
	return true, false
}

func (extractor *Extractor) inputLimit(full bool) int {
	if full || !extractor.options.TruncateToolInputs {
		return 0
	}
	return ToolInputLimit
}

func (extractor *Extractor) outputLimit(full bool) int {
	if full || !extractor.options.TruncateToolOutputs {
		return 0
	}
	return ToolOutputLimit
}

func (extraction *Extraction) add(kind PartKind, text string) {
	extraction.Parts = append(extraction.Parts, Part{Kind: kind, Text: text})
}

func contentType(parts []Part) ContentType {
	if len(parts) == 0 {
		return ContentNone
	}
	first := parts[0].Kind
	for _, part := range parts[1:] {
		if part.Kind != first {
			return ContentMixed
		}
	}
	switch first {
	case PartToolCall:
		return ContentToolCall
	case PartToolResult:
		return ContentToolResult
	default:
		return ContentText
	}
}

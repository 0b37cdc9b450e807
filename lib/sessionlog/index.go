// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionlog

import (
	"encoding/json"
	"sort"
)

// QuestionToolName is the interactive multiple-choice tool. Its
// outcome is the user's answer and is rendered inline with the
// question rather than as a separate tool result.
const QuestionToolName = "AskUserQuestion"

// Index is the tool reference table for one log: which invocation
// every tool identifier belongs to, which outcome answered it, and
// the answers to multiple-choice questions. It is built once, before
// rendering, and is read-only afterwards.
type Index struct {
	invocations map[string]indexedInvocation
	outcomes    map[string]indexedOutcome
	answers     map[string]*Answer
}

type indexedInvocation struct {
	invocation *ToolInvocation
	entry      int
}

type indexedOutcome struct {
	outcome *ToolOutcome
	entry   int
}

// Answer is the user's reply to a multiple-choice question.
type Answer struct {
	// Text is the flattened outcome payload, e.g.
	// `User has answered your questions: "Which?"="A". ...`.
	Text string

	// Custom holds structured question → answer pairs when the log
	// recorded them alongside the outcome, sorted by question.
	Custom []CustomAnswer
}

// CustomAnswer is one structured question → answer pair.
type CustomAnswer struct {
	Question string
	Answer   string
}

// BuildIndex replays entries in order and records every tool
// invocation and outcome. Identifiers are unique per log; if a log
// repeats one anyway, the first occurrence wins.
//
// A question's answer is only recorded when the outcome appears after
// the question, matching how the log is produced.
func BuildIndex(entries []*Entry) *Index {
	index := &Index{
		invocations: make(map[string]indexedInvocation),
		outcomes:    make(map[string]indexedOutcome),
		answers:     make(map[string]*Answer),
	}

	for _, entry := range entries {
		for blockIndex := range entry.Blocks {
			block := &entry.Blocks[blockIndex]
			switch block.Type {
			case BlockToolUse:
				id := block.ToolUse.ID
				if _, seen := index.invocations[id]; !seen {
					index.invocations[id] = indexedInvocation{invocation: block.ToolUse, entry: entry.Index}
				}

			case BlockToolResult:
				id := block.ToolResult.ToolUseID
				if _, seen := index.outcomes[id]; !seen {
					index.outcomes[id] = indexedOutcome{outcome: block.ToolResult, entry: entry.Index}
				}
				if invocation, ok := index.invocations[id]; ok && invocation.invocation.Name == QuestionToolName {
					if _, answered := index.answers[id]; !answered {
						index.answers[id] = &Answer{
							Text:   block.ToolResult.Text(),
							Custom: structuredAnswers(entry.ToolUseResult),
						}
					}
				}
			}
		}
	}

	return index
}

// Invocation returns the tool call with the given identifier.
func (index *Index) Invocation(id string) (*ToolInvocation, bool) {
	found, ok := index.invocations[id]
	return found.invocation, ok
}

// InvocationEntry returns the entry index holding the tool call, or -1.
func (index *Index) InvocationEntry(id string) int {
	if found, ok := index.invocations[id]; ok {
		return found.entry
	}
	return -1
}

// Outcome returns the first outcome recorded for the identifier.
func (index *Index) Outcome(id string) (*ToolOutcome, bool) {
	found, ok := index.outcomes[id]
	return found.outcome, ok
}

// IsQuestion reports whether id belongs to a multiple-choice call.
func (index *Index) IsQuestion(id string) bool {
	found, ok := index.invocations[id]
	return ok && found.invocation.Name == QuestionToolName
}

// Answer returns the answer to the multiple-choice call id, if the
// user answered it.
func (index *Index) Answer(id string) (*Answer, bool) {
	answer, ok := index.answers[id]
	return answer, ok
}

// structuredAnswers extracts toolUseResult.answers, an object mapping
// question text to the chosen (or typed) answer.
func structuredAnswers(toolUseResult json.RawMessage) []CustomAnswer {
	if len(toolUseResult) == 0 {
		return nil
	}
	var payload struct {
		Answers map[string]json.RawMessage `json:"answers"`
	}
	if json.Unmarshal(toolUseResult, &payload) != nil || len(payload.Answers) == 0 {
		return nil
	}

	var answers []CustomAnswer
	for question, raw := range payload.Answers {
		var value string
		if json.Unmarshal(raw, &value) != nil {
			continue
		}
		answers = append(answers, CustomAnswer{Question: question, Answer: value})
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].Question < answers[j].Question
	})
	return answers
}

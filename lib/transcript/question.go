// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// Question is one multiple-choice prompt in an AskUserQuestion call.
type Question struct {
	Header      string           `json:"header"`
	Question    string           `json:"question"`
	Options     []QuestionOption `json:"options"`
	MultiSelect bool             `json:"multiSelect"`
}

// QuestionOption is one selectable answer.
type QuestionOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Custom answers are keyed by a prefix of the question text, matched
// against the start of each question.
const (
	customKeyLength      = 50
	questionPrefixLength = 60
)

// answerPairPattern matches the `"question"="answer"` pairs Claude Code
// writes into the answer text.
var answerPairPattern = regexp.MustCompile(`"([^"]+)"="([^"]+)"`)

// DecodeQuestions reads the questions from an AskUserQuestion input.
func DecodeQuestions(input json.RawMessage) ([]Question, error) {
	var payload struct {
		Questions []Question `json:"questions"`
	}
	if len(input) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(input, &payload); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return payload.Questions, nil
}

// FormatQuestions renders questions with the user's answer marked
// inline. answer may be nil when the question was never answered.
func FormatQuestions(questions []Question, answer *sessionlog.Answer) string {
	answerText := ""
	var custom []sessionlog.CustomAnswer
	if answer != nil {
		answerText = answer.Text
		custom = answer.Custom
		if len(custom) == 0 {
			custom = parseAnswerPairs(answerText)
		}
	}

	var output []string
	for _, question := range questions {
		output = append(output, fmt.Sprintf("**%s**: %s", question.Header, question.Question))
		if question.MultiSelect {
			output = append(output, "*(multiple selection allowed)*")
		}
		output = append(output, "")

		customAnswer, hasCustom := customAnswerFor(question.Question, custom)
		var selected []bool
		unmatchedCustom := false
		if hasCustom {
			selected, unmatchedCustom = selectByCustomAnswer(question, customAnswer)
		} else {
			selected = selectByAnswerText(question, answerText)
		}

		for position, option := range question.Options {
			if selected[position] {
				output = append(output, fmt.Sprintf("%d. <ins>**%s**</ins>  ", position+1, option.Label))
			} else {
				output = append(output, fmt.Sprintf("%d. **%s**  ", position+1, option.Label))
			}
			if option.Description != "" {
				output = append(output, fmt.Sprintf("   %s  ", option.Description))
			}
		}
		if unmatchedCustom {
			output = append(output, fmt.Sprintf("%d. <ins>**Custom:** %s</ins>  ", len(question.Options)+1, customAnswer))
		}
		output = append(output, "")
	}

	return strings.Join(output, "\n")
}

func parseAnswerPairs(text string) []sessionlog.CustomAnswer {
	var pairs []sessionlog.CustomAnswer
	for _, match := range answerPairPattern.FindAllStringSubmatch(text, -1) {
		pairs = append(pairs, sessionlog.CustomAnswer{Question: match[1], Answer: match[2]})
	}
	return pairs
}

// customAnswerFor finds the answer recorded for question. Keys are
// compared by their first 50 characters against the first 60 of the
// question, which tolerates the truncation and quoting the answer
// text applies to long questions.
func customAnswerFor(question string, answers []sessionlog.CustomAnswer) (string, bool) {
	questionPrefix := strings.ToLower(truncateRunes(question, questionPrefixLength))
	for _, answer := range answers {
		key := strings.ToLower(truncateRunes(answer.Question, customKeyLength))
		if key != "" && strings.Contains(questionPrefix, key) {
			return answer.Answer, true
		}
	}
	return "", false
}

// selectByCustomAnswer marks the options whose label equals the
// answer (case-insensitively). A multi-select answer lists its
// choices separated by commas and selects each of them when every
// choice is a label. unmatched reports that the answer is free text
// to show as an extra option.
func selectByCustomAnswer(question Question, answer string) (selected []bool, unmatched bool) {
	selected = make([]bool, len(question.Options))
	if position := labelIndex(question.Options, answer); position >= 0 {
		selected[position] = true
		return selected, false
	}

	if question.MultiSelect && strings.Contains(answer, ",") {
		var positions []int
		for _, choice := range strings.Split(answer, ",") {
			position := labelIndex(question.Options, strings.TrimSpace(choice))
			if position < 0 {
				return make([]bool, len(question.Options)), true
			}
			positions = append(positions, position)
		}
		for _, position := range positions {
			selected[position] = true
		}
		return selected, false
	}

	return selected, true
}

func labelIndex(options []QuestionOption, answer string) int {
	for position, option := range options {
		if option.Label != "" && strings.EqualFold(option.Label, answer) {
			return position
		}
	}
	return -1
}

// selectByAnswerText marks options whose label appears in free-text
// answer. When several labels appear, shorter labels lose to longer
// ones: a single-select question keeps the longest matching label(s);
// a multi-select question drops only labels contained in a longer
// matching label.
func selectByAnswerText(question Question, answerText string) []bool {
	selected := make([]bool, len(question.Options))
	if answerText == "" {
		return selected
	}
	lowerAnswer := strings.ToLower(answerText)

	var matching []int
	longest := 0
	for position, option := range question.Options {
		if option.Label != "" && strings.Contains(lowerAnswer, strings.ToLower(option.Label)) {
			matching = append(matching, position)
			longest = max(longest, len(option.Label))
		}
	}

	for _, position := range matching {
		label := question.Options[position].Label
		if !question.MultiSelect {
			selected[position] = len(label) >= longest
			continue
		}
		shadowed := false
		for _, other := range matching {
			otherLabel := question.Options[other].Label
			if other != position && len(otherLabel) > len(label) &&
				strings.Contains(strings.ToLower(otherLabel), strings.ToLower(label)) {
				shadowed = true
				break
			}
		}
		selected[position] = !shadowed
	}
	return selected
}

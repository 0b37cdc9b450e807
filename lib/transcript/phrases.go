// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/bureau-foundation/transcript/lib/plan"
)

// Phrases holds the free-text triggers the classifiers match on. The
// wording Claude Code uses for banners and tool outcomes is not a
// stable contract, so every list is data and can be replaced from
// configuration. Substring lists are matched case-insensitively.
type Phrases struct {
	// Caveat marks local-command preambles injected into the
	// conversation; matching text is dropped.
	Caveat []string `yaml:"caveat"`

	// Compaction marks the continuation banner written after the
	// context was summarized; matching text becomes a compaction
	// marker.
	Compaction []string `yaml:"compaction"`

	// ApprovalKeywords mark a plan outcome as approved.
	ApprovalKeywords []string `yaml:"approval_keywords"`

	// RejectionKeywords mark a non-approved plan outcome as a
	// rejection rather than some other status.
	RejectionKeywords []string `yaml:"rejection_keywords"`

	// RejectionReasonPatterns are regular expressions tried in order
	// against a rejection; the first submatch of the first match is
	// the user's stated reason.
	RejectionReasonPatterns []string `yaml:"rejection_reason_patterns"`

	// BoilerplateReasons are prefixes of rejection text that carry no
	// user feedback and are not shown as a reason.
	BoilerplateReasons []string `yaml:"boilerplate_reasons"`

	// IrrelevantCommands are slash commands whose invocations are
	// dropped from the transcript.
	IrrelevantCommands []string `yaml:"irrelevant_commands"`

	// ActionPrefixes start short "doing X next" announcements, which
	// are brief at a looser length limit.
	ActionPrefixes []string `yaml:"action_prefixes"`
}

// DefaultPhrases returns the phrases observed in Claude Code logs.
func DefaultPhrases() Phrases {
	return Phrases{
		Caveat: []string{
			"caveat: the messages below were generated",
			"do not respond to these messages",
		},
		Compaction: []string{
			"this session is being continued from a previous conversation",
			"the conversation is summarized below",
			"context was compacted",
			"conversation that ran out of context",
		},
		ApprovalKeywords:  slices.Clone(plan.DefaultApprovalKeywords),
		RejectionKeywords: slices.Clone(plan.DefaultRejectionKeywords),
		RejectionReasonPatterns: []string{
			`(?is)the user said:\s*(.+)`,
			`(?is)(?:rejected|denied)[^:]*:\s*(.+)`,
		},
		BoilerplateReasons: []string{"The user doesn't want"},
		IrrelevantCommands: []string{"/usage", "/cost", "/help", "/clear", "/compact", "/config"},
		ActionPrefixes: []string{
			"now let me ", "now update", "now i'll ", "now i will ",
			"let me ", "i'll now ", "i will now ",
		},
	}
}

// WithDefaults returns phrases with every empty list replaced by the
// corresponding DefaultPhrases list.
func (phrases Phrases) WithDefaults() Phrases {
	defaults := DefaultPhrases()
	fill := func(value *[]string, fallback []string) {
		if len(*value) == 0 {
			*value = fallback
		}
	}
	fill(&phrases.Caveat, defaults.Caveat)
	fill(&phrases.Compaction, defaults.Compaction)
	fill(&phrases.ApprovalKeywords, defaults.ApprovalKeywords)
	fill(&phrases.RejectionKeywords, defaults.RejectionKeywords)
	fill(&phrases.RejectionReasonPatterns, defaults.RejectionReasonPatterns)
	fill(&phrases.BoilerplateReasons, defaults.BoilerplateReasons)
	fill(&phrases.IrrelevantCommands, defaults.IrrelevantCommands)
	fill(&phrases.ActionPrefixes, defaults.ActionPrefixes)
	return phrases
}

// Validate reports the first rejection-reason pattern that does not
// compile.
func (phrases Phrases) Validate() error {
	for position, pattern := range phrases.RejectionReasonPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("rejection_reason_patterns[%d]: %w", position, err)
		}
	}
	return nil
}

// reasonPatterns compiles RejectionReasonPatterns, skipping any that
// do not compile. Configuration is validated on load, so a skip here
// only happens for programmatically built Phrases.
func (phrases Phrases) reasonPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases.RejectionReasonPatterns))
	for _, pattern := range phrases.RejectionReasonPatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		patterns = append(patterns, compiled)
	}
	return patterns
}

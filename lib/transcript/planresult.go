// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bureau-foundation/transcript/lib/plan"
)

// Plan outcome markers. The navigation pass finds outcomes by their
// placeholder line and user turns by their header.
const (
	planApprovedMarker = "✅ **Plan Approved**"
	planRejectedMarker = "❌ **Plan Rejected**"
	planStatusLimit    = 500
)

var placeholderPattern = regexp.MustCompile(`^__NAV_PLAN_(\d+)__$`)

// planPlaceholder is replaced by navigation links after rendering.
func planPlaceholder(index int) string {
	return "__NAV_PLAN_" + strconv.Itoa(index) + "__"
}

// FormatPlanOutcome renders the outcome of a plan submission.
//
// An approved plan shows its full content with headings demoted one
// level. A rejected plan shows the user's reason and what changed in
// the next revision. Anything else shows the outcome text as a
// status. successor is nil when no later revision exists.
func (phrases Phrases) FormatPlanOutcome(text string, revision, successor *plan.Revision) (string, plan.Status) {
	status := phrases.ClassifyPlanOutcome(text)
	if revision != nil && revision.Resolved {
		status = revision.Status()
	}

	var output []string
	switch status {
	case plan.StatusApproved:
		output = append(output, planApprovedMarker+"\n")
		if revision != nil {
			output = append(output, planPlaceholder(revision.Index))
			if revision.Content != "" {
				output = append(output, "", ShiftHeadings(revision.Content))
			}
		}

	case plan.StatusRejected:
		output = append(output, planRejectedMarker+"\n")
		if reason, ok := phrases.ExtractRejectionReason(text); ok {
			output = append(output, fmt.Sprintf("**Reason:** %s\n", reason))
		}
		if revision != nil {
			output = append(output, planPlaceholder(revision.Index), "")
			output = append(output, rejectionChanges(revision, successor))
		}

	default:
		output = append(output, fmt.Sprintf("📋 **Plan Status:** %s", truncateRunes(strings.TrimSpace(text), planStatusLimit)))
	}

	return strings.Join(output, "\n"), status
}

func rejectionChanges(revision, successor *plan.Revision) string {
	if successor == nil {
		return "*(No later revision of this plan was submitted)*"
	}
	diff, ok := plan.Diff(revision.Content, successor.Content)
	if !ok {
		return "*(No significant content differences found)*"
	}
	return "**Changes to next revision:**\n\n" + Fence(diff, "diff")
}

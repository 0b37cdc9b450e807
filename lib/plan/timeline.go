// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"log/slog"
	"strings"

	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// Status is the resolution of a submitted plan.
type Status int

const (
	// StatusPending means no outcome for the submission was logged, or
	// the outcome reads as neither an approval nor a rejection (a tool
	// error, for instance).
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

func (status Status) String() string {
	switch status {
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// DefaultApprovalKeywords mark an outcome as an approval when any of
// them appears in its text (case-insensitive).
var DefaultApprovalKeywords = []string{"approved"}

// DefaultRejectionKeywords mark an unapproved outcome as a rejection.
var DefaultRejectionKeywords = []string{"reject", "denied"}

// ClassifyOutcome reads a submission's outcome text. Approval wins over
// rejection; text matching neither list is StatusPending.
func ClassifyOutcome(text string, approval, rejection []string) Status {
	switch {
	case containsAny(text, approval):
		return StatusApproved
	case containsAny(text, rejection):
		return StatusRejected
	default:
		return StatusPending
	}
}

// Revision is one plan submission, as reconstructed at the moment it
// was submitted.
type Revision struct {
	// Index is the submission order, starting at 0. Log order, not
	// wall-clock order.
	Index int

	// ToolID is the identifier of the submitting tool call.
	ToolID string

	// Content is the full plan text at submission time.
	Content string

	// Outcome is the text of the paired tool result. Resolved reports
	// whether one was seen.
	Outcome  string
	Resolved bool

	status Status

	// successor is the arena index of the next revision, set only on
	// rejected revisions; -1 otherwise.
	successor int
}

// Status is the classified outcome.
func (revision *Revision) Status() Status {
	return revision.status
}

// TimelineOptions configures BuildTimeline.
type TimelineOptions struct {
	// ApprovalKeywords override DefaultApprovalKeywords when non-empty.
	ApprovalKeywords []string

	// RejectionKeywords override DefaultRejectionKeywords when
	// non-empty.
	RejectionKeywords []string

	// Logger receives debug records for edits that could not be
	// replayed. Nil discards them.
	Logger *slog.Logger
}

// Timeline is the ordered arena of plan revisions in one log. It is
// frozen once BuildTimeline returns.
type Timeline struct {
	revisions []Revision
	byToolID  map[string]int
}

// BuildTimeline replays every tool call in entries, maintaining the
// in-progress plan buffer, and snapshots a Revision at each
// submission. Outcomes resolve their submission's approval flag.
// Edits that cannot be applied are logged and skipped.
func BuildTimeline(entries []*sessionlog.Entry, options TimelineOptions) *Timeline {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	approval := options.ApprovalKeywords
	if len(approval) == 0 {
		approval = DefaultApprovalKeywords
	}
	rejection := options.RejectionKeywords
	if len(rejection) == 0 {
		rejection = DefaultRejectionKeywords
	}

	timeline := &Timeline{byToolID: make(map[string]int)}
	buffer := ""

	for _, entry := range entries {
		for blockIndex := range entry.Blocks {
			block := &entry.Blocks[blockIndex]
			switch block.Type {
			case sessionlog.BlockToolUse:
				invocation := block.ToolUse
				if invocation.Name == SubmitToolName {
					timeline.submit(invocation, buffer)
					continue
				}
				operation, ok := OperationFromInvocation(invocation.Name, invocation.Input)
				if !ok {
					continue
				}
				updated, err := Apply(buffer, operation)
				if err != nil {
					logger.Debug("plan edit not replayed",
						"tool_id", invocation.ID,
						"line", entry.Line,
						"error", err,
					)
					continue
				}
				buffer = updated

			case sessionlog.BlockToolResult:
				position, ok := timeline.byToolID[block.ToolResult.ToolUseID]
				if !ok || timeline.revisions[position].Resolved {
					continue
				}
				revision := &timeline.revisions[position]
				revision.Outcome = block.ToolResult.Text()
				revision.Resolved = true
				revision.status = ClassifyOutcome(revision.Outcome, approval, rejection)
			}
		}
	}

	for position := range timeline.revisions {
		if timeline.revisions[position].Status() == StatusRejected && position+1 < len(timeline.revisions) {
			timeline.revisions[position].successor = position + 1
		}
	}

	for position := range timeline.revisions {
		if !timeline.revisions[position].Resolved {
			logger.Debug("plan submission has no outcome", "plan_index", position)
		}
	}

	return timeline
}

// submit snapshots the buffer as a new revision. A submission made
// before any plan file was written falls back to the plan text passed
// inline in the tool input.
func (timeline *Timeline) submit(invocation *sessionlog.ToolInvocation, buffer string) {
	content := buffer
	if content == "" {
		content = invocation.StringField("plan")
	}
	index := len(timeline.revisions)
	timeline.revisions = append(timeline.revisions, Revision{
		Index:     index,
		ToolID:    invocation.ID,
		Content:   content,
		successor: -1,
	})
	if _, seen := timeline.byToolID[invocation.ID]; !seen {
		timeline.byToolID[invocation.ID] = index
	}
}

// Len returns the number of revisions.
func (timeline *Timeline) Len() int {
	return len(timeline.revisions)
}

// Revision returns the revision at index, or nil when out of range.
func (timeline *Timeline) Revision(index int) *Revision {
	if index < 0 || index >= len(timeline.revisions) {
		return nil
	}
	return &timeline.revisions[index]
}

// Revisions returns all revisions in submission order. The slice
// shares storage with the timeline and must not be modified.
func (timeline *Timeline) Revisions() []Revision {
	return timeline.revisions
}

// ByToolID returns the revision submitted by the tool call id.
func (timeline *Timeline) ByToolID(id string) (*Revision, bool) {
	position, ok := timeline.byToolID[id]
	if !ok {
		return nil, false
	}
	return &timeline.revisions[position], true
}

// Successor returns the revision submitted after a rejected revision.
func (timeline *Timeline) Successor(index int) (*Revision, bool) {
	revision := timeline.Revision(index)
	if revision == nil || revision.successor < 0 {
		return nil, false
	}
	return &timeline.revisions[revision.successor], true
}

// FirstApproved returns the index of the earliest approved revision.
func (timeline *Timeline) FirstApproved() (int, bool) {
	for position := range timeline.revisions {
		if timeline.revisions[position].Status() == StatusApproved {
			return position, true
		}
	}
	return -1, false
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

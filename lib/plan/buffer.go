// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tool names that modify files.
const (
	WriteToolName     = "Write"
	EditToolName      = "Edit"
	MultiEditToolName = "MultiEdit"

	// SubmitToolName submits the current plan for user approval.
	SubmitToolName = "ExitPlanMode"
)

// OperationKind selects how an Operation changes the plan buffer.
type OperationKind int

const (
	// OperationWrite replaces the whole buffer.
	OperationWrite OperationKind = iota

	// OperationEdit replaces exact substrings, one Replacement at a
	// time, in order.
	OperationEdit
)

// Replacement is one exact-substring edit.
type Replacement struct {
	Old string
	New string
}

// Operation is one file operation replayed against the plan buffer.
type Operation struct {
	Kind OperationKind

	// Content is the new buffer for OperationWrite.
	Content string

	// Edits are applied sequentially for OperationEdit. An Edit tool
	// call produces one; a MultiEdit call produces several.
	Edits []Replacement
}

var (
	// ErrNoBuffer is returned when an edit arrives before any write
	// established the plan's content.
	ErrNoBuffer = errors.New("edit before the plan file was written")

	// ErrEmptyOldText is returned for an edit with nothing to match.
	ErrEmptyOldText = errors.New("edit has empty old text")

	// ErrOldTextNotFound is returned when the text an edit expects is
	// not in the buffer.
	ErrOldTextNotFound = errors.New("edit old text not found in plan")
)

// Apply returns the buffer that results from applying op to buffer.
// It is a pure function. On error the original buffer is returned
// unchanged; a multi-replacement edit is applied all-or-nothing.
func Apply(buffer string, op Operation) (string, error) {
	switch op.Kind {
	case OperationWrite:
		return op.Content, nil

	case OperationEdit:
		if buffer == "" {
			return buffer, ErrNoBuffer
		}
		result := buffer
		for position, edit := range op.Edits {
			if edit.Old == "" {
				return buffer, fmt.Errorf("edit %d: %w", position, ErrEmptyOldText)
			}
			if !strings.Contains(result, edit.Old) {
				return buffer, fmt.Errorf("edit %d: %w", position, ErrOldTextNotFound)
			}
			result = strings.Replace(result, edit.Old, edit.New, 1)
		}
		return result, nil

	default:
		return buffer, fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}

// IsPlanPath reports whether a file path follows the plan-file naming
// convention: a plans/ directory segment, or a -plan.md suffix.
func IsPlanPath(path string) bool {
	normalized := strings.ReplaceAll(path, `\`, "/")
	return strings.Contains(normalized, "/plans/") ||
		strings.HasPrefix(normalized, "plans/") ||
		strings.HasSuffix(normalized, "-plan.md")
}

// OperationFromInvocation converts a file-tool call into a plan
// operation. ok is false when the tool is not a write/edit tool, the
// input does not decode, or the target is not a plan file.
func OperationFromInvocation(name string, input json.RawMessage) (Operation, bool) {
	if len(input) == 0 {
		return Operation{}, false
	}

	switch name {
	case WriteToolName:
		var write struct {
			FilePath string `json:"file_path"`
			Content  string `json:"content"`
		}
		if json.Unmarshal(input, &write) != nil || !IsPlanPath(write.FilePath) {
			return Operation{}, false
		}
		return Operation{Kind: OperationWrite, Content: write.Content}, true

	case EditToolName:
		var edit struct {
			FilePath  string `json:"file_path"`
			OldString string `json:"old_string"`
			NewString string `json:"new_string"`
		}
		if json.Unmarshal(input, &edit) != nil || !IsPlanPath(edit.FilePath) {
			return Operation{}, false
		}
		return Operation{
			Kind:  OperationEdit,
			Edits: []Replacement{{Old: edit.OldString, New: edit.NewString}},
		}, true

	case MultiEditToolName:
		var multi struct {
			FilePath string `json:"file_path"`
			Edits    []struct {
				OldString string `json:"old_string"`
				NewString string `json:"new_string"`
			} `json:"edits"`
		}
		if json.Unmarshal(input, &multi) != nil || !IsPlanPath(multi.FilePath) {
			return Operation{}, false
		}
		operation := Operation{Kind: OperationEdit}
		for _, edit := range multi.Edits {
			operation.Edits = append(operation.Edits, Replacement{Old: edit.OldString, New: edit.NewString})
		}
		return operation, true

	default:
		return Operation{}, false
	}
}

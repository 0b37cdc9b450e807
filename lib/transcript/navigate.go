// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bureau-foundation/transcript/lib/plan"
)

// SkipThreshold is the number of rendered lines between two user
// turns above which the earlier turn gets a skip-ahead link.
const SkipThreshold = 100

var userHeaderPattern = regexp.MustCompile(`^## 🧑 USER #(\d+)$`)

// userHeader is a numbered user turn and the line it starts on.
type userHeader struct {
	line int
	turn int
}

// lineEdit replaces the line at `at` (replace) or inserts before it.
// A replace with no lines deletes.
type lineEdit struct {
	at      int
	replace bool
	lines   []string
}

// Navigate rewrites a rendered transcript, turning plan placeholders
// into links and adding skip-ahead links after long user turns:
//
//   - a rejected plan links to the user turn holding the next
//     revision, and to the turn holding the first approved revision
//     when that comes later (the next-revision link is left out when
//     both point at the same revision);
//   - an approved plan links to the next user turn;
//   - a user turn without a plan outcome whose next user turn is more
//     than SkipThreshold lines away links to it.
//
// Links only target turns present in the document; a placeholder
// with nothing to link is removed. planTurns holds the user turns that
// carry a plan outcome. All edits are planned against the original
// line positions and applied together, last line first.
func Navigate(document string, timeline *plan.Timeline, planTurns map[int]bool) string {
	lines := strings.Split(document, "\n")

	var users []userHeader
	placeholders := make(map[int]int)
	var placeholderLines []int
	for position, line := range lines {
		if match := userHeaderPattern.FindStringSubmatch(line); match != nil {
			turn, _ := strconv.Atoi(match[1])
			users = append(users, userHeader{line: position, turn: turn})
			continue
		}
		if match := placeholderPattern.FindStringSubmatch(line); match != nil {
			index, _ := strconv.Atoi(match[1])
			if _, seen := placeholders[index]; !seen {
				placeholders[index] = position
			}
			placeholderLines = append(placeholderLines, position)
		}
	}

	turnHolding := func(planIndex int) (int, bool) {
		line, ok := placeholders[planIndex]
		if !ok {
			return 0, false
		}
		return turnBefore(users, line)
	}

	firstApproved, hasApproved := timeline.FirstApproved()

	var edits []lineEdit
	for _, position := range placeholderLines {
		index, _ := strconv.Atoi(placeholderPattern.FindStringSubmatch(lines[position])[1])
		var links []string

		revision := timeline.Revision(index)
		switch {
		case placeholders[index] != position || revision == nil:
			// Duplicate or stale placeholder.

		case revision.Status() == plan.StatusApproved:
			if turn, ok := turnAfter(users, position); ok {
				links = append(links, skipLink(turn))
			}

		case revision.Status() == plan.StatusRejected:
			next := index + 1
			if !(hasApproved && next == firstApproved) {
				if turn, ok := turnHolding(next); ok {
					links = append(links, fmt.Sprintf("[→ Next revision](#-user-%d)", turn))
				}
			}
			if hasApproved && firstApproved > index {
				if turn, ok := turnHolding(firstApproved); ok {
					links = append(links, fmt.Sprintf("[✓ Approved plan](#-user-%d)", turn))
				}
			}
		}

		edit := lineEdit{at: position, replace: true}
		if len(links) > 0 {
			edit.lines = []string{strings.Join(links, " · ")}
		}
		edits = append(edits, edit)
	}

	for position, user := range users {
		if planTurns[user.turn] || position+1 >= len(users) {
			continue
		}
		next := users[position+1]
		if next.line-user.line > SkipThreshold && user.line+2 <= len(lines) {
			edits = append(edits, lineEdit{
				at:    user.line + 2,
				lines: []string{"", skipLink(next.turn), ""},
			})
		}
	}

	return strings.Join(applyEdits(lines, edits), "\n")
}

// applyEdits applies edits from the last line to the first so earlier
// positions stay valid. At the same position the replacement runs
// first, so an insertion lands before the replacement text.
func applyEdits(lines []string, edits []lineEdit) []string {
	slices.SortStableFunc(edits, func(a, b lineEdit) int {
		if a.at != b.at {
			return cmp.Compare(b.at, a.at)
		}
		if a.replace != b.replace {
			if a.replace {
				return -1
			}
			return 1
		}
		return 0
	})
	for _, edit := range edits {
		if edit.replace {
			lines = slices.Replace(lines, edit.at, edit.at+1, edit.lines...)
		} else {
			lines = slices.Insert(lines, edit.at, edit.lines...)
		}
	}
	return lines
}

func skipLink(turn int) string {
	return fmt.Sprintf("[⏭ Skip to next user message](#-user-%d)", turn)
}

// turnBefore returns the last user turn whose header precedes line.
func turnBefore(users []userHeader, line int) (int, bool) {
	for position := len(users) - 1; position >= 0; position-- {
		if users[position].line < line {
			return users[position].turn, true
		}
	}
	return 0, false
}

// turnAfter returns the first user turn whose header follows line.
func turnAfter(users []userHeader, line int) (int, bool) {
	for _, user := range users {
		if user.line > line {
			return user.turn, true
		}
	}
	return 0, false
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines kept around each
// change, both in the raw diff and after renumbering pairs are
// removed.
const DiffContext = 2

var (
	hunkHeaderPattern  = regexp.MustCompile(`^(@@ -(\d+)(?:,\d+)? \+\d+(?:,\d+)? @@)`)
	orderedItemPattern = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
)

// diffLineKind classifies a line of the processed diff.
type diffLineKind int

const (
	diffBlank diffLineKind = iota
	diffHunk
	diffContext
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffLineKind
	text string
}

func (line diffLine) isChange() bool {
	return line.kind == diffRemoved || line.kind == diffAdded
}

// Diff compares a rejected plan with the revision that followed it.
// The result is a unified diff body (no file headers) in which:
//
//   - each hunk header is followed by the nearest Markdown heading at
//     or above the hunk in the rejected plan;
//   - removed/added ordered-list items that differ only by their
//     number are dropped in pairs;
//   - context and spacer lines farther than DiffContext lines from a
//     remaining change are dropped, as are hunks left with no change.
//
// ok is false when either text is empty, the texts are identical, or
// nothing meaningful remains.
func Diff(rejected, successor string) (body string, ok bool) {
	rejected = normalizeNewlines(rejected)
	successor = normalizeNewlines(successor)
	if rejected == "" || successor == "" || rejected == successor {
		return "", false
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(rejected),
		B:        splitLines(successor),
		FromFile: "rejected",
		ToFile:   "next",
		Context:  DiffContext,
	})
	if err != nil || unified == "" {
		return "", false
	}

	headings := findHeadings(rejected)
	raw := annotateHunks(strings.Split(strings.TrimSuffix(unified, "\n"), "\n"), headings)
	filtered := dropRenumbering(raw)
	final := dropOrphans(filtered)

	hasChange := false
	for _, line := range final {
		if line.isChange() {
			hasChange = true
			break
		}
	}
	if !hasChange {
		return "", false
	}

	rendered := make([]string, 0, len(final))
	for _, line := range final {
		rendered = append(rendered, line.text)
	}
	return strings.Trim(strings.Join(rendered, "\n"), "\n"), true
}

// annotateHunks converts difflib output (including its two file
// header lines) into classified lines, inserting a blank spacer
// before every hunk and appending the section heading to its header.
func annotateHunks(unified []string, headings []heading) []diffLine {
	var lines []diffLine
	for position, text := range unified {
		if position < 2 {
			// "--- rejected" / "+++ next"
			continue
		}
		switch {
		case strings.HasPrefix(text, "@@"):
			header := text
			if match := hunkHeaderPattern.FindStringSubmatch(text); match != nil {
				header = match[1]
				start, _ := strconv.Atoi(match[2])
				if label := precedingHeading(headings, start-1); label != "" {
					header += " " + label
				}
			}
			lines = append(lines, diffLine{kind: diffBlank})
			lines = append(lines, diffLine{kind: diffHunk, text: header})
		case strings.HasPrefix(text, "-"):
			lines = append(lines, diffLine{kind: diffRemoved, text: text})
		case strings.HasPrefix(text, "+"):
			lines = append(lines, diffLine{kind: diffAdded, text: text})
		default:
			lines = append(lines, diffLine{kind: diffContext, text: text})
		}
	}
	return lines
}

// dropRenumbering removes removed/added pairs of ordered-list items
// that are identical apart from their ordinal. Pairs are matched one
// to one, in order of appearance, across the whole diff.
func dropRenumbering(lines []diffLine) []diffLine {
	removed := make(map[string][]int)
	added := make(map[string][]int)
	var keys []string

	for position, line := range lines {
		if !line.isChange() {
			continue
		}
		match := orderedItemPattern.FindStringSubmatch(line.text[1:])
		if match == nil {
			continue
		}
		key := match[1] + "\x00" + match[3]
		if line.kind == diffRemoved {
			if _, seen := removed[key]; !seen {
				keys = append(keys, key)
			}
			removed[key] = append(removed[key], position)
		} else {
			added[key] = append(added[key], position)
		}
	}

	skip := make(map[int]bool)
	for _, key := range keys {
		additions := added[key]
		for pair, removal := range removed[key] {
			if pair >= len(additions) {
				break
			}
			skip[removal] = true
			skip[additions[pair]] = true
		}
	}

	result := make([]diffLine, 0, len(lines)-len(skip))
	for position, line := range lines {
		if !skip[position] {
			result = append(result, line)
		}
	}
	return result
}

// dropOrphans keeps changes, keeps context and spacer lines within
// DiffContext positions of a change, and keeps hunk headers only when
// a change follows before the next header.
func dropOrphans(lines []diffLine) []diffLine {
	distance := distanceToChange(lines)

	var result []diffLine
	for position, line := range lines {
		switch line.kind {
		case diffHunk:
			if hunkHasChange(lines, position) {
				result = append(result, line)
			}
		case diffBlank, diffContext:
			if distance[position] <= DiffContext {
				result = append(result, line)
			}
		default:
			result = append(result, line)
		}
	}
	return result
}

func hunkHasChange(lines []diffLine, header int) bool {
	for position := header + 1; position < len(lines); position++ {
		if lines[position].kind == diffHunk {
			return false
		}
		if lines[position].isChange() {
			return true
		}
	}
	return false
}

// distanceToChange returns, for every position, the distance to the
// nearest change line (len(lines)+1 when there is none).
func distanceToChange(lines []diffLine) []int {
	far := len(lines) + 1
	distance := make([]int, len(lines))
	last := -far
	for position, line := range lines {
		if line.isChange() {
			last = position
		}
		distance[position] = position - last
	}
	next := far * 2
	for position := len(lines) - 1; position >= 0; position-- {
		if lines[position].isChange() {
			next = position
		}
		if forward := next - position; forward < distance[position] {
			distance[position] = forward
		}
	}
	return distance
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// splitLines splits text into newline-terminated lines, the form
// difflib expects, without inventing an empty trailing line.
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for position := range lines {
		lines[position] += "\n"
	}
	return lines
}

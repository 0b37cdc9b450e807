// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

// BatchItem is one entry as seen by the batcher.
type BatchItem struct {
	Role       string
	Extraction *Extraction
}

// Group is a run of entries rendered as one section. Members are
// indexes into the batched items, in order.
type Group struct {
	Members []int

	// Batched marks a merged progress block of two or more brief
	// assistant entries.
	Batched bool
}

const assistantRole = "assistant"

// Batch groups items for rendering. Every visible item belongs to
// exactly one group, in order; invisible items belong to none.
//
// A run starts at a brief assistant entry without a plan result and
// absorbs following assistant entries that are also brief and
// plan-free. Invisible entries inside the run are skipped over. The
// run ends at the first visible non-assistant entry, or the first
// assistant entry that is not brief or carries a plan result. A run
// of two or more becomes one batched group; a run of one renders on
// its own.
func Batch(items []BatchItem) []Group {
	var groups []Group
	position := 0
	for position < len(items) {
		item := items[position]
		if !item.Extraction.Visible() {
			position++
			continue
		}
		if !startsRun(item) {
			groups = append(groups, Group{Members: []int{position}})
			position++
			continue
		}

		members := []int{position}
		next := position + 1
		for next < len(items) {
			candidate := items[next]
			if !candidate.Extraction.Visible() {
				next++
				continue
			}
			if !startsRun(candidate) {
				break
			}
			members = append(members, next)
			next++
		}

		if len(members) > 1 {
			groups = append(groups, Group{Members: members, Batched: true})
			position = next
			continue
		}
		groups = append(groups, Group{Members: members})
		position++
	}
	return groups
}

// startsRun reports whether item can take part in a progress block.
func startsRun(item BatchItem) bool {
	extraction := item.Extraction
	return item.Role == assistantRole &&
		extraction.Brief &&
		!extraction.HasPlanResult &&
		!extraction.Compaction &&
		len(extraction.Parts) > 0
}

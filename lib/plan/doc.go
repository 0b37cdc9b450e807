// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan reconstructs the plan revisions an assistant submitted
// for approval during a session, and diffs them.
//
// In plan mode the assistant drafts a plan file with ordinary file
// tools (Write, Edit, MultiEdit), then submits it with ExitPlanMode.
// The log records the tool calls but not the file contents at
// submission time, so the timeline is rebuilt by replaying every
// write and edit that targets a plan file through a small interpreter
// ([Apply]) and snapshotting the buffer at each submission.
//
// [BuildTimeline] must see the whole log before rendering starts:
// diffing a rejected revision needs the revision that replaced it,
// which appears later in the log.
//
// [Diff] compares a rejected revision with its successor. The output
// is a unified diff with two lines of context whose hunk headers name
// the Markdown section they fall under, with list renumbering noise
// removed.
package plan

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessionlog reads the JSONL session logs that Claude Code
// appends to while an interactive session runs, and indexes the
// implicit relationships between their records.
//
// A session log is a flat, append-only stream: each line is one JSON
// object describing a user turn, an assistant message, or a
// bookkeeping record. Assistant messages carry ordered content blocks
// (text, thinking, tool_use), and the results of tool calls arrive
// later as tool_result blocks inside user messages. Nothing in the
// log links a result to its call except the shared tool identifier.
//
//   - [Read] and [ReadFile] turn a log into an ordered slice of
//     [Entry] values. A malformed line never aborts reading; it
//     becomes an Entry with ParseError set. Compressed logs (zstd,
//     gzip, LZ4 frame) are decoded transparently.
//
//   - [BuildIndex] replays the entries once and produces an [Index]:
//     tool_id → invocation, tool_id → outcome, and the question →
//     answer map for interactive multiple-choice calls.
//
// Entries are immutable once read. Downstream passes hold pointers
// into the slice returned by Read and never copy or mutate them.
package sessionlog

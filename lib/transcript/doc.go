// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript renders a Claude Code session log as a single
// Markdown document.
//
// Rendering runs in three phases over an in-memory log:
//
//  1. A pre-pass over every entry builds the tool reference index
//     ([sessionlog.BuildIndex]) and the plan revision timeline
//     ([plan.BuildTimeline]). Both must be complete before rendering:
//     a rejected plan is diffed against a revision that appears later
//     in the log.
//
//  2. A linear pass classifies each entry into renderable parts
//     ([Extractor]), merges runs of brief assistant updates ([Batch]),
//     and emits one section per group.
//
//  3. A navigation pass over the rendered lines replaces plan
//     placeholders with links between plan revisions and inserts
//     skip-ahead links after long user turns ([Navigate]).
//
// The noise filters and heuristics (caveat and compaction banners,
// slash-command markup, brevity, rejection reasons) are independent
// string functions on [Phrases], so the trigger phrases can be
// replaced without touching the renderer.
//
// Rendering is deterministic and holds no state between calls;
// separate logs may be rendered concurrently.
package transcript

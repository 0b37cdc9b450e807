// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package termdoc renders transcript Markdown as styled terminal text.
//
// [Render] parses the document with goldmark and walks the AST,
// emitting lipgloss-styled text word-wrapped to a target width.
// Section headings are colored by speaker, fenced code is highlighted
// with Chroma, and diff blocks use the theme's added/removed colors so
// rejected-plan changes read at a glance. The output is meant for a
// pager or a terminal; the Markdown file written by the engine is
// unchanged.
package termdoc

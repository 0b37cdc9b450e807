// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bureau-foundation/transcript/lib/plan"
	"github.com/bureau-foundation/transcript/lib/sessionlog"
)

// DefaultTitle heads a transcript rendered without Options.Title.
const DefaultTitle = "Claude Agent Conversation Log"

// Section headers.
const (
	compactedHeader  = "## ♻️ Session Compacted"
	progressHeader   = "## 🤖 Claude Progress"
	assistantHeader  = "## 🤖 Claude"
	unreadableHeader = "## ⚠️ Unreadable Entry"
	userHeaderPrefix = "## 🧑 USER #"
	sectionEnd       = "\n---\n"
	timestampLayout  = "2006-01-02 15:04:05"

	localTimestampLayout = "2006-01-02T15:04:05.999999999"
)

// RenderFile reads the session log at path and renders it. When sink
// is non-nil the document is also written to it. The only errors are
// failing to read the log and failing to write the sink; malformed
// lines are rendered as inline error markers.
func RenderFile(path string, sink io.Writer, options Options) (string, error) {
	entries, err := sessionlog.ReadFile(path)
	if err != nil {
		return "", err
	}
	document := Render(entries, path, options)
	if sink != nil {
		if _, err := io.WriteString(sink, document); err != nil {
			return document, fmt.Errorf("writing transcript for %s: %w", path, err)
		}
	}
	return document, nil
}

// Render renders already-read entries. source is the path shown in
// the document header.
func Render(entries []*sessionlog.Entry, source string, options Options) string {
	logger := options.logger()
	phrases := options.Phrases.WithDefaults()

	index := sessionlog.BuildIndex(entries)
	timeline := plan.BuildTimeline(entries, plan.TimelineOptions{
		ApprovalKeywords:  phrases.ApprovalKeywords,
		RejectionKeywords: phrases.RejectionKeywords,
		Logger:            logger,
	})
	extractor := NewExtractor(index, timeline, options)

	items := make([]BatchItem, len(entries))
	extractions := make([]Extraction, len(entries))
	for position, entry := range entries {
		extractions[position] = extractor.Extract(entry)
		items[position] = BatchItem{Role: entry.EffectiveRole(), Extraction: &extractions[position]}
	}
	groups := Batch(items)

	lines := renderHeader(entries, source, options)

	userTurn := 0
	planTurns := make(map[int]bool)
	for _, group := range groups {
		if group.Batched {
			lines = append(lines, progressHeader, timestampLine(entries[group.Members[0]], options))
			for _, member := range group.Members {
				lines = append(lines, strings.TrimSpace(extractions[member].Text()))
			}
			lines = append(lines, sectionEnd)
			continue
		}

		member := group.Members[0]
		entry, extraction := entries[member], &extractions[member]
		if extraction.Compaction {
			lines = append(lines, compactedHeader+"\n", "---\n")
		}
		if len(extraction.Parts) == 0 {
			continue
		}

		var header string
		switch {
		case extraction.Unreadable:
			header = unreadableHeader
		case entry.EffectiveRole() == "user":
			userTurn++
			header = fmt.Sprintf("%s%d", userHeaderPrefix, userTurn)
			if extraction.HasPlanResult && extraction.PlanOutcome != plan.StatusPending {
				planTurns[userTurn] = true
			}
		default:
			header = assistantHeader
		}
		lines = append(lines, header, timestampLine(entry, options))
		for _, part := range extraction.Parts {
			lines = append(lines, part.Text)
		}
		lines = append(lines, sectionEnd)
	}

	logger.Debug("transcript rendered",
		"source", source,
		"entries", len(entries),
		"sections", len(groups),
		"user_turns", userTurn,
		"plan_revisions", timeline.Len(),
	)

	return Navigate(strings.Join(lines, "\n"), timeline, planTurns)
}

func renderHeader(entries []*sessionlog.Entry, source string, options Options) []string {
	lines := []string{"# " + displayTitle(options.Title)}
	lines = append(lines, fmt.Sprintf("**Source:** `%s`\n", source))
	if options.Description != "" {
		lines = append(lines, fmt.Sprintf("> %s\n", options.Description))
	}

	for _, entry := range entries {
		if entry.IsError() {
			continue
		}
		lines = append(lines, "## Session Metadata")
		metadata := []struct{ label, value string }{
			{"Session ID", entry.SessionID},
			{"Agent ID", entry.AgentID},
			{"Slug", entry.Slug},
			{"Version", entry.Version},
			{"Working Directory", entry.WorkingDirectory},
			{"Git Branch", entry.GitBranch},
		}
		for _, item := range metadata {
			if item.value != "" {
				lines = append(lines, fmt.Sprintf("- **%s**: %s", item.label, item.value))
			}
		}
		lines = append(lines, fmt.Sprintf("- **Total Messages**: %d", len(entries)), "")
		break
	}

	return append(lines, "---\n")
}

// displayTitle turns a kebab-case slug into a title-cased heading.
func displayTitle(title string) string {
	words := strings.Fields(strings.ReplaceAll(title, "-", " "))
	if len(words) == 0 {
		return DefaultTitle
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func timestampLine(entry *sessionlog.Entry, options Options) string {
	if !options.ShowTimestamps || entry.Timestamp == "" {
		return ""
	}
	return "*" + FormatTimestamp(entry.Timestamp) + "*\n"
}

// FormatTimestamp renders an ISO-8601 timestamp as
// "YYYY-MM-DD HH:MM:SS" in its own offset. A timestamp without a zone
// is taken as written. Unparseable values are returned unchanged.
func FormatTimestamp(value string) string {
	for _, layout := range []string{time.RFC3339Nano, localTimestampLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(timestampLayout)
		}
	}
	return value
}

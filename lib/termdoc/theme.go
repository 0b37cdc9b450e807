// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termdoc

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for terminal transcripts. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Section headings by speaker.
	HeaderForeground    lipgloss.Color
	UserHeading         lipgloss.Color
	AssistantHeading    lipgloss.Color
	ProgressHeading     lipgloss.Color
	NoticeHeading       lipgloss.Color // compaction and unreadable entries
	BorderColor         lipgloss.Color
	LinkForeground      lipgloss.Color
	UnderlineForeground lipgloss.Color // selected answers (<ins>)

	// Diff blocks.
	DiffAdded   lipgloss.Color
	DiffRemoved lipgloss.Color
	DiffHunk    lipgloss.Color

	// CodeStyle is the Chroma style for fenced code.
	CodeStyle string
}

// HeadingColor returns the color for a heading's text. Level 1 and
// unrecognized level 2 headings use HeaderForeground; deeper levels
// use NormalText.
func (theme Theme) HeadingColor(level int, content string) lipgloss.Color {
	if level > 2 {
		return theme.NormalText
	}
	switch {
	case strings.HasPrefix(content, "🧑"):
		return theme.UserHeading
	case strings.HasPrefix(content, "🤖 Claude Progress"):
		return theme.ProgressHeading
	case strings.HasPrefix(content, "🤖"):
		return theme.AssistantHeading
	case strings.HasPrefix(content, "♻️"), strings.HasPrefix(content, "⚠️"):
		return theme.NoticeHeading
	default:
		return theme.HeaderForeground
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground:    lipgloss.Color("255"),
	UserHeading:         lipgloss.Color("114"), // green
	AssistantHeading:    lipgloss.Color("75"),  // blue
	ProgressHeading:     lipgloss.Color("245"), // gray
	NoticeHeading:       lipgloss.Color("220"), // amber
	BorderColor:         lipgloss.Color("240"),
	LinkForeground:      lipgloss.Color("75"),
	UnderlineForeground: lipgloss.Color("141"), // light purple

	DiffAdded:   lipgloss.Color("114"),
	DiffRemoved: lipgloss.Color("196"),
	DiffHunk:    lipgloss.Color("141"),

	CodeStyle: "monokai",
}

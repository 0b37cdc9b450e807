// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParserInstance is initialized once and reused. The parser
// configuration never changes and goldmark parsers are safe to share;
// per-call state lives in the text.Reader.
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

// heading is a Markdown heading found in a plan, keyed by the 0-based
// source line it starts on.
type heading struct {
	line  int
	label string
}

// findHeadings returns every heading in source, in line order. Lines
// that merely start with '#' inside fenced or indented code are not
// headings and are not returned.
func findHeadings(source string) []heading {
	if source == "" {
		return nil
	}
	sourceBytes := []byte(source)
	document := getMarkdownParser().Parser().Parse(text.NewReader(sourceBytes))
	lines := strings.Split(source, "\n")

	var headings []heading
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		headingNode, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		segments := headingNode.Lines()
		if segments.Len() == 0 {
			// An empty ATX heading ("#") has no text to anchor on.
			return ast.WalkSkipChildren, nil
		}
		start := segments.At(0).Start
		lineNumber := strings.Count(source[:start], "\n")
		if lineNumber >= len(lines) {
			return ast.WalkSkipChildren, nil
		}
		label := strings.TrimSpace(lines[lineNumber])
		if !strings.HasPrefix(label, "#") {
			// Setext heading: present it in ATX form so every hunk
			// anchor reads the same way.
			label = strings.Repeat("#", headingNode.Level) + " " + label
		}
		headings = append(headings, heading{line: lineNumber, label: label})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// HeadingLines returns the 0-based line numbers of the ATX ("#")
// headings in source. Setext headings and '#' lines inside code are
// excluded.
func HeadingLines(source string) []int {
	headings := findHeadings(source)
	if len(headings) == 0 {
		return nil
	}
	lines := strings.Split(source, "\n")
	var result []int
	for _, found := range headings {
		if strings.HasPrefix(strings.TrimLeft(lines[found.line], " "), "#") {
			result = append(result, found.line)
		}
	}
	return result
}

// precedingHeading returns the label of the last heading at or before
// line, or "" when there is none.
func precedingHeading(headings []heading, line int) string {
	label := ""
	for _, candidate := range headings {
		if candidate.line > line {
			break
		}
		label = candidate.label
	}
	return label
}

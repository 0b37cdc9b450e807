// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termdoc

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultWidth is used when Options.Width is not positive.
const DefaultWidth = 100

// wrapBreakpoints are the characters ansi.Wrap may break a long word at.
const wrapBreakpoints = " ,.;-+|"

// columnGap separates table columns.
const columnGap = "  "

// Options configures [Render].
type Options struct {
	// Theme supplies colors. The zero value selects DefaultTheme.
	Theme Theme

	// Width is the wrap width in cells.
	Width int

	// Profile is the color profile to emit. termenv.Ascii produces
	// plain wrapped text.
	Profile termenv.Profile
}

// Transcripts use tables and task lists (TodoWrite) but never rely on
// bare-URL linking or strikethrough, so only those two extensions are
// enabled.
var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func markdownParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(goldmark.WithExtensions(extension.Table, extension.TaskList))
	})
	return parser
}

// Render parses a Markdown document and renders it as styled terminal
// text. Soft line breaks become spaces so paragraphs reflow to the
// target width; code blocks keep their lines.
func Render(input string, options Options) string {
	if input == "" {
		return ""
	}
	if options.Theme.CodeStyle == "" {
		options.Theme = DefaultTheme
	}
	if options.Width <= 0 {
		options.Width = DefaultWidth
	}

	source := []byte(input)
	document := markdownParser().Parser().Parse(text.NewReader(source))

	// Without SetColorProfile the renderer re-detects the profile from
	// the environment.
	styles := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(options.Profile))
	styles.SetColorProfile(options.Profile)

	p := &printer{source: source, theme: options.Theme, width: options.Width, styles: styles}
	ast.Walk(document, p.visit)
	return strings.TrimRight(p.out.String(), "\n") + "\n"
}

// printer accumulates one document. Inline content of the open
// paragraph or heading collects in inline and is wrapped as a unit
// when the block closes. Container blocks (quotes, list items) push a
// line prefix; marker, when set, replaces the prefix on the next line
// written (a list bullet).
type printer struct {
	source []byte
	theme  Theme
	width  int
	styles *lipgloss.Renderer

	out      strings.Builder
	trailing int

	indent      []string
	indentWidth int
	marker      string

	inline                    strings.Builder
	bold, italic, underlining int

	lists []list
}

type list struct {
	ordered bool
	next    int
	tight   bool
}

func (p *printer) color(color lipgloss.Color) lipgloss.Style {
	return p.styles.NewStyle().Foreground(color)
}

// available is the text width left inside the current containers.
func (p *printer) available() int {
	return max(p.width-p.indentWidth, 10)
}

func (p *printer) nest(prefix string) {
	p.indent = append(p.indent, prefix)
	p.indentWidth += ansi.StringWidth(prefix)
}

func (p *printer) unnest() {
	if len(p.indent) == 0 {
		return
	}
	last := p.indent[len(p.indent)-1]
	p.indent = p.indent[:len(p.indent)-1]
	p.indentWidth -= ansi.StringWidth(last)
}

func (p *printer) tight() bool {
	return len(p.lists) > 0 && p.lists[len(p.lists)-1].tight
}

func (p *printer) write(s string) {
	p.out.WriteString(s)
	content := strings.TrimRight(s, "\n")
	if content == "" {
		p.trailing += len(s)
	} else {
		p.trailing = len(s) - len(content)
	}
}

// emit writes block as prefixed lines, ending with a newline.
func (p *printer) emit(block string) {
	prefix := strings.Join(p.indent, "")
	for index, line := range strings.Split(block, "\n") {
		lead := prefix
		if index == 0 && p.marker != "" {
			lead, p.marker = p.marker, ""
		}
		p.write(lead + line + "\n")
	}
}

// gap ends the output with a blank line, unless nothing is written yet.
func (p *printer) gap() {
	for p.out.Len() > 0 && p.trailing < 2 {
		p.write("\n")
	}
}

// takeInline returns and clears the inline buffer.
func (p *printer) takeInline() string {
	content := p.inline.String()
	p.inline.Reset()
	return content
}

// capture renders node's children into a string without disturbing
// the inline buffer or the current emphasis.
func (p *printer) capture(node ast.Node) string {
	saved := p.takeInline()
	bold, italic, underlining := p.bold, p.italic, p.underlining
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, p.visit)
	}
	result := p.takeInline()
	p.inline.WriteString(saved)
	p.bold, p.italic, p.underlining = bold, italic, underlining
	return result
}

// styled applies the current emphasis to plain text.
func (p *printer) styled(content string) string {
	style := p.color(p.theme.NormalText).Bold(p.bold > 0).Italic(p.italic > 0)
	if p.underlining > 0 {
		style = style.Underline(true).Foreground(p.theme.UnderlineForeground)
	}
	return style.Render(content)
}

func (p *printer) segments(lines *text.Segments) string {
	var content strings.Builder
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		content.Write(segment.Value(p.source))
	}
	return content.String()
}

func (p *printer) visit(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			p.inline.Reset()
			break
		}
		if content := p.takeInline(); content != "" {
			p.emit(ansi.Wrap(content, p.available(), wrapBreakpoints))
			if !p.tight() {
				p.gap()
			}
		}

	case *ast.Heading:
		if entering {
			p.inline.Reset()
		} else {
			p.heading(node.Level)
		}

	case *ast.FencedCodeBlock:
		if entering {
			p.code(p.segments(node.Lines()), string(node.Language(p.source)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			p.code(p.segments(node.Lines()), "")
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		// Shown as written; the transcript only emits inline tags.
		if entering {
			html := p.segments(node.Lines())
			if node.HasClosure() {
				html += string(node.ClosureLine.Value(p.source))
			}
			p.code(html, "")
		}
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		if entering {
			p.nest("│ ")
		} else {
			p.unnest()
			p.gap()
		}

	case *ast.List:
		if entering {
			p.lists = append(p.lists, list{ordered: node.IsOrdered(), next: node.Start, tight: node.IsTight})
			break
		}
		p.lists = p.lists[:len(p.lists)-1]
		if !p.tight() {
			p.gap()
		}

	case *ast.ListItem:
		if entering {
			p.item()
			break
		}
		if p.marker != "" {
			p.emit("")
		}
		p.unnest()
		if !p.tight() {
			p.gap()
		}

	case *ast.ThematicBreak:
		if entering {
			p.gap()
			p.emit(p.color(p.theme.BorderColor).Render(strings.Repeat("─", p.available())))
			p.gap()
		}

	case *ast.Text:
		if entering {
			p.inline.WriteString(p.styled(string(node.Segment.Value(p.source))))
			switch {
			case node.HardLineBreak():
				p.inline.WriteString("\n")
			case node.SoftLineBreak():
				p.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			p.inline.WriteString(p.styled(string(node.Value)))
		}

	case *ast.Emphasis:
		counter := &p.italic
		if node.Level >= 2 {
			counter = &p.bold
		}
		if entering {
			*counter++
		} else {
			*counter--
		}

	case *ast.CodeSpan:
		if entering {
			p.inline.WriteString(p.color(p.theme.FaintText).Render(ansi.Strip(p.capture(node))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if entering {
			p.link(node)
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			p.rawHTML(p.segments(node.Segments))
		}

	case *extast.TaskCheckBox:
		if !entering {
			break
		}
		if node.IsChecked {
			p.inline.WriteString(p.color(p.theme.DiffAdded).Render("[x]") + " ")
		} else {
			p.inline.WriteString(p.styled("[ ] "))
		}

	case *extast.Table:
		if entering {
			p.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// heading colors the closed heading by its section and drops the
// inline emphasis inside it.
func (p *printer) heading(level int) {
	content := ansi.Strip(p.takeInline())
	if content == "" {
		return
	}
	style := p.color(p.theme.HeadingColor(level, content)).Bold(true).Underline(level == 1)
	p.gap()
	p.emit(ansi.Wrap(style.Render(content), p.available(), wrapBreakpoints))
	p.gap()
}

// code writes a code block indented by two cells. Lines are never
// wrapped.
func (p *printer) code(content, language string) {
	lines := strings.Split(strings.TrimRight(p.highlight(content, language), "\n"), "\n")
	for index, line := range lines {
		lines[index] = "  " + line
	}
	p.gap()
	p.emit(strings.Join(lines, "\n"))
	p.gap()
}

// highlight colors diff blocks with the theme and other languages
// with Chroma. Unknown languages and the Ascii profile get faint text.
func (p *printer) highlight(content, language string) string {
	profile := p.styles.ColorProfile()
	faint := p.color(p.theme.FaintText)
	switch {
	case language == "diff":
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		for index, line := range lines {
			color := p.theme.FaintText
			switch {
			case strings.HasPrefix(line, "@@"):
				color = p.theme.DiffHunk
			case strings.HasPrefix(line, "+"):
				color = p.theme.DiffAdded
			case strings.HasPrefix(line, "-"):
				color = p.theme.DiffRemoved
			}
			lines[index] = p.color(color).Render(line)
		}
		return strings.Join(lines, "\n")
	case language == "", profile == termenv.Ascii:
		return faint.Render(content)
	}

	formatter := "terminal256"
	if profile == termenv.TrueColor {
		formatter = "terminal16m"
	}
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, content, language, formatter, p.theme.CodeStyle); err != nil {
		return faint.Render(content)
	}
	return highlighted.String()
}

// item starts a list item: the bullet goes on its first line and
// continuation lines align under the item text.
func (p *printer) item() {
	if len(p.lists) == 0 {
		return
	}
	current := &p.lists[len(p.lists)-1]
	bullet := "• "
	if current.ordered {
		bullet = fmt.Sprintf("%d. ", current.next)
		current.next++
	}
	p.marker = strings.Join(p.indent, "") + bullet
	p.nest(strings.Repeat(" ", ansi.StringWidth(bullet)))
}

// link prints the link text. The transcript's own navigation links
// point at "#-user-N" anchors that mean nothing in a terminal, so only
// external destinations are shown.
func (p *printer) link(node *ast.Link) {
	label := ansi.Strip(p.capture(node))
	p.inline.WriteString(p.color(p.theme.LinkForeground).Underline(true).Render(label))
	if destination := string(node.Destination); destination != "" && !strings.HasPrefix(destination, "#") {
		p.inline.WriteString(" " + p.color(p.theme.FaintText).Render("("+destination+")"))
	}
}

// rawHTML handles an inline tag. <ins> wraps a selected answer and
// turns on underlining; any other tag is printed as text.
func (p *printer) rawHTML(tag string) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "<ins>":
		p.underlining++
	case "</ins>":
		p.underlining = max(p.underlining-1, 0)
	default:
		p.inline.WriteString(p.styled(tag))
	}
}

// table lays cells out in left-aligned columns. When the table is
// wider than the page every column is capped at an equal share and
// long cells are cut with an ellipsis.
func (p *printer) table(node *extast.Table) {
	var rows [][]string
	header := false
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		if row.Kind() == extast.KindTableHeader {
			header = true
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, p.capture(cell))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	columns := len(rows[0])
	widths := make([]int, columns)
	total := len(columnGap) * (columns - 1)
	for _, row := range rows {
		for index := 0; index < columns && index < len(row); index++ {
			widths[index] = max(widths[index], ansi.StringWidth(row[index]))
		}
	}
	for _, width := range widths {
		total += width
	}
	if total > p.available() {
		share := max((p.available()-len(columnGap)*(columns-1))/columns, 3)
		for index := range widths {
			widths[index] = min(widths[index], share)
		}
	}

	format := func(row []string, style lipgloss.Style) string {
		parts := make([]string, columns)
		for index, width := range widths {
			cell := ""
			if index < len(row) {
				cell = ansi.Truncate(row[index], width, "…")
			}
			parts[index] = cell + strings.Repeat(" ", max(width-ansi.StringWidth(cell), 0))
		}
		return style.Render(strings.Join(parts, columnGap))
	}

	lines := make([]string, 0, len(rows)+1)
	for index, row := range rows {
		if index == 0 && header {
			lines = append(lines, format(row, p.color(p.theme.NormalText).Bold(true)))
			rules := make([]string, columns)
			for column, width := range widths {
				rules[column] = strings.Repeat("─", width)
			}
			lines = append(lines, p.color(p.theme.BorderColor).Render(strings.Join(rules, columnGap)))
			continue
		}
		lines = append(lines, format(row, p.styles.NewStyle()))
	}
	p.gap()
	p.emit(strings.Join(lines, "\n"))
	p.gap()
}

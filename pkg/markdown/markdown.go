// Package markdown converts the markdown-like text of model replies into an
// ordered list of display blocks (headings, lists and paragraphs) with
// bold/italic inline spans.
//
// The grammar is intentionally small: no nesting, no code blocks, no escapes.
package markdown

import (
	"regexp"
	"strings"
)

// Kind is the block-level type of a Block.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	List
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case List:
		return "list"
	default:
		return "paragraph"
	}
}

// Style is the inline formatting of a Span. Styles combine as a bit set.
type Style int

const (
	Plain    Style = 0
	Strong   Style = 1 << 0
	Emphasis Style = 1 << 1
)

// Has reports whether s includes every style in o.
func (s Style) Has(o Style) bool {
	return o != Plain && s&o == o
}

// Span is a run of text with a single inline style.
type Span struct {
	Text  string
	Style Style
}

// Line is a sequence of spans rendered on one visual line.
type Line []Span

// Text returns the line without inline markup.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is one display block.
//
// Headings have a single line and a Level of 1-3. Lists have one line per
// item. Paragraphs have one line per source line; lines are separated by
// explicit breaks when rendered.
type Block struct {
	Kind  Kind
	Level int
	Lines []Line
}

var (
	blockSep  = regexp.MustCompile(`\n\s*\n`)
	strongRe  = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emphRe    = regexp.MustCompile(`\*(.*?)\*`)
	headings  = []string{"### ", "## ", "# "}
	bullets   = []string{"* ", "- ", "• "}
	lineBreak = "\n"
)

// Render splits text into blocks. It is a pure function of its input.
func Render(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", lineBreak)

	var blocks []Block
	for _, raw := range blockSep.Split(text, -1) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		blocks = append(blocks, renderBlock(raw))
	}
	return blocks
}

func renderBlock(raw string) Block {
	for i, marker := range headings {
		if strings.HasPrefix(raw, marker) {
			return Block{
				Kind:  Heading,
				Level: len(headings) - i,
				Lines: []Line{Inline(raw[len(marker):])},
			}
		}
	}

	lines := strings.Split(raw, lineBreak)
	if isList(lines) {
		b := Block{Kind: List, Lines: make([]Line, 0, len(lines))}
		for _, l := range lines {
			item := strings.TrimSpace(l)
			item = item[strings.Index(item, " ")+1:]
			b.Lines = append(b.Lines, Inline(item))
		}
		return b
	}

	b := Block{Kind: Paragraph, Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		b.Lines = append(b.Lines, Inline(l))
	}
	return b
}

func isList(lines []string) bool {
	for _, l := range lines {
		if !hasBullet(strings.TrimSpace(l)) {
			return false
		}
	}
	return true
}

func hasBullet(s string) bool {
	for _, b := range bullets {
		if strings.HasPrefix(s, b) {
			return true
		}
	}
	return false
}

// Inline resolves **strong** and then *emphasis* markers. The emphasis pass
// runs over the whole text left by the strong pass, so the two styles nest
// in either direction.
func Inline(s string) Line {
	text, styles := apply(s, nil, strongRe, Strong)
	text, styles = apply(text, styles, emphRe, Emphasis)
	return spans(text, styles)
}

// apply removes the markers matched by re from s and adds style to the
// bytes they enclosed. styles holds one entry per byte of s, or nil.
func apply(s string, styles []Style, re *regexp.Regexp, style Style) (string, []Style) {
	if styles == nil {
		styles = make([]Style, len(s))
	}

	var b strings.Builder
	out := make([]Style, 0, len(s))
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:m[0]])
		out = append(out, styles[last:m[0]]...)

		b.WriteString(s[m[2]:m[3]])
		for _, st := range styles[m[2]:m[3]] {
			out = append(out, st|style)
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	out = append(out, styles[last:]...)
	return b.String(), out
}

// spans groups runs of equally styled bytes. Style changes only happen where
// ASCII markers were removed, so runs never split a rune.
func spans(s string, styles []Style) Line {
	var line Line
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && styles[i] == styles[start] {
			continue
		}
		line = append(line, Span{Text: s[start:i], Style: styles[start]})
		start = i
	}
	return line
}

package markdown

import (
	"html"
	"html/template"
	"net/url"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// policy admits only the tags the renderer itself constructs.
var policy = bluemonday.NewPolicy().AllowElements("strong", "em", "br")

// HTML renders the line as sanitized inline markup. Span text is escaped
// before it is wrapped, so model output can never inject markup.
func (l Line) HTML() template.HTML {
	return sanitize(l.markup())
}

func (l Line) markup() string {
	var (
		b    strings.Builder
		open []Style
	)
	for i, s := range l {
		// close from the innermost tag down to the first one s drops
		for j, st := range open {
			if !s.Style.Has(st) {
				for k := len(open) - 1; k >= j; k-- {
					b.WriteString(closeTag(open[k]))
				}
				open = open[:j]
				break
			}
		}
		// the style that runs longer opens first so it encloses the other
		for _, st := range l.byRunLength(i) {
			if s.Style.Has(st) && !slices.Contains(open, st) {
				b.WriteString(openTag(st))
				open = append(open, st)
			}
		}
		b.WriteString(html.EscapeString(s.Text))
	}
	for k := len(open) - 1; k >= 0; k-- {
		b.WriteString(closeTag(open[k]))
	}
	return b.String()
}

// byRunLength orders the inline styles by how many spans from i on keep them.
func (l Line) byRunLength(i int) []Style {
	run := func(st Style) int {
		n := 0
		for _, s := range l[i:] {
			if !s.Style.Has(st) {
				break
			}
			n++
		}
		return n
	}
	if run(Emphasis) > run(Strong) {
		return []Style{Emphasis, Strong}
	}
	return []Style{Strong, Emphasis}
}

func openTag(st Style) string {
	if st == Strong {
		return "<strong>"
	}
	return "<em>"
}

func closeTag(st Style) string {
	if st == Strong {
		return "</strong>"
	}
	return "</em>"
}

// HTML renders the block content as sanitized inline markup. Paragraph lines
// are joined with <br>; list items are joined the same way, use Items for
// per-item markup.
func (b Block) HTML() template.HTML {
	parts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		parts[i] = l.markup()
	}
	return sanitize(strings.Join(parts, "<br>"))
}

// Items returns the sanitized markup of every line, one per list item.
func (b Block) Items() []template.HTML {
	out := make([]template.HTML, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.HTML()
	}
	return out
}

// Text returns the block content without markup, lines joined by newlines.
func (b Block) Text() string {
	parts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

func sanitize(s string) template.HTML {
	return template.HTML(policy.Sanitize(s)) //nolint:gosec // sanitized above
}

// SourceLabel returns the visible label of a cited source: its title, or the
// hostname of its URI when the title is empty.
func SourceLabel(s llm.Source) string {
	if strings.TrimSpace(s.Title) != "" {
		return s.Title
	}
	u, err := url.Parse(s.URI)
	if err != nil || u.Hostname() == "" {
		return s.URI
	}
	return u.Hostname()
}

package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/imageenc"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/markdown"
)

var (
	accent = lipgloss.Color("14")
	muted  = lipgloss.Color("8")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	logoStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	userLabel    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	modelLabel   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	pendingStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	linkStyle    = lipgloss.NewStyle().Foreground(accent)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	headingStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("15")),
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		3: lipgloss.NewStyle().Bold(true),
	}
)

// Renderer turns message content into terminal text of the given width.
type Renderer interface {
	Content(text string, width int) string
}

// BlockRenderer renders content through the markdown block renderer.
type BlockRenderer struct{}

func (BlockRenderer) Content(text string, width int) string {
	blocks := markdown.Render(ansi.Strip(text))
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, renderBlock(b, width))
	}
	return strings.Join(out, "\n\n")
}

func renderBlock(b markdown.Block, width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	switch b.Kind {
	case markdown.Heading:
		style, ok := headingStyles[b.Level]
		if !ok {
			style = headingStyles[3]
		}
		return wrap.Render(style.Render(b.Text()))
	case markdown.List:
		items := make([]string, len(b.Lines))
		itemWrap := lipgloss.NewStyle().Width(max(width-2, 1))
		for i, l := range b.Lines {
			items[i] = lipgloss.JoinHorizontal(lipgloss.Top, "• ", itemWrap.Render(renderLine(l)))
		}
		return strings.Join(items, "\n")
	default:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = wrap.Render(renderLine(l))
		}
		return strings.Join(lines, "\n")
	}
}

func renderLine(l markdown.Line) string {
	var sb strings.Builder
	for _, s := range l {
		if s.Style == markdown.Plain {
			sb.WriteString(s.Text)
			continue
		}
		style := lipgloss.NewStyle().
			Bold(s.Style.Has(markdown.Strong)).
			Italic(s.Style.Has(markdown.Emphasis))
		sb.WriteString(style.Render(s.Text))
	}
	return sb.String()
}

// GlamourRenderer renders content with glamour for richer markdown.
type GlamourRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	fallback BlockRenderer
}

// NewGlamourRenderer picks a light or dark style from the terminal background.
func NewGlamourRenderer() *GlamourRenderer {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}
	return &GlamourRenderer{style: style}
}

func (g *GlamourRenderer) Content(text string, width int) string {
	if g.renderer == nil || g.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(g.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return g.fallback.Content(text, width)
		}
		g.renderer, g.width = r, width
	}

	out, err := g.renderer.Render(ansi.Strip(text))
	if err != nil {
		return g.fallback.Content(text, width)
	}
	return strings.Trim(out, "\n")
}

// renderMessage renders one transcript message with its label, image note
// and cited sources.
func renderMessage(m llm.Message, r Renderer, p *i18n.Printer, width int) string {
	var sb strings.Builder

	if m.IsModel() {
		sb.WriteString(modelLabel.Render("VisorX"))
	} else {
		sb.WriteString(userLabel.Render("Tú"))
	}
	sb.WriteString("\n")

	if m.Image != "" {
		mime, _, err := imageenc.SplitDataURI(m.Image)
		if err != nil {
			mime = "image"
		}
		sb.WriteString(mutedStyle.Render("[" + mime + "]"))
		sb.WriteString("\n")
	}

	if m.IsModel() {
		sb.WriteString(r.Content(m.Content, width))
	} else {
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(ansi.Strip(m.Content)))
	}

	if len(m.Sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(mutedStyle.Render(p.Sprintf(i18n.Sources)))
		for _, s := range m.Sources {
			label := ansi.Truncate(ansi.Strip(markdown.SourceLabel(s)), max(width-2, 1), "…")
			sb.WriteString("\n")
			sb.WriteString(mutedStyle.Render("↗ "))
			if uri, ok := hyperlinkTarget(s.URI); ok {
				sb.WriteString(ansi.SetHyperlink(uri) + linkStyle.Render(label) + ansi.ResetHyperlink())
			} else {
				sb.WriteString(linkStyle.Render(label))
			}
		}
	}
	return sb.String()
}

// hyperlinkTarget reports whether uri can be embedded in an OSC 8 sequence.
// Any control byte could end the sequence early and inject terminal
// commands, so such URIs are shown as plain labels.
func hyperlinkTarget(uri string) (string, bool) {
	if uri == "" || ansi.Strip(uri) != uri {
		return "", false
	}
	for i := 0; i < len(uri); i++ {
		if c := uri[i]; c < 0x20 || c == 0x7f {
			return "", false
		}
	}
	return uri, true
}

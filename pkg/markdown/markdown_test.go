package markdown_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/markdown"
)

var _ = Describe("Render", func() {
	It("renders bold and italic in a single paragraph", func() {
		blocks := markdown.Render("**Bold** and *italic*")

		Expect(blocks).To(HaveLen(1))
		Expect(blocks[0].Kind).To(Equal(markdown.Paragraph))
		out := string(blocks[0].HTML())
		Expect(out).To(ContainSubstring("<strong>Bold</strong>"))
		Expect(out).To(ContainSubstring("<em>italic</em>"))
	})

	It("escapes markup in plain and formatted text", func() {
		blocks := markdown.Render("a < b & **<script>x</script>** *<img>*")

		Expect(blocks).To(HaveLen(1))
		out := string(blocks[0].HTML())
		Expect(out).To(ContainSubstring("a &lt; b &amp; "))
		Expect(out).To(ContainSubstring("<strong>&lt;script&gt;x&lt;/script&gt;</strong>"))
		Expect(out).To(ContainSubstring("<em>&lt;img&gt;</em>"))
		Expect(out).NotTo(ContainSubstring("<script"))
		Expect(out).NotTo(ContainSubstring("<img"))
	})

	It("splits a heading from the following paragraph", func() {
		blocks := markdown.Render("# Title\n\nBody text")

		Expect(blocks).To(HaveLen(2))
		Expect(blocks[0].Kind).To(Equal(markdown.Heading))
		Expect(blocks[0].Level).To(Equal(1))
		Expect(blocks[0].Text()).To(Equal("Title"))
		Expect(blocks[1].Kind).To(Equal(markdown.Paragraph))
		Expect(blocks[1].Text()).To(Equal("Body text"))
	})

	DescribeTable("heading levels",
		func(input string, level int, text string) {
			blocks := markdown.Render(input)
			Expect(blocks).To(HaveLen(1))
			Expect(blocks[0].Kind).To(Equal(markdown.Heading))
			Expect(blocks[0].Level).To(Equal(level))
			Expect(blocks[0].Text()).To(Equal(text))
		},
		Entry("h1", "# One", 1, "One"),
		Entry("h2", "## Two", 2, "Two"),
		Entry("h3", "### Three", 3, "Three"),
	)

	It("does not treat a marker without a space as a heading", func() {
		blocks := markdown.Render("#hashtag")

		Expect(blocks[0].Kind).To(Equal(markdown.Paragraph))
	})

	It("renders every bulleted line as a list item in order", func() {
		blocks := markdown.Render("* one\n* two")

		Expect(blocks).To(HaveLen(1))
		Expect(blocks[0].Kind).To(Equal(markdown.List))
		Expect(blocks[0].Lines).To(HaveLen(2))
		Expect(blocks[0].Lines[0].Text()).To(Equal("one"))
		Expect(blocks[0].Lines[1].Text()).To(Equal("two"))
	})

	It("accepts mixed bullet markers and indentation", func() {
		blocks := markdown.Render("- **alpha**\n  • beta\n* *gamma*")

		Expect(blocks[0].Kind).To(Equal(markdown.List))
		items := blocks[0].Items()
		Expect(items).To(HaveLen(3))
		Expect(string(items[0])).To(Equal("<strong>alpha</strong>"))
		Expect(string(items[1])).To(Equal("beta"))
		Expect(string(items[2])).To(Equal("<em>gamma</em>"))
	})

	It("falls back to a paragraph when one line is not bulleted", func() {
		blocks := markdown.Render("* one\nplain")

		Expect(blocks[0].Kind).To(Equal(markdown.Paragraph))
	})

	It("converts single newlines in paragraphs to line breaks", func() {
		blocks := markdown.Render("line one\nline two")

		Expect(blocks).To(HaveLen(1))
		Expect(blocks[0].Lines).To(HaveLen(2))
		Expect(string(blocks[0].HTML())).To(MatchRegexp(`^line one<br/?>line two$`))
	})

	It("discards empty blocks and collapses runs of blank lines", func() {
		blocks := markdown.Render("\n\nfirst\n\n \n\n\nsecond\n\n")

		Expect(blocks).To(HaveLen(2))
		Expect(blocks[0].Text()).To(Equal("first"))
		Expect(blocks[1].Text()).To(Equal("second"))
	})

	It("returns no blocks for blank input", func() {
		Expect(markdown.Render("  \n\n ")).To(BeEmpty())
	})

	It("is idempotent", func() {
		in := "## Resumen\n\n* **AAPL** sube\n* *MSFT* baja\n\nTexto final"
		Expect(markdown.Render(in)).To(Equal(markdown.Render(in)))
	})
})

var _ = Describe("Inline", func() {
	It("consumes double asterisks before single ones", func() {
		line := markdown.Inline("**a** *b* c")

		Expect(line).To(Equal(markdown.Line{
			{Text: "a", Style: markdown.Strong},
			{Text: " "},
			{Text: "b", Style: markdown.Emphasis},
			{Text: " c"},
		}))
	})

	It("nests strong inside emphasis", func() {
		line := markdown.Inline("*Nota: **importante** hoy*")

		Expect(line).To(Equal(markdown.Line{
			{Text: "Nota: ", Style: markdown.Emphasis},
			{Text: "importante", Style: markdown.Strong | markdown.Emphasis},
			{Text: " hoy", Style: markdown.Emphasis},
		}))
		Expect(string(line.HTML())).To(Equal("<em>Nota: <strong>importante</strong> hoy</em>"))
	})

	It("nests emphasis inside strong", func() {
		line := markdown.Inline("**a *b* c**")

		Expect(line).To(Equal(markdown.Line{
			{Text: "a ", Style: markdown.Strong},
			{Text: "b", Style: markdown.Strong | markdown.Emphasis},
			{Text: " c", Style: markdown.Strong},
		}))
		Expect(string(line.HTML())).To(Equal("<strong>a <em>b</em> c</strong>"))
	})

	It("keeps multibyte text intact around markers", func() {
		line := markdown.Inline("**Índice** *año* ñ")

		Expect(line.Text()).To(Equal("Índice año ñ"))
		Expect(string(line.HTML())).To(Equal("<strong>Índice</strong> <em>año</em> ñ"))
	})

	It("leaves unmatched markers as text", func() {
		line := markdown.Inline("5 * 3")

		Expect(line).To(Equal(markdown.Line{{Text: "5 * 3"}}))
	})
})

var _ = Describe("SourceLabel", func() {
	It("uses the title when present", func() {
		Expect(markdown.SourceLabel(llm.Source{URI: "https://a.com/x", Title: "A"})).To(Equal("A"))
	})

	It("falls back to the hostname when the title is empty", func() {
		Expect(markdown.SourceLabel(llm.Source{URI: "https://a.com", Title: ""})).To(Equal("a.com"))
	})

	It("falls back to the raw URI when it has no host", func() {
		Expect(markdown.SourceLabel(llm.Source{URI: "not a url"})).To(Equal("not a url"))
	})
})

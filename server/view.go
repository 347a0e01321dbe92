package server

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/markdown"
	"github.com/papercomputeco/visorx/pkg/transcript"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageView is the data rendered by templates/index.html.
type pageView struct {
	Lang     string
	Loading  bool
	Messages []messageView

	SourcesTitle     string
	AnalyzingText    string
	InitializingText string
	Placeholder      string
	AttachImageText  string
	RemoveImageText  string
	SendText         string
}

type messageView struct {
	Hash    string
	Role    string
	Image   template.URL
	Blocks  []markdown.Block
	Sources []sourceView
}

type sourceView struct {
	URI   string
	Title string
	Label string
}

func newPageView(ctrl *conversation.Controller) pageView {
	p := ctrl.Printer()
	entries := ctrl.Entries()

	view := pageView{
		Lang:     p.Tag().String(),
		Loading:  ctrl.Loading(),
		Messages: make([]messageView, 0, len(entries)),

		SourcesTitle:     p.Sprintf(i18n.Sources),
		AnalyzingText:    p.Sprintf(i18n.Analyzing),
		InitializingText: p.Sprintf(i18n.Initializing),
		Placeholder:      p.Sprintf(i18n.Placeholder),
		AttachImageText:  p.Sprintf(i18n.AttachImage),
		RemoveImageText:  p.Sprintf(i18n.RemoveImage),
		SendText:         p.Sprintf(i18n.Send),
	}

	for _, e := range entries {
		view.Messages = append(view.Messages, newMessageView(e))
	}
	return view
}

func newMessageView(e *transcript.Entry) messageView {
	m := e.Message
	v := messageView{
		Hash:   e.Hash,
		Role:   string(m.Role),
		Image:  imageURL(m.Image),
		Blocks: markdown.Render(m.Content),
	}
	for _, s := range m.Sources {
		v.Sources = append(v.Sources, sourceView{
			URI:   s.URI,
			Title: s.Title,
			Label: markdown.SourceLabel(s),
		})
	}
	return v
}

// imageURL admits only base64 image data-URIs produced by the encoder.
func imageURL(uri string) template.URL {
	if !strings.HasPrefix(uri, "data:image/") || !strings.Contains(uri, ";base64,") {
		return ""
	}
	return template.URL(uri) //nolint:gosec // data:image/* only
}

func renderPage(w io.Writer, ctrl *conversation.Controller) error {
	return pageTemplate.Execute(w, newPageView(ctrl))
}

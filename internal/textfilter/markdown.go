// Package textfilter provides the text-to-HTML filters used by the page
// templates: Markdown rendering and search-term highlighting.
package textfilter

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md mirrors the original filter set: fenced code, tables, and hard line
// breaks for plain newlines.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Markdown renders text as HTML. Empty input yields empty output; a render
// failure falls back to the escaped source so the page still shows
// something readable.
func Markdown(text string) template.HTML {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		slog.Warn("textfilter: markdown render failed", slog.String("error", err.Error()))
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

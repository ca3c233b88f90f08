package main

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/sofiamaki/pilatesapp/internal/errors"
	"github.com/yuin/goldmark"
)

// renderMarkdownToHTML converts movement description markdown into HTML.
// Catalog descriptions are trusted content authored by instructors, not user
// input. Conversion failures degrade to plain text.
func (app *application) renderMarkdownToHTML(ctx context.Context, markdown string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "render markdown", errors.SlogError(err))
		return template.HTML(template.HTMLEscapeString(markdown)) //nolint:gosec // escaped above.
	}
	return template.HTML(buf.String()) //nolint:gosec // trusted catalog content.
}

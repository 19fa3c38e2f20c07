package pipeline

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML fragments using goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// syntax highlighting. Raw HTML in notebook markdown is passed through, as
// notebook front ends render it.
func NewGoldmarkConverter(style string) *GoldmarkConverter {
	// Code spans share the class based stylesheet of code cells.
	code := highlighting.NewHighlighting(
		highlighting.WithStyle(style),
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	)
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, code),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// ToHTML converts Markdown content to an HTML fragment. Math spans are
// kept verbatim for MathJax.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	return convertCtx(ctx, content, c.Convert)
}

// Convert is the synchronous form of ToHTML, used from templates.
func (c *GoldmarkConverter) Convert(content string) (string, error) {
	raw := &rawLaTeX{mathOnly: true}
	src := raw.Protect(NormalizeLineEndings(content))

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return raw.RestoreHTML(buf.String()), nil
}

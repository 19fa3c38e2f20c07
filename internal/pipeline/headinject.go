package pipeline

import (
	"context"
	"strings"
)

// HeadInjector adds elements to the head of rendered HTML documents.
type HeadInjector interface {
	InjectStyle(ctx context.Context, htmlContent, css string) string
	InjectElement(ctx context.Context, htmlContent, element string) string
}

// HeadInjection inserts elements before </head>, falling back to right
// after <body>, then to the start of the content.
type HeadInjection struct{}

var _ HeadInjector = (*HeadInjection)(nil)

// InjectStyle inserts css as a <style> block. Closing sequences in the CSS
// are escaped so it cannot terminate the block.
func (h *HeadInjection) InjectStyle(ctx context.Context, htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}
	return h.InjectElement(ctx, htmlContent, "<style>"+sanitizeCSS(css)+"</style>")
}

// InjectElement inserts element verbatim at the insertion point.
func (h *HeadInjection) InjectElement(ctx context.Context, htmlContent, element string) string {
	if element == "" || ctx.Err() != nil {
		return htmlContent
	}
	at := insertionPoint(htmlContent)
	return htmlContent[:at] + element + htmlContent[at:]
}

// insertionPoint returns the offset of </head>, the offset after the <body>
// tag, or 0.
func insertionPoint(htmlContent string) int {
	lower := strings.ToLower(htmlContent)
	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return idx
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.IndexByte(htmlContent[idx:], '>'); end != -1 {
			return idx + end + 1
		}
	}
	return 0
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its <style> tag.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

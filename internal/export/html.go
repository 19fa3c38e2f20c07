package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// htmlPriority orders the MIME types an HTML export can render.
// application/javascript is never executed from exports.
var htmlPriority = []string{
	"text/html",
	"image/svg+xml",
	"image/png",
	"image/jpeg",
	"text/markdown",
	"text/latex",
	"text/plain",
}

// htmlRawFormats are the raw cell formats shown in HTML exports.
var htmlRawFormats = []string{"html", "text/html"}

// HTMLExporter renders notebooks to standalone HTML documents.
type HTMLExporter struct {
	tmpl        *template.Template
	highlighter *pipeline.Highlighter
	markdown    *pipeline.GoldmarkConverter
	injector    pipeline.HeadInjector
	style       template.CSS
	settings
}

// NewHTMLExporter parses the HTML base template and the overrides of set.
// A nil set renders the base template alone.
func NewHTMLExporter(base, set *assets.TemplateSet, opts ...Option) (*HTMLExporter, error) {
	e := &HTMLExporter{
		settings: defaultSettings(),
		injector: &pipeline.HeadInjection{},
	}
	for _, opt := range opts {
		opt(&e.settings)
	}

	e.highlighter = pipeline.NewHighlighter(e.highlightStyle)
	e.markdown = pipeline.NewGoldmarkConverter(e.highlightStyle)

	var css strings.Builder
	css.WriteString(e.stylesheet)
	css.WriteString("\n")
	if err := e.highlighter.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("%w: highlight stylesheet: %v", ErrTemplateParse, err)
	}
	// #nosec G203 -- stylesheet comes from embedded or configured assets
	e.style = template.CSS(css.String())

	tmpl := template.New("html").Funcs(e.funcs(context.Background()))
	if _, err := tmpl.Parse(base.HTML); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, base.Name, err)
	}
	if set != nil && set.HTML != "" {
		if _, err := tmpl.Parse(set.HTML); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, set.Name, err)
		}
	}
	e.tmpl = tmpl

	return e, nil
}

// Export renders nb as a complete HTML document. Local images are resolved
// against srcDir when inlining is enabled.
func (e *HTMLExporter) Export(ctx context.Context, nb *notebook.Notebook, info Info, srcDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := newDocument(nb, info, htmlRawFormats, func(_, _ int, o *notebook.Output, out *Output) {
		chooseHTMLOutput(o, out)
	})
	doc.Style = e.style
	doc.MathJaxURL = e.mathJaxURL
	for i, c := range nb.Cells {
		if c.Type == notebook.CellMarkdown {
			doc.Cells[i].Source = inlineAttachments(c)
		}
	}

	tmpl, err := e.tmpl.Clone()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	tmpl.Funcs(e.funcs(ctx))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	out := buf.String()

	if e.inlineImages {
		out, err = pipeline.InlineImages(out, srcDir, e.logger)
		if err != nil {
			return "", err
		}
	}

	return e.injector.InjectStyle(ctx, out, e.extraCSS), nil
}

// chooseHTMLOutput picks the first representation in htmlPriority.
func chooseHTMLOutput(o *notebook.Output, out *Output) {
	for _, mime := range htmlPriority {
		payload, ok := o.Data[mime]
		if !ok {
			continue
		}
		out.MIME = mime
		out.Data = string(payload)

		switch mime {
		case "text/html", "image/svg+xml":
			// #nosec G203 -- notebook outputs are rendered as the notebook would show them
			out.Markup = template.HTML(payload)
		case "image/png", "image/jpeg":
			// #nosec G203 -- base64 payload from the notebook
			out.Image = template.URL("data:" + mime + ";base64," + stripWhitespace(string(payload)))
		}
		return
	}
}

// inlineAttachments replaces attachment:<name> references in a markdown
// cell with data URIs built from the cell's attachments.
func inlineAttachments(c *notebook.Cell) string {
	src := c.String()
	for name, bundle := range c.Attachments {
		ref := "attachment:" + name
		if !strings.Contains(src, ref) {
			continue
		}
		for _, mime := range bundle.Types() {
			if !strings.HasPrefix(mime, "image/") {
				continue
			}
			payload := string(bundle[mime])
			if mime == "image/svg+xml" {
				payload = base64Std(payload)
			} else {
				payload = stripWhitespace(payload)
			}
			src = strings.ReplaceAll(src, ref, "data:"+mime+";base64,"+payload)
			break
		}
	}
	return src
}

// funcs returns the template functions bound to ctx.
func (e *HTMLExporter) funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"markdown2html": func(src string) (template.HTML, error) {
			out, err := e.markdown.ToHTML(ctx, src)
			// #nosec G203 -- notebook markdown is rendered with raw HTML enabled
			return template.HTML(out), err
		},
		"highlight_code": func(code, language string) (template.HTML, error) {
			out, err := e.highlighter.HighlightHTML(code, language)
			// #nosec G203 -- chroma output escapes the code
			return template.HTML(out), err
		},
		"raw_html": func(src string) template.HTML {
			// #nosec G203 -- raw cells targeting HTML are emitted verbatim
			return template.HTML(src)
		},
		"strip_ansi": StripANSI,
		"posix_path": PosixPath,
	}
}

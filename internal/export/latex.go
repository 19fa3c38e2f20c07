package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// Template delimiters of LaTeX templates.
const (
	LeftDelim  = "((*"
	RightDelim = "*))"
)

// latexPriority orders the MIME types a LaTeX export can render.
var latexPriority = []string{
	"application/pdf",
	"image/svg+xml",
	"image/png",
	"image/jpeg",
	"text/latex",
	"text/markdown",
	"text/plain",
}

// latexRawFormats are the raw cell formats included in LaTeX exports.
var latexRawFormats = []string{"latex", "tex", "text/latex", "pdf"}

// figureExt maps figure MIME types to the extension of the written file.
var figureExt = map[string]string{
	"application/pdf": ".pdf",
	"image/svg+xml":   ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// LatexExporter renders notebooks to LaTeX.
type LatexExporter struct {
	tmpl        *template.Template
	highlighter *pipeline.Highlighter
	article     *pipeline.GoldmarkLaTeXConverter
	chapters    *pipeline.GoldmarkLaTeXConverter
	settings
}

// NewLatexExporter parses the LaTeX base template and the overrides of set.
// A nil set renders the base template alone.
func NewLatexExporter(base, set *assets.TemplateSet, opts ...Option) (*LatexExporter, error) {
	e := &LatexExporter{settings: defaultSettings()}
	for _, opt := range opts {
		opt(&e.settings)
	}

	e.highlighter = pipeline.NewHighlighter(e.highlightStyle)
	e.article = pipeline.NewGoldmarkLaTeXConverter(pipeline.WithCodeHighlighter(e.highlighter))
	e.chapters = pipeline.NewGoldmarkLaTeXConverter(
		pipeline.WithChapters(true),
		pipeline.WithCodeHighlighter(e.highlighter),
	)

	tmpl := template.New("latex").Delims(LeftDelim, RightDelim).Funcs(e.funcs(context.Background()))
	if _, err := tmpl.Parse(base.LaTeX); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, base.Name, err)
	}
	if set != nil && set.LaTeX != "" {
		if _, err := tmpl.Parse(set.LaTeX); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, set.Name, err)
		}
	}
	e.tmpl = tmpl

	return e, nil
}

// Export renders nb. Output figures are extracted into res under
// "<name>_files/".
func (e *LatexExporter) Export(ctx context.Context, nb *notebook.Notebook, info Info, res pipeline.Resources) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := newDocument(nb, info, latexRawFormats, func(cell, index int, o *notebook.Output, out *Output) {
		e.chooseOutput(info.Name, cell, index, o, out, res)
	})

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

	return strings.TrimSpace(pipeline.CompressBlankLines(buf.String())) + "\n", nil
}

// chooseOutput picks the first usable representation in latexPriority.
// Figures that cannot be decoded or converted fall through to the next type.
func (e *LatexExporter) chooseOutput(name string, cell, index int, o *notebook.Output, out *Output, res pipeline.Resources) {
	for _, mime := range latexPriority {
		payload, ok := o.Data[mime]
		if !ok {
			continue
		}

		ext, isFigure := figureExt[mime]
		if !isFigure {
			out.MIME = mime
			out.Data = string(payload)
			return
		}

		data, err := e.figureBytes(mime, string(payload))
		if err != nil {
			e.logger.Warn("output figure skipped", "cell", cell, "output", index, "mime", mime, "error", err)
			continue
		}

		key := pipeline.ResourceKey(name, figureFile(name, cell, index, ext))
		if res.Put(key, data) {
			e.logger.ResourceCollision(key, mime)
		}
		e.logger.ResourceAdded(key, mime, len(data))

		out.MIME = mime
		out.Figure = key
		return
	}
}

// figureBytes decodes a figure payload; SVG is converted to PDF.
func (e *LatexExporter) figureBytes(mime, payload string) ([]byte, error) {
	if mime == "image/svg+xml" {
		if e.transcoder == nil {
			return nil, fmt.Errorf("no SVG converter configured")
		}
		return e.transcoder.SVGToPDF([]byte(payload))
	}
	return base64.StdEncoding.DecodeString(stripWhitespace(payload))
}

// funcs returns the template functions bound to ctx.
func (e *LatexExporter) funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"markdown2latex": func(args ...string) (string, error) {
			return e.markdown2latex(ctx, args...)
		},
		"citation2latex":     pipeline.Citation2LaTeX,
		"strip_files_prefix": pipeline.StripFilesPrefix,
		"highlight_code":     e.highlighter.HighlightLaTeX,
		"escape_latex":       pipeline.EscapeLaTeX,
		"escape_verbatim":    pipeline.EscapeVerbatim,
		"strip_ansi":         StripANSI,
		"posix_path":         PosixPath,
	}
}

// markdown2latex converts the last argument; earlier arguments are options.
// The only option is "chapters" (or "--chapters"), which maps # to \chapter.
func (e *LatexExporter) markdown2latex(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}

	conv := e.article
	if e.chapterHeadings {
		conv = e.chapters
	}
	for _, opt := range args[:len(args)-1] {
		switch strings.TrimLeft(opt, "-") {
		case "chapters":
			conv = e.chapters
		default:
			return "", fmt.Errorf("markdown2latex: unknown option %q", opt)
		}
	}

	return conv.ToLaTeX(ctx, args[len(args)-1])
}

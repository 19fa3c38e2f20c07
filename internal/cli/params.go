package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
	"github.com/robintibor/convert-notebook-to-latex/internal/dateutil"
)

// ErrInvalidTimeout reports an unparsable or non-positive --timeout.
var ErrInvalidTimeout = errors.New("invalid timeout")

// mergeFlags copies explicitly set flags into cfg (CLI wins).
// The HTML style is resolved separately since it may be a file path.
func mergeFlags(f *cliFlags, cfg *config.Config) error {
	if f.latex.bib != "" {
		cfg.Bibliography = f.latex.bib
	}
	if f.latex.bibStyle != "" {
		cfg.Latex.BibStyle = f.latex.bibStyle
	}
	if f.latex.template != "" {
		cfg.Latex.Template = f.latex.template
	}
	if f.latex.engine != "" {
		cfg.Latex.Engine = f.latex.engine
	}
	if f.latex.runs != 0 {
		cfg.Latex.Runs = f.latex.runs
	}
	if f.latex.chapters {
		cfg.Latex.Chapters = true
	}
	switch {
	case f.latex.noFootnotes:
		cfg.Latex.Footnotes = boolPtr(false)
	case f.latex.footnotes:
		cfg.Latex.Footnotes = boolPtr(true)
	}

	if f.document.title != "" {
		cfg.Document.Title = f.document.title
	}
	if len(f.document.authors) > 0 {
		cfg.Document.Authors = f.document.authors
	}
	if f.document.date != "" {
		cfg.Document.Date = f.document.date
	}

	if f.page.size != "" {
		cfg.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Page.Orientation = f.page.orientation
	}
	if f.page.margin != 0 {
		cfg.Page.Margin = f.page.margin
	}

	if f.assets.assetPath != "" {
		cfg.Assets.BasePath = f.assets.assetPath
	}
	if f.outdir != "" {
		cfg.Output.DefaultDir = f.outdir
	}
	if f.output.webpdf {
		cfg.PDF.Engine = config.PDFEngineChrome
	}

	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, f.timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, f.timeout)
		}
		cfg.PDF.Timeout = config.Duration(d)
	}

	return cfg.Validate()
}

// resolveFormat returns the output format of t under cfg and flags.
func resolveFormat(t *tool, f *cliFlags, cfg *config.Config) nbconvert.Format {
	if t.format != nbconvert.FormatPDF {
		return t.format
	}
	switch {
	case f.output.latex:
		return nbconvert.FormatLaTeX
	case strings.EqualFold(cfg.PDF.Engine, config.PDFEngineChrome):
		return nbconvert.FormatWebPDF
	}
	return nbconvert.FormatPDF
}

// converterOptions builds the options shared by every converter of a run.
func converterOptions(t *tool, f *cliFlags, cfg *config.Config, l *log.Logger) []nbconvert.Option {
	opts := []nbconvert.Option{nbconvert.WithLogger(l)}

	if cfg.PDF.Timeout > 0 {
		opts = append(opts, nbconvert.WithTimeout(time.Duration(cfg.PDF.Timeout)))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, nbconvert.WithAssetPath(cfg.Assets.BasePath))
	}

	template := t.template
	if cfg.Latex.Template != "" {
		template = cfg.Latex.Template
	}
	opts = append(opts, nbconvert.WithTemplate(template))

	footnotes := t.footnotes
	if cfg.Latex.Footnotes != nil {
		footnotes = *cfg.Latex.Footnotes
	}
	opts = append(opts,
		nbconvert.WithChapters(t.chapters || cfg.Latex.Chapters),
		nbconvert.WithFootnotes(footnotes),
	)

	if cfg.Latex.Engine != "" {
		opts = append(opts, nbconvert.WithLatexEngine(strings.ToLower(cfg.Latex.Engine)))
	}
	if cfg.Latex.Runs > 0 {
		opts = append(opts, nbconvert.WithLatexRuns(cfg.Latex.Runs))
	}
	if cfg.Latex.BibStyle != "" {
		opts = append(opts, nbconvert.WithBibStyle(cfg.Latex.BibStyle))
	}

	if cfg.Fetch.Timeout > 0 {
		opts = append(opts, nbconvert.WithFetchTimeout(time.Duration(cfg.Fetch.Timeout)))
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, nbconvert.WithUserAgent(cfg.Fetch.UserAgent))
	}

	style := cfg.HTML.Style
	if f.assets.style != "" {
		style = f.assets.style
	}
	if style != "" {
		opts = append(opts, nbconvert.WithHTMLStyle(style))
	}
	if cfg.HTML.HighlightStyle != "" {
		opts = append(opts, nbconvert.WithHighlightStyle(cfg.HTML.HighlightStyle))
	}
	if cfg.HTML.InlineImages != nil {
		opts = append(opts, nbconvert.WithInlineImages(*cfg.HTML.InlineImages))
	}
	switch {
	case cfg.HTML.MathJax != nil && !*cfg.HTML.MathJax:
		opts = append(opts, nbconvert.WithMathJax(""))
	case cfg.HTML.MathJaxURL != "":
		opts = append(opts, nbconvert.WithMathJax(cfg.HTML.MathJaxURL))
	}

	if len(cfg.Tags) > 0 {
		rules := make([]nbconvert.TagRule, 0, len(cfg.Tags))
		for _, r := range cfg.Tags {
			rules = append(rules, nbconvert.TagRule{From: r.From, To: r.To})
		}
		opts = append(opts, nbconvert.WithTagRules(rules...))
	}

	return opts
}

// buildPageSettings fills unset page fields with defaults.
func buildPageSettings(cfg *config.Config) *nbconvert.PageSettings {
	page := nbconvert.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = strings.ToLower(cfg.Page.Orientation)
	}
	if cfg.Page.Margin > 0 {
		page.Margin = cfg.Page.Margin
	}
	return page
}

// buildDocument returns the title block overrides, with "auto" dates
// resolved once for the whole batch. Nil means notebook metadata only.
func buildDocument(cfg *config.Config, now func() time.Time) (*nbconvert.Document, error) {
	d := cfg.Document
	if d.Title == "" && len(d.Authors) == 0 && d.Date == "" {
		return nil, nil
	}
	date, err := dateutil.Resolve(d.Date, now())
	if err != nil {
		return nil, fmt.Errorf("document date: %w", err)
	}
	return &nbconvert.Document{
		Title:   d.Title,
		Authors: d.Authors,
		Date:    date,
	}, nil
}

func boolPtr(b bool) *bool { return &b }

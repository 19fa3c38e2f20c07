package nbconvert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/bibtex"
	"github.com/robintibor/convert-notebook-to-latex/internal/dateutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/export"
	"github.com/robintibor/convert-notebook-to-latex/internal/fetch"
	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/imaging"
	"github.com/robintibor/convert-notebook-to-latex/internal/latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.ImageTranscoder = (*imaging.Transcoder)(nil)
	_ fetch.Fetcher            = (*fetch.HTTPFetcher)(nil)
	_ latexCompiler            = (*latex.Compiler)(nil)
	_ pdfRenderer              = (*rodRenderer)(nil)
)

// latexCompiler turns a LaTeX document into PDF bytes.
type latexCompiler interface {
	Compile(ctx context.Context, job latex.Job) ([]byte, error)
}

// Converter orchestrates the notebook conversion pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter is not safe for concurrent use; use a ConverterPool instead.
type Converter struct {
	cfg               converterConfig
	log               *log.Logger
	logger            *logger.Logger
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	latexExporter     *export.LatexExporter
	htmlExporter      *export.HTMLExporter
	transcoder        *imaging.Transcoder
	images            *pipeline.ImageRewriter
	tags              *pipeline.TagRewriter
	compiler          latexCompiler
	renderer          pdfRenderer
	now               func() time.Time
}

// publicToInternalAdapter wraps public AssetLoader to internal assets.AssetLoader.
type publicToInternalAdapter struct {
	pub AssetLoader
}

func (a *publicToInternalAdapter) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}

func (a *publicToInternalAdapter) LoadTemplateSet(name string) (*assets.TemplateSet, error) {
	ts, err := a.pub.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}
	return &assets.TemplateSet{
		Name:  ts.Name,
		LaTeX: ts.LaTeX,
		HTML:  ts.HTML,
	}, nil
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithTemplate, WithLatexEngine).
// Returns error if asset loading or template parsing fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:      defaultTimeout,
			templateSet:  assets.DefaultTemplateSetName,
			engine:       latex.DefaultEngine,
			runs:         latex.DefaultRuns,
			remoteImages: true,
			htmlStyle:    assets.DefaultStyleName,
			inlineImages: true,
			mathJaxURL:   export.DefaultMathJaxURL,
		},
		assetLoader: assets.NewEmbeddedLoader(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Wrap(c.log)

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}
	if c.publicAssetLoader != nil {
		c.assetLoader = &publicToInternalAdapter{pub: c.publicAssetLoader}
	}

	c.transcoder = imaging.NewTranscoder()
	c.transcoder.Runner = &latex.ExecRunner{}
	c.transcoder.Logger = c.logger

	if err := c.buildExporters(); err != nil {
		return nil, err
	}

	c.images = &pipeline.ImageRewriter{
		Transcoder: c.transcoder,
		Logger:     c.logger,
	}
	if c.cfg.remoteImages {
		var fetchOpts []fetch.Option
		if c.cfg.userAgent != "" {
			fetchOpts = append(fetchOpts, fetch.WithUserAgent(c.cfg.userAgent))
		}
		c.images.Fetcher = fetch.New(c.cfg.fetchTimeout, fetchOpts...)
	}

	c.tags = pipeline.NewTagRewriter()
	if len(c.cfg.tagRules) > 0 {
		rules := append([]pipeline.TagRule(nil), pipeline.DefaultTagRules...)
		for _, r := range c.cfg.tagRules {
			rules = append(rules, pipeline.TagRule{Old: r.From, New: r.To})
		}
		c.tags.Rules = rules
	}

	if c.cfg.runs < 1 {
		return nil, fmt.Errorf("%w: latex runs must be at least 1, got %d", ErrPDFGeneration, c.cfg.runs)
	}
	compiler := latex.NewCompiler(c.cfg.engine, c.logger)
	compiler.Runs = c.cfg.runs
	c.compiler = compiler

	c.renderer = newRodRenderer(c.cfg.timeout)

	return c, nil
}

// buildExporters loads the base templates, the selected template set and
// the HTML stylesheet, then parses both exporters.
func (c *Converter) buildExporters() error {
	base, err := c.assetLoader.LoadTemplateSet(assets.BaseTemplateSetName)
	if errors.Is(err, assets.ErrTemplateSetNotFound) {
		base, err = assets.LoadBase()
	}
	if err != nil {
		return fmt.Errorf("loading base templates: %w", err)
	}

	var set *assets.TemplateSet
	if c.cfg.templateSet != "" && c.cfg.templateSet != assets.BaseTemplateSetName {
		set, err = c.assetLoader.LoadTemplateSet(c.cfg.templateSet)
		if err != nil {
			return fmt.Errorf("loading template set %q: %w", c.cfg.templateSet, err)
		}
	}

	c.latexExporter, err = export.NewLatexExporter(base, set,
		export.WithLogger(c.logger),
		export.WithHighlightStyle(c.cfg.highlightStyle),
		export.WithTranscoder(c.transcoder),
		export.WithChapters(c.cfg.chapters),
	)
	if err != nil {
		return err
	}

	css, err := c.resolveStyle()
	if err != nil {
		return err
	}
	c.htmlExporter, err = export.NewHTMLExporter(base, set,
		export.WithLogger(c.logger),
		export.WithHighlightStyle(c.cfg.highlightStyle),
		export.WithStylesheet(css),
		export.WithExtraCSS(c.cfg.extraCSS),
		export.WithMathJax(c.cfg.mathJaxURL),
		export.WithInlineImages(c.cfg.inlineImages),
	)
	return err
}

// resolveStyle resolves the HTML style input (name or file path) to CSS content.
func (c *Converter) resolveStyle() (string, error) {
	input := c.cfg.htmlStyle
	if input == "" {
		return "", nil
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// Convert runs the pipeline for input.Format and returns the result.
// The context is used for cancellation; PDF builds are additionally bounded
// by the converter timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()

	format, err := c.validateInput(input)
	if err != nil {
		return nil, err
	}

	nb, err := c.load(input)
	if err != nil {
		return nil, err
	}
	c.logger.StageDone("load", time.Since(start))

	name := resultName(input)
	srcDir := "."
	if input.Path != "" {
		srcDir = filepath.Dir(input.Path)
	}

	info, err := c.info(name, input)
	if err != nil {
		return nil, err
	}

	res := &Result{Name: name, Format: format}
	switch format {
	case FormatLaTeX, FormatPDF:
		err = c.convertLaTeX(ctx, nb, srcDir, info, input, res)
	case FormatHTML, FormatWebPDF:
		err = c.convertHTML(ctx, nb, srcDir, info, input, res)
	}
	if err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// convertLaTeX runs citations, images, sanitizing and tag rewriting over
// the notebook, exports it, and compiles the document for FormatPDF.
func (c *Converter) convertLaTeX(ctx context.Context, nb *notebook.Notebook, srcDir string, info export.Info, input Input, res *Result) error {
	bib, err := c.remapCitations(ctx, nb, input.Bibliography)
	if err != nil {
		return err
	}
	info.Bibliography = bib

	resources := pipeline.Resources{}
	stage := time.Now()
	if err := c.images.Rewrite(ctx, nb, srcDir, info.Name, resources); err != nil {
		return fmt.Errorf("rewriting images: %w", err)
	}
	c.logger.StageDone("images", time.Since(stage))

	pipeline.StripRichOutputs(nb)
	if err := c.tags.Rewrite(ctx, nb); err != nil {
		return fmt.Errorf("rewriting HTML tags: %w", err)
	}

	stage = time.Now()
	body, err := c.latexExporter.Export(ctx, nb, info, resources)
	if err != nil {
		return fmt.Errorf("exporting LaTeX: %w", err)
	}
	if c.cfg.footnotes {
		body = pipeline.AddHrefFootnotes(body)
	}
	c.logger.StageDone("export", time.Since(stage))

	if res.Format == FormatLaTeX {
		res.Body = []byte(body)
		res.Resources = resources.Writable()
		return nil
	}

	stage = time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	job := latex.Job{Source: body, Files: resources.Writable()}
	if bib != "" {
		job.Bibliography = input.Bibliography
	}
	pdf, err := c.compiler.Compile(ctx, job)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	c.logger.StageDone("compile", time.Since(stage))

	res.Body = pdf
	return nil
}

// convertHTML exports the notebook as HTML and prints it through the
// browser for FormatWebPDF.
func (c *Converter) convertHTML(ctx context.Context, nb *notebook.Notebook, srcDir string, info export.Info, input Input, res *Result) error {
	stage := time.Now()
	body, err := c.htmlExporter.Export(ctx, nb, info, srcDir)
	if err != nil {
		return fmt.Errorf("exporting HTML: %w", err)
	}
	c.logger.StageDone("export", time.Since(stage))

	if res.Format == FormatHTML {
		res.Body = []byte(body)
		return nil
	}

	stage = time.Now()
	pdf, err := c.renderer.RenderHTML(ctx, body, input.Page)
	if err != nil {
		return err
	}
	c.logger.StageDone("render", time.Since(stage))

	res.Body = pdf
	return nil
}

// remapCitations points notebook citation links at bibliography keys and
// returns the bibliography base name for the document. A missing file is
// not an error: citations stay as they are and no bibliography is set.
func (c *Converter) remapCitations(ctx context.Context, nb *notebook.Notebook, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if !fileutil.FileExists(path) {
		c.logger.Warn("bibliography not found, citations left unchanged", "path", path)
		return "", nil
	}

	stage := time.Now()
	entries, err := bibtex.Load(path)
	if err != nil {
		return "", err
	}
	m, err := pipeline.BuildCitationMap(nb.Metadata.Citations(), entries, c.logger)
	if err != nil {
		return "", err
	}
	if err := m.Apply(ctx, nb); err != nil {
		return "", err
	}
	c.logger.StageDone("citations", time.Since(stage))

	return fileutil.StripExtension(filepath.Base(path)), nil
}

// load parses the notebook bytes of input, or reads input.Path.
func (c *Converter) load(input Input) (*notebook.Notebook, error) {
	if input.Notebook != nil {
		return notebook.Parse(input.Notebook)
	}
	return notebook.Read(input.Path)
}

// info builds the title block of the document.
func (c *Converter) info(name string, input Input) (export.Info, error) {
	info := export.Info{
		Name:     name,
		Geometry: input.Page.Geometry(),
		BibStyle: c.cfg.bibStyle,
	}
	if doc := input.Document; doc != nil {
		info.Title = doc.Title
		info.Authors = doc.Authors
		date, err := dateutil.Resolve(doc.Date, c.now())
		if err != nil {
			return info, err
		}
		info.Date = date
	}
	return info, nil
}

// resultName returns the base name of the outputs of input.
func resultName(input Input) string {
	if input.Name != "" {
		return input.Name
	}
	if input.Path != "" {
		return fileutil.StripExtension(filepath.Base(input.Path))
	}
	return "notebook"
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// validateInput checks that required fields are present and valid, and
// returns the effective format.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier by Config.Validate() at config load time.
func (c *Converter) validateInput(input Input) (Format, error) {
	if input.Path == "" && input.Notebook == nil {
		return "", ErrNoNotebook
	}
	format := input.Format
	if format == "" {
		format = FormatLaTeX
	}
	if format.Extension() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := input.Page.Validate(); err != nil {
		return "", err
	}
	return format, nil
}

package nbconvert

import (
	"time"

	"github.com/charmbracelet/log"
)

// Option configures a Converter.
type Option func(*Converter)

// TagRule is a literal replacement applied to markdown cells after the
// built-in HTML tag rewrites of LaTeX conversions.
type TagRule struct {
	From string
	To   string
}

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout        time.Duration
	assetPath      string
	templateSet    string
	chapters       bool
	footnotes      bool
	engine         string
	runs           int
	bibStyle       string
	fetchTimeout   time.Duration
	userAgent      string
	remoteImages   bool
	htmlStyle      string
	highlightStyle string
	inlineImages   bool
	mathJaxURL     string
	extraCSS       string
	tagRules       []TagRule
}

// defaultTimeout bounds PDF generation when no timeout is specified.
// Three engine passes over a long notebook take a while.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the PDF generation timeout (LaTeX build or browser).
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nbconvert: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger used by every stage. Default: discard.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		c.log = l
	}
}

// WithAssetPath loads styles and template sets from dir, falling back to
// the embedded ones. Expected layout: dir/styles/*.css and
// dir/templates/<set>/{latex,html}.tmpl.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over
// WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = l
	}
}

// WithTemplate selects the template set overriding the base template
// (default "article"; "chapter" renders the body only).
func WithTemplate(name string) Option {
	return func(c *Converter) {
		c.cfg.templateSet = name
	}
}

// WithChapters maps # headings to \chapter in every markdown cell.
func WithChapters(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.chapters = enabled
	}
}

// WithFootnotes repeats the URL of every \href as a footnote in LaTeX
// results, so links survive printing.
func WithFootnotes(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.footnotes = enabled
	}
}

// WithLatexEngine sets the TeX engine (xelatex, pdflatex, lualatex).
func WithLatexEngine(engine string) Option {
	return func(c *Converter) {
		c.cfg.engine = engine
	}
}

// WithLatexRuns sets the number of engine passes (at least 1).
func WithLatexRuns(n int) Option {
	return func(c *Converter) {
		c.cfg.runs = n
	}
}

// WithBibStyle sets the \bibliographystyle of standalone documents.
func WithBibStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.bibStyle = style
	}
}

// WithFetchTimeout bounds each remote image download. Zero means no
// timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.fetchTimeout = d
	}
}

// WithUserAgent sets the User-Agent of remote image downloads.
func WithUserAgent(ua string) Option {
	return func(c *Converter) {
		c.cfg.userAgent = ua
	}
}

// WithRemoteImages controls whether remote markdown images are downloaded
// (default true). Disabled, remote references are left untouched.
func WithRemoteImages(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.remoteImages = enabled
	}
}

// WithHTMLStyle sets the stylesheet embedded in HTML results, by name or
// file path.
func WithHTMLStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.htmlStyle = style
	}
}

// WithHighlightStyle sets the chroma style of code cells.
func WithHighlightStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.highlightStyle = style
	}
}

// WithInlineImages controls whether local images of HTML results become
// base64 data URIs (default true).
func WithInlineImages(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.inlineImages = enabled
	}
}

// WithMathJax sets the MathJax script URL of HTML results. An empty URL
// disables MathJax.
func WithMathJax(url string) Option {
	return func(c *Converter) {
		c.cfg.mathJaxURL = url
	}
}

// WithExtraCSS appends CSS to HTML results.
func WithExtraCSS(css string) Option {
	return func(c *Converter) {
		c.cfg.extraCSS = css
	}
}

// WithTagRules appends literal replacements to the HTML tag rewrites.
func WithTagRules(rules ...TagRule) Option {
	return func(c *Converter) {
		c.cfg.tagRules = append(c.cfg.tagRules, rules...)
	}
}

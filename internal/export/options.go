package export

import (
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// DefaultMathJaxURL is the MathJax build loaded by HTML exports.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"

type settings struct {
	logger          *logger.Logger
	highlightStyle  string
	transcoder      pipeline.ImageTranscoder
	stylesheet      string
	extraCSS        string
	mathJaxURL      string
	inlineImages    bool
	chapterHeadings bool
}

func defaultSettings() settings {
	return settings{
		logger:         logger.Discard(),
		highlightStyle: pipeline.DefaultHighlightStyle,
		mathJaxURL:     DefaultMathJaxURL,
		inlineImages:   true,
	}
}

// Option configures an exporter.
type Option func(*settings)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHighlightStyle sets the chroma style used for code cells.
func WithHighlightStyle(style string) Option {
	return func(s *settings) {
		if style != "" {
			s.highlightStyle = style
		}
	}
}

// WithTranscoder sets the converter for SVG output figures. Without one,
// SVG outputs fall back to the next representation.
func WithTranscoder(t pipeline.ImageTranscoder) Option {
	return func(s *settings) {
		s.transcoder = t
	}
}

// WithStylesheet sets the CSS embedded in HTML exports.
func WithStylesheet(css string) Option {
	return func(s *settings) {
		s.stylesheet = css
	}
}

// WithExtraCSS appends user CSS to the head of HTML exports.
func WithExtraCSS(css string) Option {
	return func(s *settings) {
		s.extraCSS = css
	}
}

// WithMathJax sets the MathJax script URL. An empty URL disables MathJax.
func WithMathJax(url string) Option {
	return func(s *settings) {
		s.mathJaxURL = url
	}
}

// WithInlineImages controls whether local <img> sources in HTML exports are
// replaced by base64 data URIs.
func WithInlineImages(enabled bool) Option {
	return func(s *settings) {
		s.inlineImages = enabled
	}
}

// WithChapters makes markdown2latex map # headings to \chapter even when
// the template does not ask for it.
func WithChapters(enabled bool) Option {
	return func(s *settings) {
		s.chapterHeadings = enabled
	}
}

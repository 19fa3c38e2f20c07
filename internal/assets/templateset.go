package assets

// TemplateSet holds the block overrides applied on top of the base export
// templates. An empty field leaves the base template untouched for that
// format.
type TemplateSet struct {
	Name  string // Identifier (name or directory path)
	LaTeX string // text/template overrides for the LaTeX exporter
	HTML  string // html/template overrides for the HTML exporter
}

// Built-in template set names.
const (
	// BaseTemplateSetName holds the base templates every set extends.
	BaseTemplateSetName = "base"

	// ArticleTemplateSetName is a standalone document ready for compilation.
	ArticleTemplateSetName = "article"

	// ChapterTemplateSetName renders the body only, meant to be \input into
	// a larger document.
	ChapterTemplateSetName = "chapter"
)

// DefaultTemplateSetName is the template set used when none is configured.
const DefaultTemplateSetName = ArticleTemplateSetName

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "notebook"

// Template file names inside a template set directory.
const (
	LaTeXTemplateFile = "latex.tmpl"
	HTMLTemplateFile  = "html.tmpl"
)

// Package export renders rewritten notebooks through block-based templates.
//
// The LaTeX exporter uses text/template with ((* *)) delimiters so LaTeX
// braces never collide with actions; the HTML exporter uses html/template.
// Both parse the base templates first and then the overrides of a template
// set, so a set only redefines the blocks it changes.
//
// Templates see a Document: document-level settings plus one Cell per
// notebook cell. Each code cell output carries the single representation
// chosen for the target format. Figures are extracted to Resources for
// LaTeX and embedded as data URIs for HTML.
//
// Template functions:
//
//	markdown2latex      Markdown to LaTeX ("chapters" option shifts headings)
//	markdown2html       Markdown to HTML with math left for MathJax
//	citation2latex      <cite data-cite="key"> to \cite{key}
//	strip_files_prefix  drop "files/" link prefixes
//	highlight_code      chroma highlighting (Verbatim or HTML)
//	escape_latex        escape LaTeX special characters
//	escape_verbatim     escape Verbatim command characters
//	strip_ansi          drop terminal escape sequences
//	raw_html            emit raw cell source unescaped (HTML only)
//	posix_path          forward-slash paths
package export

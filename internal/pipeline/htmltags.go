package pipeline

import (
	"context"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

// TagRule is a single literal substitution applied to markdown cells.
type TagRule struct {
	Old string
	New string
}

// DefaultTagRules converts the semantic HTML used in notebooks into LaTeX.
// Order matters: class-specific spans come before the generic </span>.
// List items become \item without an enclosing itemize environment.
var DefaultTagRules = []TagRule{
	{Old: `<span class="todecide">`, New: "\\begin{comment}\nTODECIDE\n"},
	{Old: `<span class="todo">`, New: "\\begin{comment}\nTODO\n"},
	{Old: `</span>`, New: "\n\\end{comment}\n"},
	{Old: `<div class="summary">`, New: `\begin{keypointbox}`},
	{Old: `</div>`, New: `\end{keypointbox}`},
	{Old: `<li>`, New: `\item `},
	{Old: `</li>`, New: ``},
	{Old: `<ul>`, New: ``},
	{Old: `</ul>`, New: ``},
}

// TagRewriter applies ordered literal replacements to markdown cells.
// No HTML parsing happens: malformed input yields malformed LaTeX.
type TagRewriter struct {
	Rules []TagRule
}

// NewTagRewriter returns a rewriter with DefaultTagRules.
func NewTagRewriter() *TagRewriter {
	return &TagRewriter{Rules: DefaultTagRules}
}

// Rewrite applies the rules to every markdown cell of nb.
func (r *TagRewriter) Rewrite(ctx context.Context, nb *notebook.Notebook) error {
	for _, cell := range nb.Cells {
		if cell.Type != notebook.CellMarkdown {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cell.SetSource(r.Apply(cell.String()))
	}
	return nil
}

// Apply runs every rule over s in order.
func (r *TagRewriter) Apply(s string) string {
	for _, rule := range r.Rules {
		s = strings.ReplaceAll(s, rule.Old, rule.New)
	}
	return s
}

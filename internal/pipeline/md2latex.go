package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LaTeXConverter abstracts Markdown to LaTeX conversion.
type LaTeXConverter interface {
	ToLaTeX(ctx context.Context, content string) (string, error)
}

// CodeHighlighter renders a code block as LaTeX.
type CodeHighlighter interface {
	HighlightLaTeX(code, language string) (string, error)
}

// Section commands by heading level.
var (
	chapterSections = []string{"chapter", "section", "subsection", "subsubsection", "paragraph", "subparagraph"}
	articleSections = []string{"section", "subsection", "subsubsection", "paragraph", "subparagraph", "subparagraph"}
)

var lineBreakTag = regexp.MustCompile(`(?i)^<br\s*/?>$`)

// GoldmarkLaTeXConverter parses Markdown with goldmark and renders the
// resulting tree as LaTeX. Raw LaTeX in the Markdown (math, commands)
// passes through unchanged.
type GoldmarkLaTeXConverter struct {
	md          goldmark.Markdown
	chapters    bool
	highlighter CodeHighlighter
}

// LaTeXOption configures a GoldmarkLaTeXConverter.
type LaTeXOption func(*GoldmarkLaTeXConverter)

// WithChapters maps top-level headings to \chapter instead of \section.
func WithChapters(enabled bool) LaTeXOption {
	return func(c *GoldmarkLaTeXConverter) {
		c.chapters = enabled
	}
}

// WithCodeHighlighter sets the renderer for fenced code blocks.
func WithCodeHighlighter(h CodeHighlighter) LaTeXOption {
	return func(c *GoldmarkLaTeXConverter) {
		c.highlighter = h
	}
}

// NewGoldmarkLaTeXConverter creates a converter with GFM extensions.
func NewGoldmarkLaTeXConverter(opts ...LaTeXOption) *GoldmarkLaTeXConverter {
	c := &GoldmarkLaTeXConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		highlighter: NewHighlighter(DefaultHighlightStyle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToLaTeX converts a Markdown fragment to a LaTeX fragment.
func (c *GoldmarkLaTeXConverter) ToLaTeX(ctx context.Context, content string) (string, error) {
	return convertCtx(ctx, content, c.convert)
}

// Convert is the synchronous form of ToLaTeX, used from templates.
func (c *GoldmarkLaTeXConverter) Convert(content string) (string, error) {
	return c.convert(content)
}

func (c *GoldmarkLaTeXConverter) convert(content string) (string, error) {
	raw := &rawLaTeX{}
	src := []byte(raw.Protect(NormalizeLineEndings(content)))
	doc := c.md.Parser().Parse(text.NewReader(src))

	w := &latexWriter{
		src:         src,
		sections:    articleSections,
		highlighter: c.highlighter,
	}
	if c.chapters {
		w.sections = chapterSections
	}
	if err := ast.Walk(doc, w.walk); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLatexConversion, err)
	}

	out := raw.Restore(w.buf.String())
	return strings.TrimSpace(CompressBlankLines(out)) + "\n", nil
}

// latexWriter renders a goldmark AST as LaTeX.
type latexWriter struct {
	buf         bytes.Buffer
	src         []byte
	sections    []string
	highlighter CodeHighlighter
}

func (w *latexWriter) write(s string) {
	w.buf.WriteString(s)
}

// ensureNewline terminates the current line if output does not end with one.
func (w *latexWriter) ensureNewline() {
	if b := w.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		w.buf.WriteByte('\n')
	}
}

func (w *latexWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Document:

	case *ast.Heading:
		if entering {
			w.ensureNewline()
			w.write(`\` + w.section(n.Level) + `{`)
			return ast.WalkContinue, nil
		}
		w.write("}")
		if id, ok := n.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok && len(b) > 0 {
				w.write(`\label{` + string(b) + `}`)
			}
		}
		w.write("\n\n")

	case *ast.Paragraph:
		if !entering {
			w.write("\n\n")
		}

	case *ast.TextBlock:
		if !entering {
			w.ensureNewline()
		}

	case *ast.List:
		env := "itemize"
		if n.IsOrdered() {
			env = "enumerate"
		}
		if entering {
			w.ensureNewline()
			w.write(`\begin{` + env + "}\n")
			if n.IsOrdered() && n.Start > 1 {
				w.write(`\setcounter{enumi}{` + strconv.Itoa(n.Start-1) + "}\n")
			}
			return ast.WalkContinue, nil
		}
		w.ensureNewline()
		w.write(`\end{` + env + "}\n\n")

	case *ast.ListItem:
		if entering {
			w.ensureNewline()
			w.write(`\item `)
			return ast.WalkContinue, nil
		}
		w.ensureNewline()

	case *ast.Blockquote:
		if entering {
			w.ensureNewline()
			w.write("\\begin{quote}\n")
			return ast.WalkContinue, nil
		}
		w.ensureNewline()
		w.write("\\end{quote}\n\n")

	case *ast.FencedCodeBlock:
		if entering {
			if err := w.codeBlock(n, string(n.Language(w.src))); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			if err := w.codeBlock(n, ""); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		// Raw HTML has no LaTeX rendering; LaTeX embedded in it survives.
		if entering {
			var block strings.Builder
			w.linesTo(&block, n.Lines())
			if n.HasClosure() {
				block.Write(n.ClosureLine.Value(w.src))
			}
			for _, p := range rawPlaceholder.FindAllString(block.String(), -1) {
				w.ensureNewline()
				w.write(p + "\n")
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			w.ensureNewline()
			w.write("\\begin{center}\\rule{0.5\\linewidth}{0.5pt}\\end{center}\n\n")
		}

	case *ast.Text:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.write(EscapeLaTeX(unescapeMarkdown(n.Segment.Value(w.src))))
		switch {
		case n.HardLineBreak():
			w.write("\\\\\n")
		case n.SoftLineBreak():
			w.write("\n")
		}

	case *ast.String:
		if entering {
			if n.IsRaw() {
				w.write(string(n.Value))
			} else {
				w.write(EscapeLaTeX(string(n.Value)))
			}
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				switch t := c.(type) {
				case *ast.Text:
					code.Write(t.Segment.Value(w.src))
				case *ast.String:
					code.Write(t.Value)
				}
			}
			w.write(`\texttt{` + EscapeLaTeX(code.String()) + `}`)
		}
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		cmd := `\emph{`
		if n.Level >= 2 {
			cmd = `\textbf{`
		}
		if entering {
			w.write(cmd)
		} else {
			w.write("}")
		}

	case *ast.Link:
		dest := string(n.Destination)
		if entering {
			if strings.HasPrefix(dest, "#") {
				w.write(`\hyperref[` + dest[1:] + `]{`)
			} else {
				w.write(`\href{` + EscapeURL(dest) + `}{`)
			}
			return ast.WalkContinue, nil
		}
		w.write("}")

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(w.src))
			label := string(n.Label(w.src))
			if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
				url = "mailto:" + url
			}
			w.write(`\href{` + EscapeURL(url) + `}{\nolinkurl{` + EscapeURL(label) + `}}`)
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image:
		dest := string(n.Destination)
		if strings.Contains(dest, "://") {
			if entering {
				w.write(`\href{` + EscapeURL(dest) + `}{`)
				return ast.WalkContinue, nil
			}
			w.write("}")
			return ast.WalkContinue, nil
		}
		if entering {
			w.ensureNewline()
			w.write(AdjustImage(dest))
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			var tag strings.Builder
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				tag.Write(seg.Value(w.src))
			}
			if lineBreakTag.MatchString(strings.TrimSpace(tag.String())) {
				w.write("\\newline{}\n")
			}
		}
		return ast.WalkSkipChildren, nil

	case *east.Table:
		if entering {
			w.ensureNewline()
			w.write(`\begin{longtable}[]{@{}` + columnSpec(n.Alignments) + "@{}}\n\\toprule\n")
			return ast.WalkContinue, nil
		}
		w.write("\\bottomrule\n\\end{longtable}\n\n")

	case *east.TableHeader:
		if !entering {
			w.write(" \\\\\n\\midrule\n\\endhead\n")
		}

	case *east.TableRow:
		if !entering {
			w.write(" \\\\\n")
		}

	case *east.TableCell:
		if entering && n.PreviousSibling() != nil {
			w.write(" & ")
		}

	case *east.Strikethrough:
		if entering {
			w.write(`\sout{`)
		} else {
			w.write("}")
		}

	case *east.TaskCheckBox:
		if entering {
			if n.IsChecked {
				w.write(`$\boxtimes$ `)
			} else {
				w.write(`$\square$ `)
			}
		}
	}
	return ast.WalkContinue, nil
}

func (w *latexWriter) section(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(w.sections) {
		level = len(w.sections)
	}
	return w.sections[level-1]
}

func (w *latexWriter) codeBlock(n ast.Node, language string) error {
	var code strings.Builder
	w.linesTo(&code, n.Lines())

	w.ensureNewline()
	if w.highlighter == nil {
		w.write("\\begin{verbatim}\n" + code.String())
		w.ensureNewline()
		w.write("\\end{verbatim}\n\n")
		return nil
	}
	out, err := w.highlighter.HighlightLaTeX(code.String(), language)
	if err != nil {
		return err
	}
	w.write(out)
	w.ensureNewline()
	w.write("\n")
	return nil
}

func (w *latexWriter) linesTo(b *strings.Builder, lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}
}

// columnSpec maps GFM column alignments to a longtable column spec.
func columnSpec(aligns []east.Alignment) string {
	var b strings.Builder
	for _, a := range aligns {
		switch a {
		case east.AlignCenter:
			b.WriteByte('c')
		case east.AlignRight:
			b.WriteByte('r')
		default:
			b.WriteByte('l')
		}
	}
	return b.String()
}

// unescapeMarkdown resolves backslash escapes and character references.
func unescapeMarkdown(v []byte) string {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

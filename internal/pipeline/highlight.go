package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used for code cells.
const DefaultHighlightStyle = "friendly"

// verbatimEscaper escapes the command characters of a
// Verbatim[commandchars=\\\{\}] environment.
var verbatimEscaper = strings.NewReplacer(
	`\`, `\char92{}`,
	`{`, `\char123{}`,
	`}`, `\char125{}`,
)

// EscapeVerbatim escapes s for a Verbatim environment with command chars.
func EscapeVerbatim(s string) string {
	return verbatimEscaper.Replace(s)
}

// Highlighter renders source code with chroma, as LaTeX or HTML.
type Highlighter struct {
	style *chroma.Style
	html  *chromahtml.Formatter
}

// NewHighlighter returns a Highlighter using the named chroma style.
// Unknown names fall back to chroma's default style.
func NewHighlighter(style string) *Highlighter {
	return &Highlighter{
		style: styles.Get(style),
		html:  chromahtml.New(chromahtml.WithClasses(true)),
	}
}

// lexerFor resolves a notebook language name to a chroma lexer.
func lexerFor(language string) chroma.Lexer {
	name := strings.ToLower(strings.TrimSpace(language))
	if strings.HasPrefix(name, "ipython") {
		name = "python"
	}
	lexer := lexers.Get(name)
	if name == "" || lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// HighlightLaTeX renders code as a fancyvrb Verbatim block with colored tokens.
func (h *Highlighter) HighlightLaTeX(code, language string) (string, error) {
	it, err := lexerFor(language).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenizing %s code: %w", language, err)
	}
	var b strings.Builder
	if err := (latexFormatter{}).Format(&b, h.style, it); err != nil {
		return "", err
	}
	return b.String(), nil
}

// HighlightHTML renders code as HTML with chroma CSS classes.
func (h *Highlighter) HighlightHTML(code, language string) (string, error) {
	it, err := lexerFor(language).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenizing %s code: %w", language, err)
	}
	var b strings.Builder
	if err := h.html.Format(&b, h.style, it); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteCSS writes the stylesheet matching HighlightHTML output.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.html.WriteCSS(w, h.style)
}

// latexFormatter is a chroma.Formatter emitting a Verbatim environment.
// Every line is wrapped on its own since fancyvrb processes line by line.
type latexFormatter struct{}

var _ chroma.Formatter = latexFormatter{}

func (latexFormatter) Format(w io.Writer, style *chroma.Style, it chroma.Iterator) error {
	var b strings.Builder
	b.WriteString("\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n")

	lines := chroma.SplitTokensIntoLines(it.Tokens())
	for _, line := range lines {
		for _, tok := range line {
			value := strings.TrimRight(tok.Value, "\n")
			if value == "" {
				continue
			}
			b.WriteString(styleToken(style.Get(tok.Type), EscapeVerbatim(value)))
		}
		b.WriteByte('\n')
	}
	// A trailing empty line comes from the final newline of the code.
	out := strings.TrimRight(b.String(), "\n") + "\n"
	out += "\\end{Verbatim}\n"

	_, err := io.WriteString(w, out)
	return err
}

func styleToken(entry chroma.StyleEntry, s string) string {
	if entry.Colour.IsSet() {
		s = `\textcolor[HTML]{` + strings.ToUpper(strings.TrimPrefix(entry.Colour.String(), "#")) + `}{` + s + `}`
	}
	if entry.Bold == chroma.Yes {
		s = `\textbf{` + s + `}`
	}
	if entry.Italic == chroma.Yes {
		s = `\textit{` + s + `}`
	}
	return s
}

package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Raw LaTeX placeholders use Unicode Private Use Area characters.
// They pass through Goldmark as plain text and survive escaping untouched.
const (
	RawStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	RawEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

var rawPlaceholder = regexp.MustCompile("\uE000([0-9]+)\uE001")

// latexEscaper escapes LaTeX special characters in running text.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// urlEscaper escapes the characters \href and \url cannot take verbatim.
var urlEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`#`, `\#`,
	`%`, `\%`,
	`{`, `\{`,
	`}`, `\}`,
)

// EscapeLaTeX escapes s for use as LaTeX running text.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// EscapeURL escapes s for use as the first argument of \href or \url.
func EscapeURL(s string) string {
	return urlEscaper.Replace(s)
}

// Environments kept verbatim, content included.
var mathEnvironments = map[string]bool{
	"equation":    true,
	"align":       true,
	"alignat":     true,
	"gather":      true,
	"multline":    true,
	"flalign":     true,
	"eqnarray":    true,
	"displaymath": true,
	"math":        true,
	"split":       true,
}

// rawLaTeX swaps raw LaTeX fragments embedded in markdown for placeholders
// before parsing, and swaps them back after rendering.
type rawLaTeX struct {
	saved    []string
	mathOnly bool // keep commands outside math for the markdown parser
}

func (r *rawLaTeX) hold(s string) string {
	r.saved = append(r.saved, s)
	return RawStartPlaceholder + strconv.Itoa(len(r.saved)-1) + RawEndPlaceholder
}

// Restore replaces every placeholder in s with the fragment it stands for.
func (r *rawLaTeX) Restore(s string) string {
	if len(r.saved) == 0 {
		return s
	}
	return rawPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := rawPlaceholder.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil || n >= len(r.saved) {
			return m
		}
		return r.saved[n]
	})
}

// RestoreHTML is Restore with every fragment HTML-escaped.
func (r *rawLaTeX) RestoreHTML(s string) string {
	for i, frag := range r.saved {
		r.saved[i] = html.EscapeString(frag)
	}
	return r.Restore(s)
}

// Protect replaces math and LaTeX commands in markdown with placeholders.
// Fenced code blocks and code spans are left untouched.
func (r *rawLaTeX) Protect(md string) string {
	var b strings.Builder
	b.Grow(len(md))

	lines := strings.SplitAfter(md, "\n")
	var (
		fence   string
		pending strings.Builder
	)
	flush := func() {
		if pending.Len() > 0 {
			b.WriteString(r.protectInline(pending.String()))
			pending.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			b.WriteString(line)
			if strings.HasPrefix(strings.TrimSpace(trimmed), fence) {
				fence = ""
			}
			continue
		}
		if f := fenceOpener(trimmed); f != "" && len(line)-len(trimmed) < 4 {
			flush()
			fence = f
			b.WriteString(line)
			continue
		}
		pending.WriteString(line)
	}
	flush()
	return b.String()
}

// fenceOpener returns the fence marker when line opens a code fence.
func fenceOpener(line string) string {
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == c {
			n++
		}
		if n >= 3 {
			return line[:n]
		}
	}
	return ""
}

func (r *rawLaTeX) protectInline(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		switch s[i] {
		case '`':
			end := skipCodeSpan(s, i)
			b.WriteString(s[i:end])
			i = end

		case '$':
			if end := mathEnd(s, i); end > i {
				b.WriteString(r.hold(s[i:end]))
				i = end
				continue
			}
			b.WriteByte('$')
			i++

		case '\\':
			end := commandEnd(s, i)
			if r.mathOnly && !isMathCommand(s[i:max(end, i)]) {
				end = -1
			}
			if end > i {
				b.WriteString(r.hold(s[i:end]))
				i = end
				continue
			}
			// Markdown escape such as \_ or \*: keep both bytes.
			if i+1 < len(s) {
				b.WriteString(s[i : i+2])
				i += 2
				continue
			}
			b.WriteByte('\\')
			i++

		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// skipCodeSpan returns the index just past the code span opening at i,
// or past the backtick run when it is never closed.
func skipCodeSpan(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	run := s[i : i+n]
	for j := i + n; j < len(s); {
		k := strings.Index(s[j:], run)
		if k < 0 {
			break
		}
		k += j
		m := 0
		for k+m < len(s) && s[k+m] == '`' {
			m++
		}
		if m == n {
			return k + n
		}
		j = k + m
	}
	return i + n
}

// mathEnd returns the end of a $...$ or $$...$$ span starting at i, or -1.
// Inline math follows the usual rules: no space after the opening dollar,
// none before the closing one, and no digit right after it.
func mathEnd(s string, i int) int {
	if strings.HasPrefix(s[i:], "$$") {
		if k := strings.Index(s[i+2:], "$$"); k >= 0 {
			return i + 2 + k + 2
		}
		return -1
	}

	if i+1 >= len(s) || isSpace(s[i+1]) || s[i+1] == '$' {
		return -1
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			if j+1 < len(s) && s[j+1] == '\n' {
				return -1
			}
		case '$':
			if isSpace(s[j-1]) {
				continue
			}
			if j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9' {
				continue
			}
			return j + 1
		}
	}
	return -1
}

// commandEnd returns the end of the LaTeX construct starting with the
// backslash at i, or -1 when it is a markdown escape.
func commandEnd(s string, i int) int {
	if i+1 >= len(s) {
		return -1
	}

	switch s[i+1] {
	case '(':
		if k := strings.Index(s[i+2:], `\)`); k >= 0 {
			return i + 2 + k + 2
		}
		return -1
	case '[':
		if k := strings.Index(s[i+2:], `\]`); k >= 0 {
			return i + 2 + k + 2
		}
		return -1
	}

	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	if j == i+1 {
		return -1
	}
	name := s[i+1 : j]
	if j < len(s) && s[j] == '*' {
		j++
	}

	if name == "begin" {
		if env, end := groupBody(s, j); end > 0 && mathEnvironments[strings.TrimSuffix(env, "*")] {
			closing := `\end{` + env + `}`
			if k := strings.Index(s[end:], closing); k >= 0 {
				return end + k + len(closing)
			}
		}
	}

	for j < len(s) && (s[j] == '{' || s[j] == '[') {
		end := matchGroup(s, j)
		if end < 0 {
			break
		}
		j = end
	}
	return j
}

// isMathCommand reports whether a protected construct is math.
func isMathCommand(s string) bool {
	if strings.HasPrefix(s, `\(`) || strings.HasPrefix(s, `\[`) {
		return true
	}
	return strings.HasPrefix(s, `\begin{`) && strings.Contains(s, `\end{`)
}

// groupBody returns the content and end of a {...} group at i.
func groupBody(s string, i int) (string, int) {
	if i >= len(s) || s[i] != '{' {
		return "", -1
	}
	end := matchGroup(s, i)
	if end < 0 {
		return "", -1
	}
	return s[i+1 : end-1], end
}

// matchGroup returns the index past the bracket closing the one at i.
func matchGroup(s string, i int) int {
	open := s[i]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Opening tag carrying a data-cite attribute: <cite data-cite="key">
	dataCiteOpen = regexp.MustCompile(`(?i)<([a-z][a-z0-9]*)\b[^>]*?\sdata-cite\s*=\s*["']([^"']*)["'][^>]*?(/?)>`)

	// "files/" prefixes in HTML attributes and markdown link targets
	filesPrefixAttr     = regexp.MustCompile(`(?i)(\s(?:src|href)\s*=\s*["'])/?files/`)
	filesPrefixMarkdown = regexp.MustCompile(`(\]\(\s*<?)/?files/`)

	// \href{url}{text} in rendered LaTeX
	hrefPattern = regexp.MustCompile(`(\\href\{([^}]*)\}\{[^}]*\})`)
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// CompressBlankLines limits consecutive blank lines to 2 maximum.
func CompressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// Citation2LaTeX replaces HTML elements carrying a data-cite attribute with
// \cite{key}. The element content is dropped; nesting of the same tag inside
// a citation is not supported.
func Citation2LaTeX(s string) string {
	var b strings.Builder
	for {
		loc := dataCiteOpen.FindStringSubmatchIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}

		tag := strings.ToLower(s[loc[2]:loc[3]])
		key := s[loc[4]:loc[5]]
		selfClosing := loc[7] > loc[6]

		b.WriteString(s[:loc[0]])
		b.WriteString(`\cite{` + key + `}`)
		s = s[loc[1]:]

		if selfClosing {
			continue
		}
		closing := "</" + tag + ">"
		if idx := strings.Index(strings.ToLower(s), closing); idx >= 0 {
			s = s[idx+len(closing):]
		}
	}
}

// StripFilesPrefix removes the "files/" prefix notebook servers add to
// attachment paths in HTML attributes and markdown links.
func StripFilesPrefix(s string) string {
	s = filesPrefixAttr.ReplaceAllString(s, "${1}")
	return filesPrefixMarkdown.ReplaceAllString(s, "${1}")
}

// AddHrefFootnotes appends a footnote with the raw URL after every \href,
// so printed copies keep the link target.
func AddHrefFootnotes(latex string) string {
	return hrefPattern.ReplaceAllString(latex, `${1}\footnote{\url{${2}}}`)
}

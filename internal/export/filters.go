package export

import (
	"encoding/base64"
	"path/filepath"
	"regexp"
	"strings"
)

// ansiEscape matches CSI and OSC terminal sequences in stream and traceback
// text.
var ansiEscape = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\))`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// PosixPath converts OS path separators to forward slashes.
func PosixPath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}

// stripWhitespace removes the line breaks base64 payloads are wrapped with.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

func base64Std(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

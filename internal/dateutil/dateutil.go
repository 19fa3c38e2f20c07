// Package dateutil resolves the document date setting ("auto", "auto:FORMAT"
// or a literal date) into the text printed under the title.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// Auto is the date value replaced by the conversion date.
const Auto = "auto"

// DefaultDateFormat matches what LaTeX prints for \today.
const DefaultDateFormat = "MMMM D, YYYY"

// Presets provides named shortcuts for common date formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// layouts maps a token letter and run length to its Go layout, longest first.
var layouts = map[byte][]struct {
	n      int
	layout string
}{
	'Y': {{4, "2006"}, {2, "06"}},
	'M': {{4, "January"}, {3, "Jan"}, {2, "01"}, {1, "1"}},
	'D': {{2, "02"}, {1, "2"}},
}

// Layout converts a format such as "DD/MM/YYYY" into a Go time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text inside brackets is copied
// literally ("[Week of] MMM D"); other characters are kept as they are.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		c := format[i]

		if c == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		candidates, ok := layouts[c]
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}

		run := 1
		for i+run < len(format) && format[i+run] == c {
			run++
		}
		consumed := 0
		for _, cand := range candidates {
			if cand.n <= run {
				b.WriteString(cand.layout)
				consumed = cand.n
				break
			}
		}
		if consumed == 0 {
			// A lone Y is not a token.
			b.WriteByte(c)
			consumed = 1
		}
		i += consumed
	}
	return b.String(), nil
}

// Resolve returns value with "auto" and "auto:FORMAT" replaced by now in the
// given format; FORMAT may name a preset. Any other value is returned as is.
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, Auto) {
		return value, nil
	}

	format := DefaultDateFormat
	if lower != Auto {
		rest, ok := strings.CutPrefix(value[len(Auto):], ":")
		if !ok {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		if rest == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		format = rest
		if preset, ok := Presets[strings.ToLower(rest)]; ok {
			format = preset
		}
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/bibtex"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

// CitationMap maps cite2c keys to bibliography keys.
type CitationMap map[string]string

// BuildCitationMap matches every cite2c citation to at most one bibliography
// entry, by normalized title or by URL. A citation matching several entries
// aborts with ErrAmbiguousCitation; one matching none stays unmapped.
func BuildCitationMap(cites map[string]notebook.Citation, entries []bibtex.Entry, log *logger.Logger) (CitationMap, error) {
	if log == nil {
		log = logger.Discard()
	}
	out := make(CitationMap, len(cites))

	keys := make([]string, 0, len(cites))
	for k := range cites {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cite := cites[key]
		if cite.URL == "" {
			log.CitationWithoutURL(key, cite.Title)
		}

		var matched []string
		for _, e := range entries {
			if citationMatches(cite, e) {
				matched = append(matched, e.Key)
			}
		}

		switch len(matched) {
		case 0:
		case 1:
			out[key] = matched[0]
			log.CitationMatched(key, matched[0])
		default:
			return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguousCitation, key, strings.Join(matched, ", "))
		}
	}
	return out, nil
}

// citationMatches reports whether a cite2c entry and a bibliography entry
// describe the same work.
func citationMatches(c notebook.Citation, e bibtex.Entry) bool {
	if title := NormalizeTitle(c.Title); title != "" && title == NormalizeTitle(e.Title) {
		return true
	}
	if c.URL == "" {
		return false
	}
	return c.URL == e.Link || c.URL == e.URL
}

// NormalizeTitle drops BibTeX grouping braces and collapses whitespace.
func NormalizeTitle(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Apply replaces cite2c keys with bibliography keys in every markdown cell.
// Longer keys are substituted first so a key that prefixes another cannot
// corrupt it.
func (m CitationMap) Apply(ctx context.Context, nb *notebook.Notebook) error {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	r := strings.NewReplacer(pairs...)

	for _, cell := range nb.Cells {
		if cell.Type != notebook.CellMarkdown {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cell.SetSource(r.Replace(cell.String()))
	}
	return nil
}

// Package bibtex loads bibliography entries for citation matching.
package bibtex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickng/bibtex"
)

// Sentinel errors for bibliography loading.
var (
	ErrRead  = errors.New("failed to read bibliography")
	ErrParse = errors.New("failed to parse bibliography")
)

// Entry is the subset of a BibTeX record used to match citations.
type Entry struct {
	Key   string // citation key, e.g. "schirrmeister2017deep"
	Type  string // entry type, lowercased, e.g. "article"
	Title string
	Link  string // "link" field (Zotero/BibDesk exports)
	URL   string // "url" field
}

// Load reads and parses the bibliography at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided bibliography path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes BibTeX from r. Field names are matched case-insensitively.
func Parse(r io.Reader) ([]Entry, error) {
	bib, err := bibtex.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]Entry, 0, len(bib.Entries))
	for _, e := range bib.Entries {
		if e == nil {
			continue
		}
		fields := make(map[string]string, len(e.Fields))
		for name, value := range e.Fields {
			if value == nil {
				continue
			}
			fields[strings.ToLower(name)] = strings.TrimSpace(value.String())
		}
		entries = append(entries, Entry{
			Key:   e.CiteName,
			Type:  strings.ToLower(e.Type),
			Title: fields["title"],
			Link:  fields["link"],
			URL:   fields["url"],
		})
	}
	return entries, nil
}

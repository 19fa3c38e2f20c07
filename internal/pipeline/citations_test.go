package pipeline

// Notes:
// - Entries are built in memory; BibTeX parsing is covered in internal/bibtex
// - A nil logger is valid and discards output

import (
	"context"
	"errors"
	"testing"

	"github.com/robintibor/convert-notebook-to-latex/internal/bibtex"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

var testEntries = []bibtex.Entry{
	{Key: "schirrmeister2017deep", Title: "Deep learning with {C}onvolutional neural networks", URL: "https://doi.org/10.1002/hbm.23730"},
	{Key: "he2016resnet", Title: "Deep Residual Learning", Link: "https://arxiv.org/abs/1512.03385"},
	{Key: "dup1", Title: "Same Title"},
	{Key: "dup2", Title: "Same  Title"},
}

func TestBuildCitationMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cite  notebook.Citation
		want  string
		found bool
	}{
		{
			name:  "title match ignores braces",
			cite:  notebook.Citation{Key: "c1", Title: "Deep learning with Convolutional neural networks"},
			want:  "schirrmeister2017deep",
			found: true,
		},
		{
			name:  "url matches link field",
			cite:  notebook.Citation{Key: "c2", Title: "Something else", URL: "https://arxiv.org/abs/1512.03385"},
			want:  "he2016resnet",
			found: true,
		},
		{
			name:  "url matches url field",
			cite:  notebook.Citation{Key: "c3", URL: "https://doi.org/10.1002/hbm.23730"},
			want:  "schirrmeister2017deep",
			found: true,
		},
		{
			name:  "no match stays unmapped",
			cite:  notebook.Citation{Key: "c4", Title: "Unknown paper"},
			found: false,
		},
		{
			name:  "empty title never matches",
			cite:  notebook.Citation{Key: "c5"},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := BuildCitationMap(map[string]notebook.Citation{tt.cite.Key: tt.cite}, testEntries[:2], nil)
			if err != nil {
				t.Fatalf("BuildCitationMap() error = %v", err)
			}
			got, ok := m[tt.cite.Key]
			if ok != tt.found || got != tt.want {
				t.Errorf("map[%q] = %q, %v; want %q, %v", tt.cite.Key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestBuildCitationMap_Ambiguous(t *testing.T) {
	t.Parallel()

	cites := map[string]notebook.Citation{"c1": {Key: "c1", Title: "Same Title"}}
	_, err := BuildCitationMap(cites, testEntries, nil)
	if !errors.Is(err, ErrAmbiguousCitation) {
		t.Fatalf("BuildCitationMap() error = %v, want ErrAmbiguousCitation", err)
	}
}

func TestBuildCitationMap_EntryCountsOnce(t *testing.T) {
	t.Parallel()

	// Title and URL both match the same entry.
	cites := map[string]notebook.Citation{"c1": {
		Key:   "c1",
		Title: "Deep Residual Learning",
		URL:   "https://arxiv.org/abs/1512.03385",
	}}
	m, err := BuildCitationMap(cites, testEntries, nil)
	if err != nil {
		t.Fatalf("BuildCitationMap() error = %v", err)
	}
	if m["c1"] != "he2016resnet" {
		t.Errorf("map = %v", m)
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"{Deep} Learning", "Deep Learning"},
		{"  spaced\n  out ", "spaced out"},
		{"{{Nested}}", "Nested"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCitationMap_Apply(t *testing.T) {
	t.Parallel()

	m := CitationMap{
		"zotero/1":  "short",
		"zotero/10": "long",
	}
	nb := &notebook.Notebook{Cells: []*notebook.Cell{
		{Type: notebook.CellMarkdown, Source: `<cite data-cite="zotero/10"></cite> and <cite data-cite="zotero/1"></cite>`},
		{Type: notebook.CellCode, Source: "zotero/1"},
	}}

	if err := m.Apply(context.Background(), nb); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := `<cite data-cite="long"></cite> and <cite data-cite="short"></cite>`
	if got := nb.Cells[0].String(); got != want {
		t.Errorf("markdown = %q, want %q", got, want)
	}
	if got := nb.Cells[1].String(); got != "zotero/1" {
		t.Errorf("code cell modified: %q", got)
	}
}

func TestCitationMap_ApplyEmpty(t *testing.T) {
	t.Parallel()

	nb := &notebook.Notebook{Cells: []*notebook.Cell{{Type: notebook.CellMarkdown, Source: "x"}}}
	if err := CitationMap(nil).Apply(context.Background(), nb); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if nb.Cells[0].String() != "x" {
		t.Error("empty map must not modify cells")
	}
}

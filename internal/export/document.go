package export

import (
	"html/template"
	"strconv"

	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

// Info holds the document-level settings of an export.
type Info struct {
	Name         string   // notebook base name, prefixes resource keys
	Title        string   // falls back to notebook metadata, then Name
	Authors      []string // falls back to notebook metadata
	Date         string   // printed verbatim; empty prints no date
	Geometry     string   // options for the LaTeX geometry package
	Bibliography string   // bibliography base name without .bib
	BibStyle     string   // bibtex style, DefaultBibStyle when empty
}

// DefaultBibStyle is the bibtex style used when Info.BibStyle is empty.
const DefaultBibStyle = "unsrt"

// Document is the root value templates are executed with.
type Document struct {
	Info
	Language   string
	Cells      []Cell
	Style      template.CSS // HTML only
	MathJaxURL string       // HTML only
}

// Cell is the template view of a notebook cell.
type Cell struct {
	Index          int
	Type           string
	Source         string
	Language       string
	ExecutionCount int
	Raw            bool // raw cell targeting the export format
	Outputs        []Output
}

// Output is the template view of a code cell output, reduced to the one
// representation chosen for the target format.
type Output struct {
	Index          int
	Type           string
	Name           string        // stream name
	Text           string        // stream text
	MIME           string        // chosen MIME type, empty when nothing was usable
	Data           string        // textual payload of MIME
	Figure         string        // LaTeX: resource key of the extracted figure
	Image          template.URL  // HTML: data URI of an image output
	Markup         template.HTML // HTML: trusted markup (text/html, SVG)
	ExecutionCount int
	Traceback      []string
}

// outputChooser fills the representation of an output for one format.
type outputChooser func(cell, index int, o *notebook.Output, out *Output)

// newDocument builds the template view of nb. Raw cells are kept when their
// format is unset or listed in rawFormats.
func newDocument(nb *notebook.Notebook, info Info, rawFormats []string, choose outputChooser) *Document {
	if info.Title == "" {
		info.Title = nb.Metadata.Title()
	}
	if info.Title == "" {
		info.Title = info.Name
	}
	if len(info.Authors) == 0 {
		info.Authors = nb.Metadata.Authors()
	}
	if info.BibStyle == "" {
		info.BibStyle = DefaultBibStyle
	}

	doc := &Document{
		Info:     info,
		Language: nb.Metadata.Language(),
		Cells:    make([]Cell, 0, len(nb.Cells)),
	}

	for i, c := range nb.Cells {
		cell := Cell{
			Index:          i,
			Type:           c.Type,
			Source:         c.String(),
			Language:       doc.Language,
			ExecutionCount: derefCount(c.ExecutionCount),
		}

		switch c.Type {
		case notebook.CellRaw:
			cell.Raw = acceptsRaw(c.RawFormat(), rawFormats)
		case notebook.CellCode:
			for j, o := range c.Outputs {
				out := Output{
					Index:          j,
					Type:           o.OutputType,
					Name:           o.Name,
					Text:           string(o.Text),
					ExecutionCount: derefCount(o.ExecutionCount),
					Traceback:      o.Traceback,
				}
				if o.OutputType == notebook.OutputError && len(out.Traceback) == 0 {
					out.Traceback = []string{o.Ename + ": " + o.Evalue}
				}
				if o.OutputType == notebook.OutputDisplayData || o.OutputType == notebook.OutputExecuteResult {
					choose(i, j, o, &out)
				}
				cell.Outputs = append(cell.Outputs, out)
			}
		}

		doc.Cells = append(doc.Cells, cell)
	}

	return doc
}

func acceptsRaw(format string, accepted []string) bool {
	if format == "" {
		return true
	}
	for _, a := range accepted {
		if format == a {
			return true
		}
	}
	return false
}

func derefCount(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

// figureFile names an extracted output figure: <name>_<cell>_<output><ext>.
func figureFile(name string, cell, output int, ext string) string {
	return name + "_" + strconv.Itoa(cell) + "_" + strconv.Itoa(output) + ext
}

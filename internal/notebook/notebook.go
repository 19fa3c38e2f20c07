// Package notebook models nbformat v4 notebook documents.
//
// Only the fields the conversion pipeline touches are typed; everything else
// survives a read/write round trip through the raw metadata maps.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Sentinel errors for notebook loading.
var (
	ErrRead               = errors.New("failed to read notebook")
	ErrParse              = errors.New("failed to parse notebook")
	ErrUnsupportedVersion = errors.New("unsupported notebook format version")
)

// MinFormat is the oldest nbformat major version understood by the parser.
const MinFormat = 4

// Cell types.
const (
	CellMarkdown = "markdown"
	CellCode     = "code"
	CellRaw      = "raw"
)

// Output types.
const (
	OutputStream        = "stream"
	OutputDisplayData   = "display_data"
	OutputExecuteResult = "execute_result"
	OutputError         = "error"
)

// Notebook is a parsed notebook document.
type Notebook struct {
	Cells         []*Cell  `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Cell is a single notebook cell. Source is mutated in place by the pipeline.
type Cell struct {
	Type           string                `json:"cell_type"`
	ID             string                `json:"id,omitempty"`
	Source         Text                  `json:"source"`
	Metadata       map[string]any        `json:"metadata"`
	Outputs        []*Output             `json:"outputs,omitempty"`
	ExecutionCount *int                  `json:"execution_count,omitempty"`
	Attachments    map[string]MimeBundle `json:"attachments,omitempty"`
}

// Output is a code cell output.
type Output struct {
	OutputType     string         `json:"output_type"`
	Name           string         `json:"name,omitempty"`
	Text           Text           `json:"text,omitempty"`
	Data           MimeBundle     `json:"data,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
	Ename          string         `json:"ename,omitempty"`
	Evalue         string         `json:"evalue,omitempty"`
	Traceback      []string       `json:"traceback,omitempty"`
}

// MimeBundle maps MIME types to their payloads.
type MimeBundle map[string]Text

// Has reports whether the bundle carries the given MIME type.
func (b MimeBundle) Has(mime string) bool {
	_, ok := b[mime]
	return ok
}

// Types returns the MIME types in the bundle, sorted.
func (b MimeBundle) Types() []string {
	types := make([]string, 0, len(b))
	for k := range b {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// Read loads and parses the notebook at path.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided notebook path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return Parse(data)
}

// Parse decodes notebook JSON.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if nb.NBFormat < MinFormat {
		return nil, fmt.Errorf("%w: nbformat %d (need %d or later)", ErrUnsupportedVersion, nb.NBFormat, MinFormat)
	}
	if nb.Metadata == nil {
		nb.Metadata = Metadata{}
	}
	for i, c := range nb.Cells {
		if c == nil {
			return nil, fmt.Errorf("%w: cell %d is null", ErrParse, i)
		}
	}
	return &nb, nil
}

// Marshal encodes the notebook back to indented JSON.
func (nb *Notebook) Marshal() ([]byte, error) {
	return json.MarshalIndent(nb, "", " ")
}

// CellsOfType returns the cells with the given type, in document order.
func (nb *Notebook) CellsOfType(cellType string) []*Cell {
	var out []*Cell
	for _, c := range nb.Cells {
		if c.Type == cellType {
			out = append(out, c)
		}
	}
	return out
}

// SetSource replaces the cell source.
func (c *Cell) SetSource(s string) {
	c.Source = Text(s)
}

// String returns the cell source.
func (c *Cell) String() string {
	return string(c.Source)
}

// RawFormat returns the target format of a raw cell ("" when unspecified).
// nbformat stores it as metadata.format; older notebooks use raw_mimetype.
func (c *Cell) RawFormat() string {
	for _, key := range []string{"format", "raw_mimetype"} {
		if v, ok := c.Metadata[key].(string); ok {
			return strings.ToLower(v)
		}
	}
	return ""
}

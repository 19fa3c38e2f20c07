package nbconvert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format selects the output of a conversion.
type Format string

// Output formats.
const (
	FormatLaTeX  Format = "latex"  // standalone or body-only .tex
	FormatPDF    Format = "pdf"    // LaTeX compiled by a TeX engine
	FormatHTML   Format = "html"   // self-contained HTML page
	FormatWebPDF Format = "webpdf" // HTML printed by headless Chrome
)

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatLaTeX:
		return ".tex"
	case FormatPDF, FormatWebPDF:
		return ".pdf"
	case FormatHTML:
		return ".html"
	}
	return ""
}

// ParseFormat parses a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.Extension() == "" {
		return "", fmt.Errorf("%w: %q (must be latex, pdf, html or webpdf)", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeA5     = "a5"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 1.0
)

// paperSizes holds portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeA5:     {5.83, 8.27},
	PageSizeLegal:  {8.5, 14},
}

// PageSettings configures page dimensions for LaTeX geometry and browser
// printing.
type PageSettings struct {
	Size        string  // "letter", "a4", "a5", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// Geometry returns the options of the LaTeX geometry package,
// e.g. "a4paper,landscape,margin=1in".
func (p *PageSettings) Geometry() string {
	if p == nil {
		p = DefaultPageSettings()
	}
	opts := []string{strings.ToLower(p.Size) + "paper"}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		opts = append(opts, OrientationLandscape)
	}
	opts = append(opts, "margin="+strconv.FormatFloat(p.Margin, 'f', -1, 64)+"in")
	return strings.Join(opts, ",")
}

// Dimensions returns paper width and height in inches, swapped for
// landscape.
func (p *PageSettings) Dimensions() (width, height float64) {
	if p == nil {
		p = DefaultPageSettings()
	}
	dims, ok := paperSizes[strings.ToLower(p.Size)]
	if !ok {
		dims = paperSizes[PageSizeLetter]
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return dims[1], dims[0]
	}
	return dims[0], dims[1]
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Document overrides the title block taken from notebook metadata.
type Document struct {
	Title   string
	Authors []string
	Date    string // literal, "auto" or "auto:FORMAT"
}

// Input contains conversion parameters.
type Input struct {
	Path         string        // notebook file (required unless Notebook is set)
	Notebook     []byte        // notebook JSON; when set, Path only names the document
	Name         string        // base name of outputs, default Path without extension
	Format       Format        // default FormatLaTeX
	Bibliography string        // .bib file for citation remapping and bibtex (optional)
	Document     *Document     // title block overrides (optional)
	Page         *PageSettings // page settings (optional, nil = defaults)
}

// Result is the outcome of one conversion.
type Result struct {
	Name   string // base name of the outputs
	Format Format
	Body   []byte
	// Resources maps "<name>_files/<file>" to file contents. Only LaTeX
	// results carry resources; PDF builds consume theirs.
	Resources map[string][]byte
	Elapsed   time.Duration
}

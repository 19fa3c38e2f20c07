package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	// ErrImageNotFound indicates a local image referenced from a markdown
	// cell, or an img tag being inlined into HTML, does not exist. Fatal for
	// the conversion.
	ErrImageNotFound = errors.New("image file not found")

	// ErrImageConvert indicates a local SVG or GIF could not be transcoded.
	ErrImageConvert = errors.New("image conversion failed")

	// ErrAmbiguousCitation indicates a cite2c entry matched more than one
	// bibliography entry.
	ErrAmbiguousCitation = errors.New("citation matches multiple bibliography entries")

	// ErrHTMLConversion indicates markdown to HTML conversion failed.
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// ErrLatexConversion indicates markdown to LaTeX conversion failed.
	ErrLatexConversion = errors.New("LaTeX conversion failed")
)

package export

import "errors"

// Sentinel errors for template export.
var (
	// ErrTemplateParse indicates a base or template set failed to parse.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender indicates template execution failed.
	ErrTemplateRender = errors.New("template render failed")
)

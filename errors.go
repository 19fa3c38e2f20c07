package nbconvert

import (
	"errors"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/export"
	"github.com/robintibor/convert-notebook-to-latex/internal/latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrNoNotebook        = errors.New("no notebook given")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrWriteOutput       = errors.New("failed to write output")
	ErrPDFGeneration     = errors.New("PDF generation failed")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// Errors of the conversion stages, re-exported so callers need not import
// internal packages to classify failures.
var (
	ErrNotebookRead      = notebook.ErrRead
	ErrNotebookParse     = notebook.ErrParse
	ErrNotebookVersion   = notebook.ErrUnsupportedVersion
	ErrImageNotFound     = pipeline.ErrImageNotFound
	ErrImageConvert      = pipeline.ErrImageConvert
	ErrAmbiguousCitation = pipeline.ErrAmbiguousCitation
	ErrTemplateParse     = export.ErrTemplateParse
	ErrTemplateRender    = export.ErrTemplateRender
	ErrStyleNotFound     = assets.ErrStyleNotFound
	ErrTemplateNotFound  = assets.ErrTemplateSetNotFound
	ErrLatexEngine       = latex.ErrEngineNotFound
	ErrLatexCompile      = latex.ErrCompile
	ErrLatexNoOutput     = latex.ErrNoOutput
)

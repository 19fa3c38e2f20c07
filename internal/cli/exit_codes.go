package cli

import (
	"errors"
	"os"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
	"github.com/robintibor/convert-notebook-to-latex/internal/dateutil"
)

// Exit codes shared by nb2latex, nb2html and nb2pdf.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion, or usage printed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // TeX engine or Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// PDF engine errors (exit 4)
	if errors.Is(err, nbconvert.ErrBrowserConnect) ||
		errors.Is(err, nbconvert.ErrPageCreate) ||
		errors.Is(err, nbconvert.ErrPageLoad) ||
		errors.Is(err, nbconvert.ErrPDFGeneration) ||
		errors.Is(err, nbconvert.ErrLatexEngine) ||
		errors.Is(err, nbconvert.ErrLatexCompile) ||
		errors.Is(err, nbconvert.ErrLatexNoOutput) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, nbconvert.ErrNotebookRead) ||
		errors.Is(err, nbconvert.ErrImageNotFound) ||
		errors.Is(err, nbconvert.ErrWriteOutput) ||
		errors.Is(err, ErrNoNotebooks) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, nbconvert.ErrInvalidPageSize) ||
		errors.Is(err, nbconvert.ErrInvalidOrientation) ||
		errors.Is(err, nbconvert.ErrInvalidMargin) ||
		errors.Is(err, nbconvert.ErrStyleNotFound) ||
		errors.Is(err, nbconvert.ErrTemplateNotFound) ||
		errors.Is(err, nbconvert.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}

package cli

// Notes:
// - exitCodeFor: we test the sentinel errors of nbconvert, config and cli,
//   plus wrapped errors to verify the errors.Is() chain works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
	"github.com/robintibor/convert-notebook-to-latex/internal/dateutil"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// PDF engine errors (exit 4)
		{"browser connect", nbconvert.ErrBrowserConnect, ExitBrowser},
		{"page create", nbconvert.ErrPageCreate, ExitBrowser},
		{"page load", nbconvert.ErrPageLoad, ExitBrowser},
		{"pdf generation", nbconvert.ErrPDFGeneration, ExitBrowser},
		{"latex engine", nbconvert.ErrLatexEngine, ExitBrowser},
		{"latex compile", nbconvert.ErrLatexCompile, ExitBrowser},
		{"latex no output", nbconvert.ErrLatexNoOutput, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", nbconvert.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"notebook read", nbconvert.ErrNotebookRead, ExitIO},
		{"image not found", nbconvert.ErrImageNotFound, ExitIO},
		{"write output", nbconvert.ErrWriteOutput, ExitIO},
		{"no notebooks", ErrNoNotebooks, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"invalid date format", dateutil.ErrInvalidDateFormat, ExitUsage},
		{"invalid page size", nbconvert.ErrInvalidPageSize, ExitUsage},
		{"invalid orientation", nbconvert.ErrInvalidOrientation, ExitUsage},
		{"invalid margin", nbconvert.ErrInvalidMargin, ExitUsage},
		{"style not found", nbconvert.ErrStyleNotFound, ExitUsage},
		{"template set not found", nbconvert.ErrTemplateNotFound, ExitUsage},
		{"invalid asset path", nbconvert.ErrInvalidAssetPath, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid worker count", ErrInvalidWorkerCount, ExitUsage},
		{"invalid timeout", ErrInvalidTimeout, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"notebook parse", nbconvert.ErrNotebookParse, ExitGeneral},
		{"ambiguous citation", nbconvert.ErrAmbiguousCitation, ExitGeneral},
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeFor_BatchError(t *testing.T) {
	t.Parallel()

	err := &batchError{failed: 1, total: 3, first: fmt.Errorf("x: %w", nbconvert.ErrLatexCompile)}
	if got := exitCodeFor(err); got != ExitBrowser {
		t.Errorf("exitCodeFor(batchError) = %d, want %d", got, ExitBrowser)
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	codes := map[string]int{
		"ExitSuccess": ExitSuccess,
		"ExitGeneral": ExitGeneral,
		"ExitUsage":   ExitUsage,
		"ExitIO":      ExitIO,
		"ExitBrowser": ExitBrowser,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if code >= 126 {
			t.Errorf("%s = %d, must be below 126", name, code)
		}
		if other, ok := seen[code]; ok {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		seen[code] = name
	}
}

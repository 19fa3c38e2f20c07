package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
)

// ---------------------------------------------------------------------------
// TestConvertBatch - Ordering, concurrency limit and failures
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	files := make([]FileToConvert, 6)
	for i := range files {
		files[i] = FileToConvert{InputPath: fmt.Sprintf("nb%d.ipynb", i), OutputDir: out}
	}
	pool := &fakePool{conv: &fakeConverter{delay: 10 * time.Millisecond}, size: 2}
	params := &conversionParams{format: nbconvert.FormatPDF}

	results := convertBatch(context.Background(), pool, files, params)

	if len(results) != len(files) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d].InputPath = %q, want %q", i, r.InputPath, files[i].InputPath)
		}
		want := filepath.Join(out, fmt.Sprintf("nb%d.pdf", i))
		if r.OutputPath != want {
			t.Errorf("results[%d].OutputPath = %q, want %q", i, r.OutputPath, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("output %s not written: %v", want, err)
		}
	}
	if pool.maxInUse > pool.size {
		t.Errorf("max concurrent conversions = %d, want <= %d", pool.maxInUse, pool.size)
	}
	if pool.releases != len(files) {
		t.Errorf("releases = %d, want %d", pool.releases, len(files))
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	pool := &fakePool{conv: &fakeConverter{}, size: 1}
	if got := convertBatch(context.Background(), pool, nil, &conversionParams{}); got != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", got)
	}
}

func TestConvertBatch_AcquireError(t *testing.T) {
	t.Parallel()

	pool := &fakePool{size: 1, acquireErr: errors.New("no browser")}
	files := []FileToConvert{{InputPath: "a.ipynb"}, {InputPath: "b.ipynb"}}

	results := convertBatch(context.Background(), pool, files, &conversionParams{})
	for i, r := range results {
		if !errors.Is(r.Err, ErrConverterInit) {
			t.Errorf("results[%d].Err = %v, want ErrConverterInit", i, r.Err)
		}
	}
}

func TestConvertBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conv := &fakeConverter{}
	pool := &fakePool{conv: conv, size: 1}

	results := convertBatch(ctx, pool, []FileToConvert{{InputPath: "a.ipynb"}}, &conversionParams{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", results[0].Err)
	}
	if len(conv.Inputs()) != 0 {
		t.Error("converter called after cancellation")
	}
}

// ---------------------------------------------------------------------------
// TestConvertFile - Input construction and output paths
// ---------------------------------------------------------------------------

func TestConvertFile_PassesParams(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{}
	page := nbconvert.DefaultPageSettings()
	doc := &nbconvert.Document{Title: "T"}
	params := &conversionParams{
		format:       nbconvert.FormatWebPDF,
		bibliography: "refs.bib",
		document:     doc,
		page:         page,
	}

	r := convertFile(context.Background(), conv, FileToConvert{InputPath: "x.ipynb", OutputDir: t.TempDir()}, params)
	if r.Err != nil {
		t.Fatalf("convertFile() error = %v", r.Err)
	}

	in := conv.Inputs()[0]
	if in.Path != "x.ipynb" || in.Format != nbconvert.FormatWebPDF || in.Bibliography != "refs.bib" {
		t.Errorf("Input = %+v", in)
	}
	if in.Document != doc || in.Page != page {
		t.Error("Input does not carry the shared document and page settings")
	}
}

func TestConvertFile_ExplicitOutputPath(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "custom.html")
	r := convertFile(context.Background(), &fakeConverter{}, FileToConvert{InputPath: "x.ipynb", OutputPath: out},
		&conversionParams{format: nbconvert.FormatHTML})
	if r.Err != nil {
		t.Fatalf("convertFile() error = %v", r.Err)
	}
	if r.OutputPath != out {
		t.Errorf("OutputPath = %q, want %q", r.OutputPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestConvertFile_ConvertError(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{err: fmt.Errorf("%w: boom", nbconvert.ErrLatexCompile)}
	r := convertFile(context.Background(), conv, FileToConvert{InputPath: "x.ipynb", OutputDir: t.TempDir()}, &conversionParams{})
	if !errors.Is(r.Err, nbconvert.ErrLatexCompile) {
		t.Errorf("Err = %v, want ErrLatexCompile", r.Err)
	}
	if r.OutputPath != "" {
		t.Errorf("OutputPath = %q, want empty", r.OutputPath)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResultsWithWriter - Output format
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.ipynb", OutputPath: "a.pdf", Duration: 1500 * time.Millisecond},
		{InputPath: "b.ipynb", Err: fmt.Errorf("%w: xelatex", nbconvert.ErrLatexCompile)},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantOut    []string
		notWantOut []string
	}{
		{"default", false, false, []string{"Created a.pdf", "1 succeeded, 1 failed"}, nil},
		{"verbose", false, true, []string{"a.ipynb -> a.pdf (1.5s)"}, []string{"Created"}},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			failed := printResultsWithWriter(results, tt.quiet, tt.verbose, errorHints{}, env)

			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout.String())
				}
			}
			for _, notWant := range tt.notWantOut {
				if strings.Contains(stdout.String(), notWant) {
					t.Errorf("stdout contains %q:\n%s", notWant, stdout.String())
				}
			}
			if !strings.Contains(stderr.String(), "FAILED b.ipynb") {
				t.Errorf("stderr missing failure line:\n%s", stderr.String())
			}
			if !strings.Contains(stderr.String(), "hint:") {
				t.Errorf("stderr missing hint:\n%s", stderr.String())
			}
		})
	}
}

func TestNewBatchError(t *testing.T) {
	t.Parallel()

	if err := newBatchError([]ConversionResult{{InputPath: "a"}}); err != nil {
		t.Errorf("newBatchError(all ok) = %v, want nil", err)
	}

	first := errors.New("first")
	err := newBatchError([]ConversionResult{
		{InputPath: "a"},
		{InputPath: "b", Err: first},
		{InputPath: "c", Err: errors.New("second")},
	})
	if err == nil {
		t.Fatal("newBatchError() = nil, want error")
	}
	if !errors.Is(err, first) {
		t.Errorf("errors.Is(err, first) = false")
	}
	if got := err.Error(); got != "2 of 3 conversions failed" {
		t.Errorf("Error() = %q", got)
	}
}

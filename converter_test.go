package nbconvert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robintibor/convert-notebook-to-latex/internal/imaging"
	"github.com/robintibor/convert-notebook-to-latex/internal/latex"
)

// Notes:
// - The TeX engine and the browser are replaced by fakes; integration tests
//   with the real programs live in integration_test.go.
// - Remote image fetching is disabled in every test converter.
// - Notebooks are written to t.TempDir() together with their images.

const testNotebook = `{
 "nbformat": 4,
 "nbformat_minor": 5,
 "metadata": {
  "title": "Demo Notebook",
  "cite2c": {"citations": {"zotero/1/ABC": {
   "title": "Deep learning with convolutional neural networks",
   "URL": "https://arxiv.org/abs/1703.05051"
  }}}
 },
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": [
   "# Intro\n",
   "\n",
   "See <cite data-cite=\"zotero/1/ABC\">(Schirrmeister, 2017)</cite> and [Go](https://go.dev).\n",
   "\n",
   "![figure](fig.png)"
  ]},
  {"cell_type": "code", "metadata": {}, "execution_count": 1, "source": ["plot()"], "outputs": [
   {"output_type": "display_data", "metadata": {}, "data": {
    "image/png": "iVBORw0KGgo=",
    "text/plain": ["<Figure>"]
   }}
  ]},
  {"cell_type": "markdown", "metadata": {}, "source": ["<span class=\"todo\">check numbers</span>"]}
 ]
}`

const testBibliography = `@article{schirrmeister2017deep,
  title = {Deep learning with convolutional neural networks},
  url = {https://arxiv.org/abs/1703.05051}
}
`

// fakeCompiler records jobs instead of running a TeX engine.
type fakeCompiler struct {
	mu    sync.Mutex
	jobs  []latex.Job
	pdf   []byte
	err   error
	panic bool
}

func (f *fakeCompiler) Compile(_ context.Context, job latex.Job) ([]byte, error) {
	if f.panic {
		panic("engine exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

// fakeRenderer records printed HTML instead of launching a browser.
type fakeRenderer struct {
	html   string
	page   *PageSettings
	pdf    []byte
	err    error
	closed bool
}

func (f *fakeRenderer) RenderHTML(_ context.Context, html string, page *PageSettings) ([]byte, error) {
	f.html = html
	f.page = page
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

// writeNotebook writes the test notebook, its image and bibliography into
// a temporary directory and returns the notebook path.
func writeNotebook(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"demo.ipynb": testNotebook,
		"fig.png":    "\x89PNG\r\n\x1a\n",
		"refs.bib":   testBibliography,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "demo.ipynb")
}

// newTestConverter creates a converter with fake PDF backends.
func newTestConverter(t *testing.T, opts ...Option) (*Converter, *fakeCompiler, *fakeRenderer) {
	t.Helper()

	opts = append([]Option{WithRemoteImages(false)}, opts...)
	c, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	compiler := &fakeCompiler{pdf: []byte("%PDF-1.5 latex")}
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.4 chrome")}
	c.compiler = compiler
	c.renderer = renderer
	c.now = func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = c.Close() })
	return c, compiler, renderer
}

// ---------------------------------------------------------------------------
// TestNewConverter - construction
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name: "defaults",
		},
		{
			name: "chapter template",
			opts: []Option{WithTemplate(TemplateChapter), WithChapters(true)},
		},
		{
			name:    "unknown template set",
			opts:    []Option{WithTemplate("nonexistent")},
			wantErr: ErrTemplateNotFound,
		},
		{
			name:    "unknown style",
			opts:    []Option{WithHTMLStyle("nonexistent")},
			wantErr: ErrStyleNotFound,
		},
		{
			name:    "invalid asset path",
			opts:    []Option{WithAssetPath("/nonexistent/assets")},
			wantErr: ErrInvalidAssetPath,
		},
		{
			name:    "zero latex runs",
			opts:    []Option{WithLatexRuns(0)},
			wantErr: ErrPDFGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewConverter(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewConverter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter() error = %v", err)
			}
			if err := c.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithTimeout(%v) did not panic", d)
				}
			}()
			WithTimeout(d)
		}()
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - LaTeX pipeline
// ---------------------------------------------------------------------------

func TestConverter_Convert_LaTeX(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, compiler, _ := newTestConverter(t)

	res, err := c.Convert(context.Background(), Input{
		Path:         path,
		Format:       FormatLaTeX,
		Bibliography: filepath.Join(filepath.Dir(path), "refs.bib"),
		Document:     &Document{Date: "auto"},
		Page:         &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 1},
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if res.Name != "demo" || res.Format != FormatLaTeX {
		t.Errorf("Result = {%q, %q}, want {demo, latex}", res.Name, res.Format)
	}

	body := string(res.Body)
	for _, want := range []string{
		`\documentclass`,
		`\usepackage[a4paper,margin=1in]{geometry}`,
		`\title{Demo Notebook}`,
		`\date{March 5, 2024}`,
		`\section{Intro}`,
		`\cite{schirrmeister2017deep}`,
		`{demo_files/fig.png}`,
		`{demo_files/demo_1_0.png}`,
		"TODO",
		`\bibliography{refs}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q in:\n%s", want, body)
		}
	}
	if strings.Contains(body, "<span") {
		t.Error("body still contains HTML span tags")
	}

	for _, key := range []string{"demo_files/fig.png", "demo_files/demo_1_0.png"} {
		if _, ok := res.Resources[key]; !ok {
			t.Errorf("Resources missing %q (have %v)", key, keysOf(res.Resources))
		}
	}

	if len(compiler.jobs) != 0 {
		t.Errorf("compiler ran %d times for a LaTeX result", len(compiler.jobs))
	}
}

// svgNotebook references an SVG in a subdirectory and carries a code cell
// whose first output is rich HTML.
const svgNotebook = `{
 "nbformat": 4,
 "nbformat_minor": 5,
 "metadata": {},
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Results\n", "\n", "![alt](img/photo.svg)\n", "\n", "Source file: photo.svg"]},
  {"cell_type": "code", "metadata": {}, "execution_count": 1, "source": ["df"], "outputs": [
   {"output_type": "display_data", "metadata": {}, "data": {
    "text/html": ["<table><tr><td>rich</td></tr></table>"],
    "text/plain": ["dropped-with-html"]
   }},
   {"output_type": "display_data", "metadata": {}, "data": {"text/plain": ["kept-plain-output"]}}
  ]}
 ]
}`

// svgRunner plays an SVG converter that takes <in> <out> arguments.
type svgRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *svgRunner) Run(_ context.Context, dir, _ string, args ...string) (string, string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return "", "", os.WriteFile(filepath.Join(dir, args[1]), []byte(vectorSVGPDF), 0o600)
}

const vectorSVGPDF = "%PDF-1.5 vector photo"

func TestConverter_Convert_SVGInSubdirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		heading  string
	}{
		{"article", TemplateArticle, `\section{Results}`},
		{"chapter", TemplateChapter, `\chapter{Results}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
				t.Fatal(err)
			}
			svg := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><text x="1" y="8">a</text></svg>`
			for name, content := range map[string]string{
				"report.ipynb":  svgNotebook,
				"img/photo.svg": svg,
			} {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
					t.Fatalf("writing %s: %v", name, err)
				}
			}

			c, _, _ := newTestConverter(t, WithTemplate(tt.template), WithChapters(tt.template == TemplateChapter))
			runner := &svgRunner{}
			c.transcoder.Runner = runner
			c.transcoder.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
			c.transcoder.Converters = []imaging.SVGConverter{{
				Name: "svgconv",
				Args: func(in, out string) []string { return []string{in, out} },
			}}

			res, err := c.Convert(context.Background(), Input{Path: filepath.Join(dir, "report.ipynb")})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			const key = "report_files/img__photo.pdf"
			if got := string(res.Resources[key]); got != vectorSVGPDF {
				t.Errorf("Resources[%q] = %q, want converter output (have %v)", key, got, keysOf(res.Resources))
			}
			if len(res.Resources) != 1 {
				t.Errorf("Resources = %v, want only %s", keysOf(res.Resources), key)
			}
			if runner.calls != 1 {
				t.Errorf("converter ran %d times, want 1", runner.calls)
			}

			body := string(res.Body)
			for _, want := range []string{
				tt.heading,
				`\adjustimage{max size={0.9\linewidth}{0.9\paperheight}}{` + key + `}`,
				"Source file: photo.pdf",
				"kept-plain-output",
			} {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q in:\n%s", want, body)
				}
			}
			for _, gone := range []string{"dropped-with-html", "<table>", "photo.svg"} {
				if strings.Contains(body, gone) {
					t.Errorf("body still contains %q", gone)
				}
			}
		})
	}
}

func TestConverter_Convert_Footnotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeNotebook(t)
			c, _, _ := newTestConverter(t, WithFootnotes(tt.enabled))

			res, err := c.Convert(context.Background(), Input{Path: path})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			got := strings.Contains(string(res.Body), `\footnote{\url{https://go.dev}}`)
			if got != tt.enabled {
				t.Errorf("footnote present = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestConverter_Convert_ChapterTemplate(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, _, _ := newTestConverter(t, WithTemplate(TemplateChapter))

	res, err := c.Convert(context.Background(), Input{Path: path})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	body := string(res.Body)
	if !strings.Contains(body, `\chapter{Intro}`) {
		t.Errorf("body missing \\chapter heading:\n%s", body)
	}
	if strings.Contains(body, `\documentclass`) {
		t.Error("chapter body should not contain a preamble")
	}
}

func TestConverter_Convert_MissingBibliography(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, _, _ := newTestConverter(t)

	res, err := c.Convert(context.Background(), Input{
		Path:         path,
		Bibliography: filepath.Join(t.TempDir(), "missing.bib"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	body := string(res.Body)
	if strings.Contains(body, `\bibliography{`) {
		t.Error("body should not reference a missing bibliography")
	}
	if !strings.Contains(body, "zotero/1/ABC") {
		t.Errorf("citation should keep its notebook key:\n%s", body)
	}
}

func TestConverter_Convert_FromBytes(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestConverter(t)

	// fig.png cannot be resolved without a source directory.
	nb := strings.Replace(testNotebook, "![figure](fig.png)", "", 1)

	res, err := c.Convert(context.Background(), Input{Notebook: []byte(nb), Name: "inline"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Name != "inline" {
		t.Errorf("Name = %q, want %q", res.Name, "inline")
	}
	if _, ok := res.Resources["inline_files/inline_1_0.png"]; !ok {
		t.Errorf("Resources missing output figure (have %v)", keysOf(res.Resources))
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - PDF, HTML and webpdf
// ---------------------------------------------------------------------------

func TestConverter_Convert_PDF(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	bib := filepath.Join(filepath.Dir(path), "refs.bib")
	c, compiler, _ := newTestConverter(t)

	res, err := c.Convert(context.Background(), Input{Path: path, Format: FormatPDF, Bibliography: bib})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if string(res.Body) != "%PDF-1.5 latex" {
		t.Errorf("Body = %q, want compiler output", res.Body)
	}
	if len(res.Resources) != 0 {
		t.Errorf("PDF result should carry no resources, got %v", keysOf(res.Resources))
	}

	if len(compiler.jobs) != 1 {
		t.Fatalf("compiler ran %d times, want 1", len(compiler.jobs))
	}
	job := compiler.jobs[0]
	if job.Bibliography != bib {
		t.Errorf("job.Bibliography = %q, want %q", job.Bibliography, bib)
	}
	if !strings.Contains(job.Source, `\bibliography{refs}`) {
		t.Error("job source missing \\bibliography")
	}
	if _, ok := job.Files["demo_files/fig.png"]; !ok {
		t.Errorf("job files missing markdown image (have %v)", keysOf(job.Files))
	}
}

func TestConverter_Convert_PDFErrors(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, compiler, _ := newTestConverter(t)
	compiler.err = latex.ErrCompile

	_, err := c.Convert(context.Background(), Input{Path: path, Format: FormatPDF})
	if !errors.Is(err, ErrPDFGeneration) {
		t.Errorf("error = %v, want ErrPDFGeneration", err)
	}
	if !errors.Is(err, ErrLatexCompile) {
		t.Errorf("error = %v, want ErrLatexCompile", err)
	}
}

func TestConverter_Convert_RecoversPanic(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, compiler, _ := newTestConverter(t)
	compiler.panic = true

	_, err := c.Convert(context.Background(), Input{Path: path, Format: FormatPDF})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("error = %v, want internal error", err)
	}
}

func TestConverter_Convert_HTML(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, compiler, renderer := newTestConverter(t)

	res, err := c.Convert(context.Background(), Input{Path: path, Format: FormatHTML})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	body := string(res.Body)
	for _, want := range []string{"<html", "Intro", "data:image/png;base64,"} {
		if !strings.Contains(body, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if len(res.Resources) != 0 {
		t.Errorf("HTML result should carry no resources, got %v", keysOf(res.Resources))
	}
	if len(compiler.jobs) != 0 || renderer.html != "" {
		t.Error("HTML conversion should not reach a PDF backend")
	}
}

func TestConverter_Convert_WebPDF(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, _, renderer := newTestConverter(t)
	page := &PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape, Margin: 0.5}

	res, err := c.Convert(context.Background(), Input{Path: path, Format: FormatWebPDF, Page: page})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if string(res.Body) != "%PDF-1.4 chrome" {
		t.Errorf("Body = %q, want renderer output", res.Body)
	}
	if !strings.Contains(renderer.html, "<html") {
		t.Error("renderer did not receive the HTML document")
	}
	if renderer.page != page {
		t.Error("renderer did not receive the page settings")
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	c, _, renderer := newTestConverter(t)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !renderer.closed {
		t.Error("Close() did not close the renderer")
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Convert_Errors - input validation and stage failures
// ---------------------------------------------------------------------------

func TestConverter_Convert_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missingImage := filepath.Join(dir, "broken.ipynb")
	broken := strings.Replace(testNotebook, "fig.png", "missing.png", 1)
	if err := os.WriteFile(missingImage, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "no notebook",
			input:   Input{},
			wantErr: ErrNoNotebook,
		},
		{
			name:    "unsupported format",
			input:   Input{Notebook: []byte(testNotebook), Format: "docx"},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "invalid page size",
			input:   Input{Notebook: []byte(testNotebook), Page: &PageSettings{Size: "tabloid", Orientation: OrientationPortrait, Margin: 1}},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unreadable notebook",
			input:   Input{Path: filepath.Join(dir, "missing.ipynb")},
			wantErr: ErrNotebookRead,
		},
		{
			name:    "malformed notebook",
			input:   Input{Notebook: []byte("{not json")},
			wantErr: ErrNotebookParse,
		},
		{
			name:    "old notebook format",
			input:   Input{Notebook: []byte(`{"nbformat": 3, "cells": []}`)},
			wantErr: ErrNotebookVersion,
		},
		{
			name:    "missing local image",
			input:   Input{Path: missingImage},
			wantErr: ErrImageNotFound,
		},
		{
			name:    "missing local image in inlined html",
			input:   Input{Path: missingImage, Format: FormatHTML},
			wantErr: ErrImageNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _, _ := newTestConverter(t)
			_, err := c.Convert(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConverter_Convert_CanceledContext(t *testing.T) {
	t.Parallel()

	path := writeNotebook(t)
	c, _, _ := newTestConverter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Convert(ctx, Input{Path: path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

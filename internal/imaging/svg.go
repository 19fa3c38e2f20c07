package imaging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
)

// DefaultConvertTimeout bounds a single external SVG conversion.
const DefaultConvertTimeout = time.Minute

// CommandRunner runs an external program in dir. latex.ExecRunner
// satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// SVGConverter describes a command line SVG to PDF converter.
type SVGConverter struct {
	Name string
	// Args returns the arguments converting in to out, both relative to
	// the working directory.
	Args func(in, out string) []string
}

// DefaultSVGConverters lists the converters tried by SVGToPDF.
var DefaultSVGConverters = []SVGConverter{
	{
		Name: "rsvg-convert",
		Args: func(in, out string) []string { return []string{"-f", "pdf", "-o", out, in} },
	},
	{
		Name: "inkscape",
		Args: func(in, out string) []string {
			return []string{in, "--export-type=pdf", "--export-filename=" + out}
		},
	},
}

const (
	svgInput  = "drawing.svg"
	pdfOutput = "drawing.pdf"
)

var textElement = regexp.MustCompile(`<(?:[A-Za-z_][\w.-]*:)?text[\s>/]`)

// SVGToPDF converts an SVG document to a one-page PDF. The first installed
// converter that succeeds wins; when none does, the drawing is rasterized.
func (t *Transcoder) SVGToPDF(svg []byte) ([]byte, error) {
	l := t.log()
	if t.Runner != nil {
		for _, c := range t.converters() {
			if _, err := t.lookPath(c.Name); err != nil {
				continue
			}
			out, err := t.runConverter(c, svg)
			if err == nil {
				return out, nil
			}
			l.Warn("svg converter failed", "converter", c.Name, "err", err)
		}
	}

	if textElement.Match(svg) {
		l.Warn("rasterizing svg without a vector converter, text elements are dropped",
			"hint", "install rsvg-convert or inkscape")
	} else {
		l.Debug("rasterizing svg without a vector converter")
	}
	return t.rasterizeSVG(svg)
}

// runConverter converts svg in a scratch directory and checks the result
// looks like a PDF.
func (t *Transcoder) runConverter(c SVGConverter, svg []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "nbconvert-svg-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConvertSVG, err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, svgInput), svg, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConvertSVG, err)
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultConvertTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, stderr, err := t.Runner.Run(ctx, dir, c.Name, c.Args(svgInput, pdfOutput)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrConvertSVG, c.Name, err, strings.TrimSpace(stderr))
	}

	out, err := os.ReadFile(filepath.Join(dir, pdfOutput))
	if err != nil {
		return nil, fmt.Errorf("%w: %s wrote no output: %v", ErrConvertSVG, c.Name, err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: %s output is not a PDF", ErrConvertSVG, c.Name)
	}
	return out, nil
}

func (t *Transcoder) converters() []SVGConverter {
	if t.Converters != nil {
		return t.Converters
	}
	return DefaultSVGConverters
}

func (t *Transcoder) lookPath(name string) (string, error) {
	if t.LookPath != nil {
		return t.LookPath(name)
	}
	return exec.LookPath(name)
}

func (t *Transcoder) log() *logger.Logger {
	if t.Logger == nil {
		return logger.Discard()
	}
	return t.Logger
}

// Package latex compiles exported LaTeX documents to PDF with an external
// TeX engine, running bibtex when the document has a bibliography.
package latex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
)

// Defaults for the engine invocation.
const (
	DefaultEngine = "xelatex"
	DefaultRuns   = 3
	DefaultBibTeX = "bibtex"

	// jobName is the build file name; notebook names may contain spaces
	// that TeX engines do not accept on the command line.
	jobName = "notebook"

	// maxSummaryLines caps the engine log excerpt in errors.
	maxSummaryLines = 20
)

// SupportedEngines lists the TeX engines Compile knows how to drive.
var SupportedEngines = []string{"xelatex", "pdflatex", "lualatex"}

// Job is one document to compile.
type Job struct {
	// Source is the complete LaTeX document.
	Source string
	// Files are written next to the document, keyed by relative slash path
	// (the exported "<name>_files/..." figures).
	Files map[string][]byte
	// Bibliography is the path of a .bib file to copy into the build
	// directory, or empty. The document refers to it by base name.
	Bibliography string
}

// Compiler drives a TeX engine in a temporary build directory.
type Compiler struct {
	Runner CommandRunner
	Engine string
	Runs   int
	BibTeX string
	Logger *logger.Logger
}

// NewCompiler creates a Compiler for engine with the default run count.
func NewCompiler(engine string, log *logger.Logger) *Compiler {
	if engine == "" {
		engine = DefaultEngine
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Compiler{
		Runner: &ExecRunner{},
		Engine: engine,
		Runs:   DefaultRuns,
		BibTeX: DefaultBibTeX,
		Logger: log,
	}
}

// Compile builds job and returns the PDF bytes. The sequence is one engine
// pass, bibtex when a bibliography is set, then the remaining passes so
// cross references and citations settle.
func (c *Compiler) Compile(ctx context.Context, job Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "nbconvert-latex-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkDir, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := c.prepare(dir, job); err != nil {
		return nil, err
	}

	runs := max(c.Runs, 1)
	if err := c.runEngine(ctx, dir, 1, runs); err != nil {
		return nil, err
	}

	if job.Bibliography != "" {
		if err := c.runBibTeX(ctx, dir); err != nil {
			return nil, err
		}
		runs = max(runs, 2)
	}

	for pass := 2; pass <= runs; pass++ {
		if err := c.runEngine(ctx, dir, pass, runs); err != nil {
			return nil, err
		}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, jobName+".pdf")) // #nosec G304 -- path inside our temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoOutput, err)
	}
	return pdf, nil
}

// prepare writes the document, its files and the bibliography into dir.
func (c *Compiler) prepare(dir string, job Job) error {
	files := make(map[string][]byte, len(job.Files)+2)
	for k, v := range job.Files {
		files[k] = v
	}
	files[jobName+".tex"] = []byte(job.Source)

	if job.Bibliography != "" {
		bib, err := os.ReadFile(job.Bibliography) // #nosec G304 -- user-provided bibliography path
		if err != nil {
			return fmt.Errorf("%w: reading bibliography: %v", ErrWorkDir, err)
		}
		files[filepath.Base(job.Bibliography)] = bib
	}

	if err := fileutil.WriteTree(dir, files); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkDir, err)
	}
	return nil
}

func (c *Compiler) runEngine(ctx context.Context, dir string, pass, runs int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	stdout, stderr, err := c.Runner.Run(ctx, dir, c.Engine,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-file-line-error",
		jobName+".tex",
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEngineNotFound, c.Engine)
		}
		return fmt.Errorf("%w: %s pass %d/%d: %v\n%s", ErrCompile, c.Engine, pass, runs, err, summarize(stdout+stderr))
	}

	c.log().Debug("latex pass done", "engine", c.Engine, "pass", pass, "of", runs, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// runBibTeX processes citations. Failures are logged: a document with
// unresolved citations still compiles.
func (c *Compiler) runBibTeX(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stdout, stderr, err := c.Runner.Run(ctx, dir, c.BibTeX, jobName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log().Warn("bibtex failed, citations may be unresolved", "error", err, "output", summarize(stdout+stderr))
		return nil
	}

	c.log().Debug("bibtex done")
	return nil
}

func (c *Compiler) log() *logger.Logger {
	if c.Logger == nil {
		return logger.Discard()
	}
	return c.Logger
}

// summarize extracts the TeX error lines ("! ..." and "file:line: ...") from
// engine output, falling back to its last lines.
func summarize(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var errs []string
	for i, line := range lines {
		if strings.HasPrefix(line, "!") || isFileLineError(line) {
			errs = append(errs, line)
			// TeX prints the offending input on the following line (l.<n>)
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "l.") {
				errs = append(errs, lines[i+1])
			}
		}
	}
	if len(errs) == 0 {
		errs = lines
	}
	if len(errs) > maxSummaryLines {
		errs = errs[len(errs)-maxSummaryLines:]
	}
	return strings.Join(errs, "\n")
}

// isFileLineError matches the "-file-line-error" format: "./x.tex:12: msg".
func isFileLineError(line string) bool {
	name, rest, ok := strings.Cut(line, ".tex:")
	if !ok || name == "" {
		return false
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	return digits > 0 && strings.HasPrefix(rest[digits:], ":")
}

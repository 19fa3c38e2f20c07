// Package cli implements the nb2latex, nb2html and nb2pdf commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/hints"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
)

// DefaultLatexBibliography is the bibliography nb2latex remaps citations
// against when neither --bib nor the config names one.
const DefaultLatexBibliography = "latex-only-tex/Deep_EEG_Learning.bib"

// tool describes one command.
type tool struct {
	name        string
	format      nbconvert.Format
	usage       func(io.Writer)
	minArgs     int
	maxArgs     int // 0 = unbounded
	batch       bool
	outputModes bool
	template    string
	chapters    bool
	footnotes   bool
	bib         string
}

var (
	latexTool = tool{
		name:      "nb2latex",
		format:    nbconvert.FormatLaTeX,
		usage:     printLatexUsage,
		minArgs:   1,
		maxArgs:   1,
		batch:     true,
		template:  nbconvert.TemplateChapter,
		chapters:  true,
		footnotes: true,
		bib:       DefaultLatexBibliography,
	}
	pdfTool = tool{
		name:        "nb2pdf",
		format:      nbconvert.FormatPDF,
		usage:       printPDFUsage,
		minArgs:     1,
		batch:       true,
		outputModes: true,
		template:    nbconvert.TemplateArticle,
	}
	htmlTool = tool{
		name:     "nb2html",
		format:   nbconvert.FormatHTML,
		usage:    printHTMLUsage,
		minArgs:  2,
		maxArgs:  2,
		template: nbconvert.TemplateArticle,
	}
)

// RunLatex runs nb2latex. args includes the program name.
func RunLatex(args []string, env *Environment) int {
	return run(&latexTool, args, env)
}

// RunPDF runs nb2pdf. args includes the program name.
func RunPDF(args []string, env *Environment) int {
	return run(&pdfTool, args, env)
}

// RunHTML runs nb2html. args includes the program name.
func RunHTML(args []string, env *Environment) int {
	return run(&htmlTool, args, env)
}

// Verbose reports whether args ask for verbose output, for use before
// the command runs.
func Verbose(args []string) bool {
	if len(args) == 0 {
		return false
	}
	for _, a := range args[1:] {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// run parses args and converts the notebooks they name. Missing or extra
// positional arguments print usage and succeed.
func run(t *tool, args []string, env *Environment) int {
	f, positional, err := parseFlags(t, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		t.usage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n\n", err)
		t.usage(env.Stderr)
		return ExitUsage
	}

	if t.outputModes && f.outdir == "" {
		positional, f.outdir = splitLegacyOutputDir(positional)
	}
	if len(positional) < t.minArgs || (t.maxArgs > 0 && len(positional) > t.maxArgs) {
		t.usage(env.Stdout)
		return ExitSuccess
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	h := errorHints{configName: f.common.config}
	if err := execute(ctx, t, f, positional, env, &h); err != nil {
		var be *batchError
		if !errors.As(err, &be) {
			fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, h.hint(err))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// execute loads configuration, discovers notebooks and converts them.
func execute(ctx context.Context, t *tool, f *cliFlags, positional []string, env *Environment, h *errorHints) error {
	if err := validateWorkers(f.workers); err != nil {
		return err
	}

	cfg := env.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if f.common.config != "" {
		var err error
		cfg, err = config.LoadConfig(f.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		copied := *cfg
		cfg = &copied
	}

	if err := mergeFlags(f, cfg); err != nil {
		return err
	}
	h.engine = cfg.Latex.Engine

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	l := logger.NewWithLevel(env.Stderr, logger.LevelFor(level, f.common.quiet, f.common.verbose))

	var files []FileToConvert
	if t.batch {
		files, err = discoverFiles(positional, cfg.Output.DefaultDir)
		if err != nil {
			return fmt.Errorf("discovering notebooks: %w", err)
		}
	} else {
		if err := validateNotebookExtension(positional[0]); err != nil {
			return err
		}
		files = []FileToConvert{{InputPath: positional[0], OutputPath: positional[1]}}
	}

	bib := cfg.Bibliography
	if bib == "" {
		bib = t.bib
	}
	if bib != "" && !fileutil.FileExists(bib) && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Warning: citations keep their cite2c keys%s\n", hints.ForBibliography(bib))
	}

	document, err := buildDocument(cfg, env.Now)
	if err != nil {
		return err
	}

	params := &conversionParams{
		format:       resolveFormat(t, f, cfg),
		bibliography: bib,
		document:     document,
		page:         buildPageSettings(cfg),
		logger:       l.Logger,
	}

	size := min(nbconvert.ResolvePoolSize(f.workers), len(files))
	l.Debug("starting conversion", "tool", t.name, "format", params.format, "notebooks", len(files), "workers", size)

	pool := env.NewPool(size, converterOptions(t, f, cfg, l.Logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			l.Warn("closing converters", "err", err)
		}
	}()

	results := convertBatch(ctx, pool, files, params)
	printResultsWithWriter(results, f.common.quiet, f.common.verbose, *h, env)
	return newBatchError(results)
}

package cli

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared by every tool.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// latexFlags holds LaTeX export and compilation flags.
type latexFlags struct {
	bib         string
	bibStyle    string
	template    string
	engine      string
	runs        int
	chapters    bool
	footnotes   bool
	noFootnotes bool
}

// documentFlags holds title block overrides.
type documentFlags struct {
	title   string
	authors []string
	date    string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// assetFlags holds asset-related flags (HTML style, custom asset path).
type assetFlags struct {
	style     string // name or path of a CSS file
	assetPath string // override asset directory
}

// outputFlags selects what nb2pdf produces instead of a compiled PDF.
type outputFlags struct {
	latex  bool // write .tex and resources, skip the TeX engine
	webpdf bool // print the HTML export with Chrome
}

// cliFlags holds all flags of one tool invocation.
type cliFlags struct {
	common   commonFlags
	outdir   string
	workers  int
	timeout  string
	latex    latexFlags
	document documentFlags
	page     pageFlags
	assets   assetFlags
	output   outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addLatexFlags adds LaTeX flags to a FlagSet.
func addLatexFlags(fs *flag.FlagSet, f *latexFlags) {
	fs.StringVar(&f.bib, "bib", "", "BibTeX file for citation remapping")
	fs.StringVar(&f.bibStyle, "bib-style", "", "\\bibliographystyle (default: unsrt)")
	fs.StringVar(&f.template, "template", "", "template set: article, chapter, or a custom set")
	fs.StringVar(&f.engine, "engine", "", "TeX engine: xelatex, pdflatex, lualatex")
	fs.IntVar(&f.runs, "runs", 0, "TeX engine passes (0 = default 3)")
	fs.BoolVar(&f.chapters, "chapters", false, "level 1 headings become \\chapter")
	fs.BoolVar(&f.footnotes, "footnotes", false, "repeat \\href URLs as footnotes")
	fs.BoolVar(&f.noFootnotes, "no-footnotes", false, "do not add URL footnotes")
}

// addDocumentFlags adds document metadata flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "doc-title", "", "document title (\"\" = notebook metadata)")
	fs.StringSliceVar(&f.authors, "doc-author", nil, "document author (repeatable)")
	fs.StringVar(&f.date, "doc-date", "", "document date (\"auto\" = today)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, a5, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "HTML style name or CSS file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addBatchFlags adds the flags of tools converting several notebooks.
func addBatchFlags(fs *flag.FlagSet, f *cliFlags) {
	fs.StringVarP(&f.outdir, "outdir", "o", "", "output directory (default: next to the notebook)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

// addOutputFlags adds nb2pdf output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.latex, "latex", false, "write LaTeX and figures, skip the TeX engine")
	fs.BoolVar(&f.webpdf, "webpdf", false, "print the HTML export with headless Chrome")
}

// parseFlags parses the flags of t and returns the positional args.
// Callers print usage themselves, -h yields flag.ErrHelp.
func parseFlags(t *tool, args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet(t.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &cliFlags{}

	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addLatexFlags(fs, &f.latex)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addAssetFlags(fs, &f.assets)
	if t.batch {
		addBatchFlags(fs, f)
	}
	if t.outputModes {
		addOutputFlags(fs, &f.output)
	}

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

package cli

import (
	"fmt"
	"io"
)

// printLatexUsage prints usage for nb2latex.
func printLatexUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2latex <notebook.ipynb> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a notebook to a LaTeX chapter with its figures in <name>_files/.")
	fmt.Fprintln(w, "Citations are remapped to the keys of the bibliography")
	fmt.Fprintf(w, "(default: %s).\n", DefaultLatexBibliography)
	fmt.Fprintln(w)
	printBatchFlags(w, false)
	printLatexFlags(w)
	printDocumentFlags(w)
	printCommonFlags(w)
}

// printPDFUsage prints usage for nb2pdf.
func printPDFUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2pdf <notebook.ipynb> [output_directory]")
	fmt.Fprintln(w, "       nb2pdf [flags] <notebook.ipynb|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert notebooks to PDF with a TeX engine (default) or headless Chrome.")
	fmt.Fprintln(w, "Directories are searched for .ipynb files.")
	fmt.Fprintln(w)
	printBatchFlags(w, true)
	fmt.Fprintln(w, "Output Mode:")
	fmt.Fprintln(w, "      --latex               Write .tex and figures, skip the TeX engine")
	fmt.Fprintln(w, "      --webpdf              Print the HTML export with Chrome")
	fmt.Fprintln(w)
	printLatexFlags(w)
	printDocumentFlags(w)
	printPageFlags(w)
	printCommonFlags(w)
}

// printHTMLUsage prints usage for nb2html.
func printHTMLUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2html <notebook.ipynb> <output.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a notebook to a self-contained HTML page with inlined images.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <s>           Style name or CSS file path")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "      --template <s>        Template set name")
	fmt.Fprintln(w)
	printDocumentFlags(w)
	printCommonFlags(w)
}

func printBatchFlags(w io.Writer, timeout bool) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --outdir <dir>        Output directory (default: next to the notebook)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	if timeout {
		fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout per notebook (e.g., 30s, 2m)")
	}
	fmt.Fprintln(w)
}

func printLatexFlags(w io.Writer) {
	fmt.Fprintln(w, "LaTeX:")
	fmt.Fprintln(w, "      --bib <path>          BibTeX file for citation remapping")
	fmt.Fprintln(w, "      --bib-style <s>       Bibliography style (default: unsrt)")
	fmt.Fprintln(w, "      --template <s>        Template set: article, chapter, or custom")
	fmt.Fprintln(w, "      --chapters            Level 1 headings become \\chapter")
	fmt.Fprintln(w, "      --footnotes           Repeat \\href URLs as footnotes")
	fmt.Fprintln(w, "      --no-footnotes        Do not add URL footnotes")
	fmt.Fprintln(w, "      --engine <s>          TeX engine: xelatex, pdflatex, lualatex")
	fmt.Fprintln(w, "      --runs <n>            TeX engine passes (default: 3)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
}

func printDocumentFlags(w io.Writer) {
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --doc-title <s>       Document title (\"\" = notebook metadata)")
	fmt.Fprintln(w, "      --doc-author <s>      Author, repeatable")
	fmt.Fprintln(w, "      --doc-date <s>        Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w)
}

func printPageFlags(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, a5, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

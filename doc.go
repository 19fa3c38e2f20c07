// Package nbconvert converts Jupyter notebooks to LaTeX, PDF and HTML.
//
// # Quick Start
//
// Create a converter, convert a notebook, and close when done:
//
//	conv, err := nbconvert.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, nbconvert.Input{
//	    Path:   "Intro.ipynb",
//	    Format: nbconvert.FormatLaTeX,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w := &nbconvert.Writer{OutDir: "out"}
//	path, err := w.Write(result)
//
// LaTeX results carry the extracted figures in result.Resources, keyed
// "<name>_files/<name>_<cell>_<output><ext>"; Writer stores them next to
// the .tex file.
//
// # Conversion Pipeline
//
// LaTeX and PDF conversions run these stages over the notebook:
//
//  1. Citation remapping: links to papers become \cite keys of a .bib file
//  2. Image rewriting: markdown and <img> images become \adjustimage blocks,
//     with remote images downloaded and SVG/GIF transcoded
//  3. Output sanitizing: rich outputs are stripped down to what LaTeX shows
//  4. HTML tag rewriting: todo/summary spans and lists become LaTeX
//  5. Export through text/template (base template plus a template set)
//  6. Optional \href footnotes, then the TeX engine for PDF
//
// HTML conversions export through html/template with inlined images and
// MathJax; webpdf prints that HTML with headless Chrome (go-rod).
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := nbconvert.NewConverter(
//	    nbconvert.WithTemplate(nbconvert.TemplateChapter),
//	    nbconvert.WithChapters(true),
//	    nbconvert.WithFootnotes(true),
//	    nbconvert.WithLatexEngine("pdflatex"),
//	)
//
// Per-conversion options are passed via Input:
//
//	result, err := conv.Convert(ctx, nbconvert.Input{
//	    Path:         "Intro.ipynb",
//	    Format:       nbconvert.FormatPDF,
//	    Bibliography: "refs.bib",
//	    Document:     &nbconvert.Document{Title: "Intro", Date: "auto"},
//	    Page:         &nbconvert.PageSettings{Size: "a4", Margin: 1},
//	})
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool:
//
//	pool := nbconvert.NewConverterPool(4, opts...)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Custom Assets
//
// Override built-in styles and template sets using AssetLoader:
//
//	loader, err := nbconvert.NewAssetLoader("/path/to/assets")
//	conv, err := nbconvert.NewConverter(nbconvert.WithAssetLoader(loader))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    └── custom/
//	        ├── latex.tmpl
//	        └── html.tmpl
//
// # External Programs
//
// PDF conversion needs a TeX distribution providing xelatex (or the engine
// chosen with WithLatexEngine) and bibtex.
//
// Webpdf conversion requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). Use ROD_BROWSER_BIN to specify a custom Chrome
// binary; the sandbox is disabled with it and when CI=true.
package nbconvert

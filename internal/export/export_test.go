package export

// Notes:
// - Exporters run against the embedded base template and built-in sets
// - SVG conversion goes through fakeTranscoder; real conversion is covered
//   in internal/imaging

import (
	"errors"
	"testing"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// pngBase64 is the base64 encoding of the PNG signature.
const pngBase64 = "iVBORw0KGgo="

// fakeTranscoder implements pipeline.ImageTranscoder.
type fakeTranscoder struct {
	err error
}

var _ pipeline.ImageTranscoder = (*fakeTranscoder)(nil)

func (f *fakeTranscoder) SVGToPDF([]byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func (f *fakeTranscoder) GIFToJPEG([]byte) ([]byte, error) {
	return nil, errors.New("not used")
}

// sampleNotebook has a markdown cell and a code cell with one output of
// every kind: stream, execute_result, PNG, SVG, HTML and an error.
const sampleNotebook = `{
 "nbformat": 4, "nbformat_minor": 5,
 "metadata": {"title": "Deep & Wide", "authors": [{"name": "Ada"}, "Bob"],
              "language_info": {"name": "python"}},
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Intro\n", "\n", "Some *text* with $x_1$."]},
  {"cell_type": "code", "metadata": {}, "execution_count": 3, "source": "print({1: 2})",
   "outputs": [
    {"output_type": "stream", "name": "stdout", "text": ["hello stream\n"]},
    {"output_type": "execute_result", "execution_count": 3, "metadata": {}, "data": {"text/plain": "answer=42"}},
    {"output_type": "display_data", "metadata": {}, "data": {"image/png": "` + pngBase64 + `\n", "text/plain": "<Figure>"}},
    {"output_type": "display_data", "metadata": {}, "data": {"image/svg+xml": "<svg xmlns=\"http://www.w3.org/2000/svg\"/>", "image/png": "` + pngBase64 + `"}},
    {"output_type": "display_data", "metadata": {}, "data": {"text/html": "<b>rich</b>", "application/javascript": "alert(1)", "text/plain": "rich"}},
    {"output_type": "error", "ename": "ValueError", "evalue": "boom", "traceback": ["\u001b[31mValueError\u001b[0m: boom"]}
   ]},
  {"cell_type": "raw", "metadata": {"format": "text/latex"}, "source": "\\newpage"},
  {"cell_type": "raw", "metadata": {"format": "text/html"}, "source": "<hr class=\"raw-html\">"}
 ]
}`

func parseNotebook(t *testing.T, src string) *notebook.Notebook {
	t.Helper()

	nb, err := notebook.Parse([]byte(src))
	if err != nil {
		t.Fatalf("notebook.Parse() error = %v", err)
	}
	return nb
}

func loadSets(t *testing.T, name string) (base, set *assets.TemplateSet) {
	t.Helper()

	base, err := assets.LoadBase()
	if err != nil {
		t.Fatalf("LoadBase() error = %v", err)
	}
	if name == "" {
		return base, nil
	}
	set, err = assets.LoadTemplateSet(name)
	if err != nil {
		t.Fatalf("LoadTemplateSet(%q) error = %v", name, err)
	}
	return base, set
}

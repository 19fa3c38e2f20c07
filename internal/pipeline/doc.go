// Package pipeline implements the notebook rewriting stages that run before
// a notebook is rendered.
//
// Stages mutate the notebook in place, in this order:
//   - Citation remapping (cite2c keys to bibliography keys)
//   - Image rewriting (markdown and <img> references to \adjustimage blocks
//     plus a Resources map of extracted files)
//   - HTML tag rewriting (literal tag to LaTeX macro substitution)
//   - Output sanitizing (dropping HTML and JavaScript outputs)
//
// It also provides the Markdown converters used by the exporters: goldmark
// to LaTeX (with raw LaTeX passed through) and goldmark to HTML, plus the
// chroma based code highlighter and HTML post-processing helpers.
package pipeline

package pipeline

import "github.com/robintibor/convert-notebook-to-latex/internal/notebook"

// Output payloads LaTeX cannot render.
var strippedMIMETypes = []string{"text/html", "application/javascript"}

// StripRichOutputs drops code-cell outputs carrying HTML or JavaScript
// payloads, keeping the order of the remaining outputs.
func StripRichOutputs(nb *notebook.Notebook) {
	for _, cell := range nb.Cells {
		if cell.Type != notebook.CellCode || len(cell.Outputs) == 0 {
			continue
		}
		kept := cell.Outputs[:0]
		for _, out := range cell.Outputs {
			if hasAny(out.Data, strippedMIMETypes) {
				continue
			}
			kept = append(kept, out)
		}
		cell.Outputs = kept
	}
}

func hasAny(b notebook.MimeBundle, mimes []string) bool {
	for _, m := range mimes {
		if b.Has(m) {
			return true
		}
	}
	return false
}

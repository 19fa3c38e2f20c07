//go:build integration

package imaging

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/robintibor/convert-notebook-to-latex/internal/latex"
)

func TestSVGToPDF_Integration(t *testing.T) {
	for _, c := range DefaultSVGConverters {
		t.Run(c.Name, func(t *testing.T) {
			if _, err := exec.LookPath(c.Name); err != nil {
				t.Skipf("%s not installed", c.Name)
			}

			tr := &Transcoder{Runner: &latex.ExecRunner{}, Converters: []SVGConverter{c}}
			out, err := tr.runConverter(c, []byte(labelledSVG))
			if err != nil {
				t.Fatalf("%s conversion error = %v", c.Name, err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Errorf("output is not a PDF: %q", out[:min(len(out), 16)])
			}
		})
	}
}

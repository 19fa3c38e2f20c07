package pipeline

import (
	"context"
	"testing"

	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

func TestTagRewriter_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "todo span",
			in:   `<span class="todo">fix this</span>`,
			want: "\\begin{comment}\nTODO\nfix this\n\\end{comment}\n",
		},
		{
			name: "todecide span",
			in:   `<span class="todecide">A or B</span>`,
			want: "\\begin{comment}\nTODECIDE\nA or B\n\\end{comment}\n",
		},
		{
			name: "summary box",
			in:   `<div class="summary">key point</div>`,
			want: `\begin{keypointbox}key point\end{keypointbox}`,
		},
		{
			name: "list items without environment",
			in:   "<ul><li>one</li><li>two</li></ul>",
			want: `\item one\item two`,
		},
		{
			name: "unknown span class left alone but closed",
			in:   `<span class="other">x</span>`,
			want: "<span class=\"other\">x\n\\end{comment}\n",
		},
		{
			name: "no tags",
			in:   "plain *markdown*",
			want: "plain *markdown*",
		},
	}

	r := NewTagRewriter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTagRewriter_Rewrite(t *testing.T) {
	t.Parallel()

	nb := &notebook.Notebook{Cells: []*notebook.Cell{
		{Type: notebook.CellMarkdown, Source: "<li>x</li>"},
		{Type: notebook.CellCode, Source: "<li>x</li>"},
	}}
	if err := NewTagRewriter().Rewrite(context.Background(), nb); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got := nb.Cells[0].String(); got != `\item x` {
		t.Errorf("markdown cell = %q, want %q", got, `\item x`)
	}
	if got := nb.Cells[1].String(); got != "<li>x</li>" {
		t.Errorf("code cell modified: %q", got)
	}
}

package pipeline

import "testing"

func TestCitation2LaTeX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "cite element",
			in:   `As shown <cite data-cite="he2016resnet">(He, 2016)</cite>.`,
			want: `As shown \cite{he2016resnet}.`,
		},
		{
			name: "other element with data-cite",
			in:   `<strong data-cite="a">A</strong><span data-cite='b'></span>`,
			want: `\cite{a}\cite{b}`,
		},
		{
			name: "self closing",
			in:   `x <cite data-cite="k"/> y`,
			want: `x \cite{k} y`,
		},
		{
			name: "uppercase closing tag",
			in:   `<CITE data-cite="k">t</CITE>!`,
			want: `\cite{k}!`,
		},
		{
			name: "unclosed element keeps rest",
			in:   `<cite data-cite="k">rest`,
			want: `\cite{k}rest`,
		},
		{
			name: "no citations",
			in:   `<cite>plain</cite>`,
			want: `<cite>plain</cite>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Citation2LaTeX(tt.in); got != tt.want {
				t.Errorf("Citation2LaTeX(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripFilesPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{`<img src="files/a.png">`, `<img src="a.png">`},
		{`<a href="/files/doc.pdf">d</a>`, `<a href="doc.pdf">d</a>`},
		{`![x](files/img/a.png)`, `![x](img/a.png)`},
		{`[link](/files/a.ipynb)`, `[link](a.ipynb)`},
		{`<img src="myfiles/a.png">`, `<img src="myfiles/a.png">`},
		{`![x](img/files/a.png)`, `![x](img/files/a.png)`},
	}
	for _, tt := range tests {
		if got := StripFilesPrefix(tt.in); got != tt.want {
			t.Errorf("StripFilesPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddHrefFootnotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{
			`see \href{https://a.org}{A}.`,
			`see \href{https://a.org}{A}\footnote{\url{https://a.org}}.`,
		},
		{
			`\href{x}{1} \href{y}{2}`,
			`\href{x}{1}\footnote{\url{x}} \href{y}{2}\footnote{\url{y}}`,
		},
		{`\url{https://a.org}`, `\url{https://a.org}`},
	}
	for _, tt := range tests {
		if got := AddHrefFootnotes(tt.in); got != tt.want {
			t.Errorf("AddHrefFootnotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	if got := NormalizeLineEndings("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Errorf("NormalizeLineEndings() = %q", got)
	}
}

func TestCompressBlankLines(t *testing.T) {
	t.Parallel()

	if got := CompressBlankLines("a\n\n\n\n\nb"); got != "a\n\nb" {
		t.Errorf("CompressBlankLines() = %q", got)
	}
}

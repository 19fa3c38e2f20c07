package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="20" viewBox="0 0 40 20">
<rect x="0" y="0" width="40" height="20" fill="#336699"/>
</svg>`

// ---------------------------------------------------------------------------
// TestSVGToPDF - Raster fallback wrapped as a PDF page (no Runner)
// ---------------------------------------------------------------------------

func TestSVGToPDF(t *testing.T) {
	t.Parallel()

	out, err := NewTranscoder().SVGToPDF([]byte(sampleSVG))
	if err != nil {
		t.Fatalf("SVGToPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with PDF header: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out, []byte("/Type /Page")) {
		t.Error("output has no page object")
	}
}

func TestSVGToPDF_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewTranscoder().SVGToPDF([]byte("definitely not svg <<<"))
	if !errors.Is(err, ErrDecodeSVG) {
		t.Errorf("SVGToPDF() error = %v, want ErrDecodeSVG", err)
	}
}

func TestSVGToPDF_NoViewBox(t *testing.T) {
	t.Parallel()

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><circle cx="5" cy="5" r="4"/></svg>`
	out, err := (&Transcoder{}).SVGToPDF([]byte(svg))
	if err != nil {
		t.Fatalf("SVGToPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

// ---------------------------------------------------------------------------
// TestGIFToJPEG - First frame re-encoded
// ---------------------------------------------------------------------------

func makeGIF(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding gif: %v", err)
	}
	return buf.Bytes()
}

func TestGIFToJPEG(t *testing.T) {
	t.Parallel()

	out, err := NewTranscoder().GIFToJPEG(makeGIF(t, 12, 7))
	if err != nil {
		t.Fatalf("GIFToJPEG() error = %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 7 {
		t.Errorf("bounds = %v, want 12x7", b)
	}
}

func TestGIFToJPEG_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewTranscoder().GIFToJPEG([]byte("GIF89a-truncated"))
	if !errors.Is(err, ErrDecodeGIF) {
		t.Errorf("GIFToJPEG() error = %v, want ErrDecodeGIF", err)
	}
}

// ---------------------------------------------------------------------------
// TestDetect - Payload sniffing
// ---------------------------------------------------------------------------

func TestDetect(t *testing.T) {
	t.Parallel()

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantExt  string
	}{
		{"png", pngBuf.Bytes(), "image/png", ".png"},
		{"gif", makeGIF(t, 2, 2), "image/gif", ".gif"},
		{"svg", []byte(sampleSVG), "image/svg+xml", ".svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mime, ext := Detect(tt.data)
			if mime != tt.wantMIME || ext != tt.wantExt {
				t.Errorf("Detect() = (%q, %q), want (%q, %q)", mime, ext, tt.wantMIME, tt.wantExt)
			}
		})
	}
}

func TestExtensionForMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mime string
		want string
	}{
		{"image/png", ".png"},
		{"IMAGE/JPEG", ".jpg"},
		{"image/svg+xml", ".svg"},
		{"application/pdf", ".pdf"},
		{"application/x-unknown-thing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			t.Parallel()

			if got := ExtensionForMIME(tt.mime); got != tt.want {
				t.Errorf("ExtensionForMIME(%q) = %q, want %q", tt.mime, got, tt.want)
			}
		})
	}
}

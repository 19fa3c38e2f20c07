// Package imaging converts notebook images into formats LaTeX can include:
// SVG drawings become single-page PDFs and GIFs become JPEGs.
//
// SVG goes through an external vector converter (rsvg-convert, then
// inkscape) when one is installed. Without one the drawing is rasterized
// with oksvg and wrapped in a PDF page; oksvg skips <text> elements, so
// labels are lost on that path and a warning is logged.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
)

// Sentinel errors for image conversion.
var (
	ErrDecodeSVG  = errors.New("failed to decode SVG")
	ErrConvertSVG = errors.New("SVG converter failed")
	ErrDecodeGIF  = errors.New("failed to decode GIF")
	ErrEncode     = errors.New("failed to encode image")
)

// Rasterization defaults.
const (
	// DefaultScale renders SVG user units at 2x for print-quality output.
	DefaultScale = 2.0

	// fallbackSize is used when an SVG declares no viewBox or size.
	fallbackSize = 300.0

	// maxPixels caps the raster buffer (~64 MB of RGBA).
	maxPixels = 16 << 20

	jpegQuality = 90
)

// Transcoder converts SVG and GIF payloads.
type Transcoder struct {
	// Runner executes the external SVG converters. Nil rasterizes every SVG.
	Runner CommandRunner
	// Converters are tried in order; nil means DefaultSVGConverters.
	Converters []SVGConverter
	// LookPath finds converters; nil means exec.LookPath.
	LookPath func(string) (string, error)
	// Timeout bounds one converter run. Zero means DefaultConvertTimeout.
	Timeout time.Duration
	// Logger receives fallback warnings. Nil discards them.
	Logger *logger.Logger

	// Scale multiplies SVG dimensions when rasterizing. Zero means DefaultScale.
	Scale float64
	// Producer is recorded in the PDF metadata.
	Producer string
}

// NewTranscoder returns a Transcoder that only rasterizes. Set Runner to
// enable the vector converters.
func NewTranscoder() *Transcoder {
	return &Transcoder{Scale: DefaultScale, Producer: "nbconvert-latex"}
}

// rasterizeSVG draws an SVG document into a bitmap and wraps it in a
// one-page PDF whose page size matches the drawing (in points, one SVG user
// unit per point).
func (t *Transcoder) rasterizeSVG(svg []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeSVG, err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = fallbackSize, fallbackSize
	}

	scale := t.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	pw, ph := int(w*scale+0.5), int(h*scale+0.5)
	for pw*ph > maxPixels && scale > 0.25 {
		scale /= 2
		pw, ph = int(w*scale+0.5), int(h*scale+0.5)
	}
	if pw < 1 || ph < 1 {
		return nil, fmt.Errorf("%w: degenerate size %.1fx%.1f", ErrDecodeSVG, w, h)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	icon.Draw(rasterx.NewDasher(pw, ph, rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())), 1)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, rgba); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return t.wrapPDF(&pngBuf, w, h)
}

// wrapPDF places a PNG on a single page of exactly w x h points.
func (t *Transcoder) wrapPDF(pngData *bytes.Buffer, w, h float64) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if t.Producer != "" {
		pdf.SetProducer(t.Producer, true)
	}
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("drawing", opts, pngData)
	pdf.ImageOptions("drawing", 0, 0, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out.Bytes(), nil
}

// GIFToJPEG decodes the first frame of a GIF, flattens transparency onto
// white and re-encodes it as JPEG.
func (t *Transcoder) GIFToJPEG(data []byte) ([]byte, error) {
	frame, err := gif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeGIF, err)
	}

	b := frame.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgb, rgb.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), frame, b.Min, draw.Over)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out.Bytes(), nil
}

// Detect sniffs the payload type. It returns the MIME type without
// parameters and the canonical extension (with leading dot, may be empty).
func Detect(data []byte) (mime, ext string) {
	m := mimetype.Detect(data)
	mime = m.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime, m.Extension()
}

// ExtensionForMIME maps common notebook image MIME types to extensions.
func ExtensionForMIME(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	}
	if m := mimetype.Lookup(mime); m != nil {
		return m.Extension()
	}
	return ""
}

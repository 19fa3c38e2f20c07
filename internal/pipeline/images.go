package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/fetch"
	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/imaging"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/notebook"
)

// ImageMarker delimits image sources while a cell is being rewritten.
// It is repeated until it no longer occurs in the cell text.
const ImageMarker = "fix_adjust_image"

// Precompiled patterns for image references in markdown cells.
var (
	// <img ... src="..." ...> with an optional closing </img>.
	htmlImagePattern = regexp.MustCompile(`(?i)<img\b[^>]*?\ssrc\s*=\s*["']([^"']+)["'][^>]*>(?:\s*</img>)?`)

	// ![alt](path) and ![alt](path "title").
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^\s"'<>)]+)>?(?:\s+(?:"[^"]*"|'[^']*'|\([^)]*\)))?\s*\)`)

	// Extensions rewritten across a cell once an image was transcoded.
	svgExtension = regexp.MustCompile(`(?i)\.svg`)
	gifExtension = regexp.MustCompile(`(?i)\.gif`)
)

// ImageTranscoder converts images LaTeX cannot include directly.
type ImageTranscoder interface {
	SVGToPDF(svg []byte) ([]byte, error)
	GIFToJPEG(gif []byte) ([]byte, error)
}

// ImageRewriter replaces image references in markdown cells with
// \adjustimage blocks pointing at files registered in a Resources map.
type ImageRewriter struct {
	Fetcher    fetch.Fetcher // nil leaves remote images untouched
	Transcoder ImageTranscoder
	Logger     *logger.Logger
}

// AdjustImage returns the LaTeX block including the resource at key.
func AdjustImage(key string) string {
	return "\\begin{center}\n\\adjustimage{max size={0.9\\linewidth}{0.9\\paperheight}}{" + key + "}\n\\end{center}\n"
}

// NormalizeName flattens a relative path into a single file name by joining
// its components with "__" ("img/photo.svg" -> "img__photo.svg").
// Empty and "." components are dropped, so the result is idempotent.
func NormalizeName(p string) string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' })
	kept := parts[:0]
	for _, part := range parts {
		if part == "." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "__")
}

// Rewrite processes every markdown cell of nb. srcDir resolves relative
// image paths; name is the notebook base name used for resource keys.
func (w *ImageRewriter) Rewrite(ctx context.Context, nb *notebook.Notebook, srcDir, name string, res Resources) error {
	for idx, cell := range nb.Cells {
		if cell.Type != notebook.CellMarkdown {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := w.RewriteCell(ctx, cell, idx, srcDir, name, res)
		if err != nil {
			return fmt.Errorf("cell %d: %w", idx, err)
		}
		cell.SetSource(out)
	}
	return nil
}

// cellState tracks the references resolved within one cell.
type cellState struct {
	w       *ImageRewriter
	cell    *notebook.Cell
	index   int
	srcDir  string
	name    string
	res     Resources
	keys    map[string]string // source -> resource key
	inline  int
	usedSVG bool
	usedGIF bool
}

// RewriteCell returns the rewritten source of a single markdown cell.
func (w *ImageRewriter) RewriteCell(ctx context.Context, cell *notebook.Cell, index int, srcDir, name string, res Resources) (string, error) {
	text := cell.String()
	if !strings.Contains(strings.ToLower(text), "<img") && !strings.Contains(text, "![") {
		return text, nil
	}

	marker := ImageMarker
	for strings.Contains(text, marker) {
		marker += ImageMarker
	}

	st := &cellState{
		w:      w,
		cell:   cell,
		index:  index,
		srcDir: srcDir,
		name:   name,
		res:    res,
		keys:   make(map[string]string),
	}

	var err error
	for _, re := range []*regexp.Regexp{htmlImagePattern, markdownImagePattern} {
		text, err = st.substitute(ctx, text, re, marker)
		if err != nil {
			return "", err
		}
	}

	parts := strings.Split(text, marker)
	for i := 1; i < len(parts); i += 2 {
		parts[i] = st.keys[parts[i]]
	}
	text = strings.Join(parts, "")

	if st.usedSVG {
		text = svgExtension.ReplaceAllLiteralString(text, ".pdf")
	}
	if st.usedGIF {
		text = gifExtension.ReplaceAllLiteralString(text, ".jpg")
	}
	return text, nil
}

// substitute replaces every resolvable match of re with an \adjustimage
// block whose key slot holds the marker-wrapped source.
func (st *cellState) substitute(ctx context.Context, text string, re *regexp.Regexp, marker string) (string, error) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		source := text[m[2]:m[3]]
		ok, err := st.resolve(ctx, source)
		if err != nil {
			return "", err
		}
		if !ok {
			b.WriteString(text[m[0]:m[1]])
			continue
		}
		b.WriteString(AdjustImage(marker + source + marker))
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// resolve loads the image behind source and registers it as a resource.
// It returns false when the reference should be left unchanged.
func (st *cellState) resolve(ctx context.Context, source string) (bool, error) {
	if _, ok := st.keys[source]; ok {
		return true, nil
	}

	var (
		data   []byte
		file   string
		remote bool
		err    error
	)

	switch {
	case fileutil.IsDataURI(source):
		var mime string
		data, mime, err = decodeDataURI(source)
		if err != nil {
			st.log().ImageSkipped(truncate(source), err.Error())
			return false, nil
		}
		st.inline++
		file = fmt.Sprintf("inline_%d_%d%s", st.index, st.inline, imaging.ExtensionForMIME(mime))
		remote = true

	case strings.HasPrefix(source, "attachment:"):
		data, file, err = st.attachment(strings.TrimPrefix(source, "attachment:"))
		if err != nil {
			st.log().ImageSkipped(source, err.Error())
			return false, nil
		}
		remote = true

	case fileutil.IsURL(source):
		if st.w.Fetcher == nil {
			st.log().ImageSkipped(source, "remote fetching disabled")
			return false, nil
		}
		data, err = st.w.Fetcher.Fetch(ctx, source)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			st.log().ImageSkipped(source, err.Error())
			return false, nil
		}
		file = remoteFileName(source, data)
		remote = true

	default:
		data, err = readLocal(st.srcDir, source)
		if err != nil {
			return false, err
		}
		file = NormalizeName(source)
	}

	file, data, err = st.transcode(file, data)
	if err != nil {
		if remote {
			st.log().ImageSkipped(truncate(source), err.Error())
			return false, nil
		}
		return false, err
	}

	key := ResourceKey(st.name, file)
	if st.res.Put(key, data) {
		st.log().ResourceCollision(key, truncate(source))
	}
	st.log().ResourceAdded(key, truncate(source), len(data))
	st.keys[source] = key
	return true, nil
}

// transcode converts SVG to PDF and GIF to JPEG, renaming the file.
func (st *cellState) transcode(file string, data []byte) (string, []byte, error) {
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	switch strings.ToLower(ext) {
	case ".svg":
		out, err := st.w.Transcoder.SVGToPDF(data)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrImageConvert, file, err)
		}
		st.usedSVG = true
		return stem + ".pdf", out, nil
	case ".gif":
		out, err := st.w.Transcoder.GIFToJPEG(data)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrImageConvert, file, err)
		}
		st.usedGIF = true
		return stem + ".jpg", out, nil
	}
	return file, data, nil
}

// attachment decodes a markdown cell attachment.
func (st *cellState) attachment(name string) ([]byte, string, error) {
	bundle, ok := st.cell.Attachments[name]
	if !ok {
		return nil, "", fmt.Errorf("no attachment %q", name)
	}
	for _, mime := range bundle.Types() {
		if !strings.HasPrefix(mime, "image/") && mime != "application/pdf" {
			continue
		}
		payload := string(bundle[mime])
		var data []byte
		if mime == "image/svg+xml" {
			data = []byte(payload)
		} else {
			var err error
			data, err = base64.StdEncoding.DecodeString(stripWhitespace(payload))
			if err != nil {
				return nil, "", fmt.Errorf("decoding attachment %q: %w", name, err)
			}
		}
		file := NormalizeName(name)
		if path.Ext(file) == "" {
			file += imaging.ExtensionForMIME(mime)
		}
		return data, file, nil
	}
	return nil, "", fmt.Errorf("attachment %q has no image payload", name)
}

// readLocal reads an image relative to the notebook directory.
// A percent-encoded path is tried decoded when the raw path does not exist.
func readLocal(srcDir, source string) ([]byte, error) {
	candidates := []string{source}
	if decoded, err := url.PathUnescape(source); err == nil && decoded != source {
		candidates = append(candidates, decoded)
	}

	var firstErr error
	for _, c := range candidates {
		full := filepath.FromSlash(c)
		if !filepath.IsAbs(full) {
			full = filepath.Join(srcDir, full)
		}
		data, err := os.ReadFile(full) // #nosec G304 -- image referenced by the notebook
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
			if errors.Is(err, os.ErrNotExist) {
				firstErr = fmt.Errorf("%w: %s", ErrImageNotFound, full)
			}
		}
	}
	if errors.Is(firstErr, ErrImageNotFound) {
		return nil, firstErr
	}
	return nil, fmt.Errorf("reading image %s: %w", source, firstErr)
}

// remoteFileName derives a file name from the URL path, sniffing the
// payload for an extension when the path has none.
func remoteFileName(raw string, data []byte) string {
	base := ""
	if u, err := url.Parse(raw); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	base = NormalizeName(base)
	if path.Ext(base) == "" {
		_, ext := imaging.Detect(data)
		base += ext
	}
	return base
}

// decodeDataURI decodes a data: URI into its payload and media type.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest := uri[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", errors.New("malformed data URI")
	}
	meta, payload := rest[:comma], rest[comma+1:]

	isBase64 := strings.HasSuffix(strings.ToLower(meta), ";base64")
	mime := meta
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(stripWhitespace(payload))
		if err != nil {
			return nil, "", fmt.Errorf("decoding data URI: %w", err)
		}
		return data, mime, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return []byte(text), mime, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
}

// truncate shortens long sources (data URIs) for log output.
func truncate(s string) string {
	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (st *cellState) log() *logger.Logger {
	if st.w.Logger == nil {
		return logger.Discard()
	}
	return st.w.Logger
}

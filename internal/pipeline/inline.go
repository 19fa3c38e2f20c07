package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
)

// InlineImages replaces local img[src] paths with base64 data URIs so the
// HTML document is self-contained. Relative paths resolve against baseDir.
// A missing file fails the whole document with ErrImageNotFound.
//
// Does NOT rewrite:
//   - remote URLs and existing data URIs
//   - srcset attributes and CSS url() references
//   - video, audio, source elements
func InlineImages(htmlContent, baseDir string, log *logger.Logger) (string, error) {
	if log == nil {
		log = logger.Discard()
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	// Parse HTML - detect if full document or fragment
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	if err := inlineNode(doc, absBaseDir, log); err != nil {
		return "", err
	}

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") ||
		strings.HasPrefix(strings.ToLower(trimmed), "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// inlineNode traverses the DOM and inlines local image sources. It stops at
// the first image that cannot be read.
func inlineNode(n *html.Node, baseDir string, log *logger.Logger) error {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isLocalPath(attr.Val) {
				continue
			}
			uri, err := toDataURI(attr.Val, baseDir, log)
			if err != nil {
				return err
			}
			n.Attr[i].Val = uri
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := inlineNode(c, baseDir, log); err != nil {
			return err
		}
	}
	return nil
}

// isLocalPath returns true if the source refers to a file on disk.
func isLocalPath(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") || strings.HasPrefix(src, "//") {
		return false
	}
	lower := strings.ToLower(src)
	for _, prefix := range []string{"http://", "https://", "data:", "file://"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// toDataURI reads the image at src and encodes it as a data URI.
func toDataURI(src, baseDir string, log *logger.Logger) (string, error) {
	path := src
	if decoded, err := url.PathUnescape(src); err == nil {
		path = decoded
	}
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- image referenced by the notebook
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("inlining %s: %w", src, err)
	}

	mime := mimetype.Detect(data).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	log.Debug("image inlined", "src", path, "mime", mime, "bytes", len(data))
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

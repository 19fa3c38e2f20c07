package assets

import "embed"

//go:embed styles templates
var builtin embed.FS

// NewEmbeddedLoader returns a loader over the assets compiled into the
// binary: the base templates, the article and chapter sets and the
// notebook style.
func NewEmbeddedLoader() *FSLoader {
	return NewFSLoader(builtin)
}

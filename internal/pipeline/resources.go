package pipeline

import (
	"bytes"
	"path"
	"sort"
	"strings"
)

// Resources maps output-relative, slash-separated paths to file contents.
// Keys look like "<name>_files/<file>".
type Resources map[string][]byte

// Put stores data under key and reports whether a different payload was
// already registered under the same key (the new payload wins).
func (r Resources) Put(key string, data []byte) (collided bool) {
	if old, ok := r[key]; ok && !bytes.Equal(old, data) {
		collided = true
	}
	r[key] = data
	return collided
}

// Keys returns the registered keys in sorted order.
func (r Resources) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Writable returns the resources that should be written next to the
// document. SVG sources are dropped: every SVG is referenced by its PDF.
func (r Resources) Writable() Resources {
	out := make(Resources, len(r))
	for k, v := range r {
		if strings.EqualFold(path.Ext(k), ".svg") {
			continue
		}
		out[k] = v
	}
	return out
}

// FilesDir returns the resource directory name for a notebook base name.
func FilesDir(name string) string {
	return name + "_files"
}

// ResourceKey joins a notebook base name and a file name into a resource key.
func ResourceKey(name, file string) string {
	return FilesDir(name) + "/" + file
}

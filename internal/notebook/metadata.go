package notebook

import "strings"

// Metadata is the notebook-level metadata object.
type Metadata map[string]any

// Citation is a cite2c citation entry stored in notebook metadata.
type Citation struct {
	Key   string
	Title string
	URL   string
}

// Title returns metadata.title, if set.
func (m Metadata) Title() string {
	s, _ := m["title"].(string)
	return strings.TrimSpace(s)
}

// Authors returns the names listed in metadata.authors.
// Entries may be plain strings or objects with a "name" field.
func (m Metadata) Authors() []string {
	list, _ := m["authors"].([]any)
	var names []string
	for _, a := range list {
		switch v := a.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				names = append(names, v)
			}
		case map[string]any:
			if n, ok := v["name"].(string); ok && strings.TrimSpace(n) != "" {
				names = append(names, strings.TrimSpace(n))
			}
		}
	}
	return names
}

// Language returns the kernel language, preferring language_info.name.
func (m Metadata) Language() string {
	if info, ok := m["language_info"].(map[string]any); ok {
		if name, ok := info["name"].(string); ok && name != "" {
			return name
		}
	}
	if spec, ok := m["kernelspec"].(map[string]any); ok {
		if lang, ok := spec["language"].(string); ok && lang != "" {
			return lang
		}
	}
	return ""
}

// Citations returns metadata.cite2c.citations keyed by internal cite2c key.
// Entries without a usable object body are ignored.
func (m Metadata) Citations() map[string]Citation {
	cite2c, ok := m["cite2c"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := cite2c["citations"].(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]Citation, len(raw))
	for key, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		c := Citation{Key: key}
		c.Title, _ = entry["title"].(string)
		c.URL, _ = entry["URL"].(string)
		out[key] = c
	}
	return out
}

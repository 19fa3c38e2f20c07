package notebook

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a multiline string field. nbformat allows either a single string
// or a list of lines that concatenate to the full value. Non-string payloads
// (application/json outputs) are kept as their raw JSON text.
type Text string

// UnmarshalJSON accepts a string, a list of strings, or any other JSON value.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '[':
		var lines []string
		if err := json.Unmarshal(trimmed, &lines); err == nil {
			*t = Text(strings.Join(lines, ""))
			return nil
		}
	}

	*t = Text(trimmed)
	return nil
}

// MarshalJSON writes the value as a single JSON string.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

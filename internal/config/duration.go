package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeZero is used to check auto date formats without depending on the clock.
var timeZero time.Time

// Duration is a time.Duration read from YAML as "30s", "2m" or a bare
// number of seconds.
type Duration time.Duration

// UnmarshalYAML implements the goccy/go-yaml InterfaceUnmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	switch v := raw.(type) {
	case nil:
		*d = 0
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case int64:
		*d = Duration(time.Duration(v) * time.Second)
	case uint64:
		*d = Duration(time.Duration(v) * time.Second) // #nosec G115 -- validated as non-negative later
	case float64:
		*d = Duration(v * float64(time.Second))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("duration: unsupported value %v", raw)
	}
	return nil
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("duration: invalid value %q (use 30s, 2m or seconds)", s)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalYAML writes the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Package config loads the YAML configuration shared by nb2latex, nb2pdf
// and nb2html.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
	"github.com/robintibor/convert-notebook-to-latex/internal/dateutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config dir searched by LoadConfig.
const AppDirName = "nbconvert-latex"

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxTitleLength     = 200
	MaxAuthorLength    = 100
	MaxAuthors         = 50
	MaxDateLength      = 60
	MaxNameLength      = 64  // template set, style, engine names
	MaxUserAgentLength = 256 // HTTP header
	MaxURLLength       = 2048
	MaxTagRules        = 100
	MaxTagLength       = 200
)

// Range limits.
const (
	MaxLatexRuns = 10
	MinMargin    = 0.25 // inches
	MaxMargin    = 3.0  // inches
)

// Accepted enum values.
var (
	PageSizes    = []string{"letter", "a4", "a5", "legal"}
	Orientations = []string{"portrait", "landscape"}
	Engines      = []string{"xelatex", "pdflatex", "lualatex"}
	PDFEngines   = []string{PDFEngineLatex, PDFEngineChrome}
)

// PDF engines.
const (
	PDFEngineLatex  = "latex"
	PDFEngineChrome = "chrome"
)

// Config holds all configuration for notebook conversion. Zero values mean
// "use the tool's default".
type Config struct {
	Bibliography string         `yaml:"bibliography"` // .bib file used for cite2c remapping and bibtex
	Latex        LatexConfig    `yaml:"latex"`
	Document     DocumentConfig `yaml:"document"`
	Page         PageConfig     `yaml:"page"`
	Fetch        FetchConfig    `yaml:"fetch"`
	HTML         HTMLConfig     `yaml:"html"`
	PDF          PDFConfig      `yaml:"pdf"`
	Tags         []TagRule      `yaml:"tags"` // appended to the built-in HTML tag rewrites
	Assets       AssetsConfig   `yaml:"assets"`
	Output       OutputConfig   `yaml:"output"`
	Log          LogConfig      `yaml:"log"`
}

// LatexConfig defines LaTeX export and compilation options.
type LatexConfig struct {
	Template  string `yaml:"template"`  // template set name ("article", "chapter", or under assets.basePath)
	Chapters  bool   `yaml:"chapters"`  // # headings become \chapter
	Footnotes *bool  `yaml:"footnotes"` // \href URLs repeated as footnotes (nil = tool default)
	Engine    string `yaml:"engine"`    // xelatex, pdflatex, lualatex
	Runs      int    `yaml:"runs"`      // engine passes (0 = default 3)
	BibStyle  string `yaml:"bibStyle"`  // \bibliographystyle (default "unsrt")
}

// DocumentConfig overrides notebook metadata in the title block.
type DocumentConfig struct {
	Title   string   `yaml:"title"`
	Authors []string `yaml:"authors"`
	Date    string   `yaml:"date"` // literal, "auto" or "auto:FORMAT"
}

// PageConfig defines page settings for LaTeX geometry and browser printing.
type PageConfig struct {
	Size        string  `yaml:"size"`        // letter, a4, a5, legal (default: letter)
	Orientation string  `yaml:"orientation"` // portrait, landscape (default: portrait)
	Margin      float64 `yaml:"margin"`      // inches (default: 1)
}

// FetchConfig defines remote image download options.
type FetchConfig struct {
	Timeout   Duration `yaml:"timeout"` // 0 = no timeout
	UserAgent string   `yaml:"userAgent"`
}

// HTMLConfig defines HTML export options.
type HTMLConfig struct {
	Style          string `yaml:"style"`          // stylesheet name (default: notebook)
	HighlightStyle string `yaml:"highlightStyle"` // chroma style (default: friendly)
	InlineImages   *bool  `yaml:"inlineImages"`   // nil = true
	MathJax        *bool  `yaml:"mathjax"`        // nil = true
	MathJaxURL     string `yaml:"mathjaxURL"`
}

// PDFConfig defines PDF generation options.
type PDFConfig struct {
	Engine  string   `yaml:"engine"`  // latex or chrome (default: latex)
	Timeout Duration `yaml:"timeout"` // per notebook, 0 = default
}

// TagRule is one literal HTML tag replacement.
type TagRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = notebook directory
}

// LogConfig defines logging options.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Validate checks field lengths, enums and ranges.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"bibliography", c.Bibliography, MaxPathLength},
		{"latex.template", c.Latex.Template, MaxNameLength},
		{"latex.bibStyle", c.Latex.BibStyle, MaxNameLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.date", c.Document.Date, MaxDateLength},
		{"fetch.userAgent", c.Fetch.UserAgent, MaxUserAgentLength},
		{"html.style", c.HTML.Style, MaxNameLength},
		{"html.highlightStyle", c.HTML.HighlightStyle, MaxNameLength},
		{"html.mathjaxURL", c.HTML.MathJaxURL, MaxURLLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
	}
	for _, chk := range checks {
		if err := validateFieldLength(chk.field, chk.value, chk.max); err != nil {
			return err
		}
	}

	if c.Latex.Template != "" {
		if err := assets.ValidateAssetName(c.Latex.Template); err != nil {
			return fmt.Errorf("%w: latex.template: %v", ErrInvalidValue, err)
		}
	}
	if c.HTML.Style != "" {
		if err := assets.ValidateAssetName(c.HTML.Style); err != nil {
			return fmt.Errorf("%w: html.style: %v", ErrInvalidValue, err)
		}
	}
	if err := validateEnum("latex.engine", c.Latex.Engine, Engines); err != nil {
		return err
	}
	if c.Latex.Runs < 0 || c.Latex.Runs > MaxLatexRuns {
		return fmt.Errorf("%w: latex.runs: must be between 0 and %d, got %d", ErrInvalidValue, MaxLatexRuns, c.Latex.Runs)
	}

	if len(c.Document.Authors) > MaxAuthors {
		return fmt.Errorf("%w: document.authors (%d entries, max %d)", ErrFieldTooLong, len(c.Document.Authors), MaxAuthors)
	}
	for i, a := range c.Document.Authors {
		if err := validateFieldLength(fmt.Sprintf("document.authors[%d]", i), a, MaxAuthorLength); err != nil {
			return err
		}
	}
	if strings.HasPrefix(strings.ToLower(c.Document.Date), dateutil.Auto) {
		if _, err := dateutil.Resolve(c.Document.Date, timeZero); err != nil {
			return fmt.Errorf("document.date: %w", err)
		}
	}

	if err := validateEnum("page.size", c.Page.Size, PageSizes); err != nil {
		return err
	}
	if err := validateEnum("page.orientation", c.Page.Orientation, Orientations); err != nil {
		return err
	}
	if c.Page.Margin != 0 && (c.Page.Margin < MinMargin || c.Page.Margin > MaxMargin) {
		return fmt.Errorf("%w: page.margin: must be between %.2f and %.2f, got %.2f", ErrInvalidValue, MinMargin, MaxMargin, c.Page.Margin)
	}

	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout: must not be negative", ErrInvalidValue)
	}
	if c.PDF.Timeout < 0 {
		return fmt.Errorf("%w: pdf.timeout: must not be negative", ErrInvalidValue)
	}
	if err := validateEnum("pdf.engine", c.PDF.Engine, PDFEngines); err != nil {
		return err
	}

	if len(c.Tags) > MaxTagRules {
		return fmt.Errorf("%w: tags (%d rules, max %d)", ErrFieldTooLong, len(c.Tags), MaxTagRules)
	}
	for i, r := range c.Tags {
		if r.From == "" {
			return fmt.Errorf("%w: tags[%d].from: required", ErrInvalidValue, i)
		}
		if err := validateFieldLength(fmt.Sprintf("tags[%d].from", i), r.From, MaxTagLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("tags[%d].to", i), r.To, MaxTagLength); err != nil {
			return err
		}
	}

	if c.Log.Level != "" {
		if _, err := logger.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %v", ErrInvalidValue, err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts empty values and, case-insensitively, the allowed ones.
func validateEnum(fieldName, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, strings.ToLower(value)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns an empty configuration: every tool default applies.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFile(configPath, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/nbconvert-latex/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

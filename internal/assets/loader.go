package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// AssetLoader defines the contract for loading stylesheets and export
// template sets.
// Implementations may load from embedded assets, filesystem, S3, database, etc.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the block overrides of a template set by name.
	// Returns ErrTemplateSetNotFound if the set doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// Asset locations inside a loader's filesystem.
const (
	stylesDir    = "styles"
	templatesDir = "templates"
	styleExt     = ".css"
)

// FSLoader loads assets laid out as styles/{name}.css and
// templates/{name}/{latex,html}.tmpl from an fs.FS.
type FSLoader struct {
	fsys fs.FS
	// check runs before each read with the slash-separated path inside fsys.
	check func(name string) error
}

// NewFSLoader creates a loader reading from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// LoadStyle reads styles/{name}.css.
func (l *FSLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := l.read(path.Join(stylesDir, name+styleExt))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// LoadTemplateSet reads templates/{name}/latex.tmpl and html.tmpl.
// A set with neither file does not exist; a single missing file leaves that
// format on the base template.
func (l *FSLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	ts := &TemplateSet{Name: name}
	found := 0
	for file, dst := range map[string]*string{
		LaTeXTemplateFile: &ts.LaTeX,
		HTMLTemplateFile:  &ts.HTML,
	} {
		content, err := l.read(path.Join(templatesDir, name, file))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		*dst = string(content)
		found++
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	return ts, nil
}

// read returns the content at name. Missing files keep fs.ErrNotExist in
// their chain; other failures wrap ErrAssetRead.
func (l *FSLoader) read(name string) ([]byte, error) {
	if l.check != nil {
		if err := l.check(name); err != nil {
			return nil, err
		}
	}
	content, err := fs.ReadFile(l.fsys, name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return content, err
}

// Compile-time interface check.
var _ AssetLoader = (*FSLoader)(nil)

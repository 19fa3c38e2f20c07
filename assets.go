package nbconvert

import (
	"errors"

	"github.com/robintibor/convert-notebook-to-latex/internal/assets"
)

// Asset name constants for built-in styles and template sets.
const (
	// DefaultStyle is the name of the built-in HTML stylesheet.
	DefaultStyle = assets.DefaultStyleName

	// TemplateArticle renders a standalone LaTeX document (the default).
	TemplateArticle = assets.ArticleTemplateSetName

	// TemplateChapter renders the notebook body only, for \include in a
	// larger document.
	TemplateChapter = assets.ChapterTemplateSetName
)

// AssetLoader defines the contract for loading stylesheets and template sets.
// Implementations may load from filesystem, embedded assets, a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the LaTeX and HTML overrides of a set by name.
	// Returns ErrTemplateNotFound if the template set doesn't exist.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// TemplateSet holds the block overrides of one document style. Both
// templates redefine blocks of the base templates; either may be empty.
type TemplateSet struct {
	Name  string // Identifier (name or path)
	LaTeX string // text/template overrides, ((* *)) delimiters
	HTML  string // html/template overrides
}

// NewTemplateSet creates a TemplateSet from LaTeX and HTML overrides.
// This is a convenience constructor for users providing templates directly.
func NewTemplateSet(name, latex, html string) *TemplateSet {
	return &TemplateSet{
		Name:  name,
		LaTeX: latex,
		HTML:  html,
	}
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for HTML stylesheets
//   - templates/{name}/latex.tmpl and html.tmpl for template sets
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps internal AssetResolver to return public types.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplateSet(name string) (*TemplateSet, error) {
	ts, err := a.resolver.LoadTemplateSet(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &TemplateSet{
		Name:  ts.Name,
		LaTeX: ts.LaTeX,
		HTML:  ts.HTML,
	}, nil
}

// convertAssetError maps internal asset errors to public errors.
// Not-found errors are re-exported as is and pass through.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return &wrappedAssetError{sentinel: ErrInvalidAssetPath, original: err}
	case errors.Is(err, assets.ErrInvalidAssetName):
		// Invalid name means not found
		return &wrappedAssetError{sentinel: ErrStyleNotFound, original: err}
	default:
		return err
	}
}

// wrappedAssetError preserves the original message via Error() and
// supports errors.Is() matching against the public sentinel via Unwrap().
type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}

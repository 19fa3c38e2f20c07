// Package assets provides the export templates and CSS styles used to render
// notebooks. Assets can be loaded from embedded files or custom filesystem
// paths.
//
// # Loaders
//
// FSLoader reads assets from any fs.FS. NewEmbeddedLoader wraps the files
// compiled into the binary: the base templates, the "article" and "chapter"
// template sets and the "notebook" style. NewFilesystemLoader wraps a
// directory on disk and refuses files whose real path leaves it.
//
// AssetResolver is what the converter uses. It asks a custom directory first
// and the embedded files second, moving on only when an asset is missing.
//
// # Template Sets
//
// A template set only overrides named blocks of the base templates
// (header, body, any_cell, markdowncell, codecell, rawcell, input, output,
// stream, execute_result, display_data, data, error, figure, footer). A set
// may ship a LaTeX file, an HTML file or both.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # HTML export stylesheet
//	└── templates/
//	    └── {name}/
//	        ├── latex.tmpl       # LaTeX block overrides, ((* *)) delimiters
//	        └── html.tmpl        # HTML block overrides
//
// # Security
//
// Asset names may not contain separators or dots. Filesystem loaders resolve
// symlinks and report ErrPathTraversal for targets outside basePath.
package assets

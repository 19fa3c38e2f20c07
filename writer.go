package nbconvert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
	"github.com/robintibor/convert-notebook-to-latex/internal/logger"
	"github.com/robintibor/convert-notebook-to-latex/internal/pipeline"
)

// Writer stores conversion results on disk.
type Writer struct {
	// OutDir receives "<name><ext>" and the "<name>_files" directory.
	// Empty means the current directory.
	OutDir string
	// Logger reports written files. Nil discards.
	Logger *log.Logger
}

// Write stores res under w.OutDir and returns the path of the main file.
// LaTeX results also get their "<name>_files" directory with every
// resource; the directory is created even when there is nothing to put in it.
func (w *Writer) Write(res *Result) (string, error) {
	dir := w.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, fileutil.DirPermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if res.Format == FormatLaTeX {
		if err := w.writeResources(dir, res); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, res.Name+res.Format.Extension())
	if err := w.WriteTo(res, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTo stores the body of res at path, ignoring resources.
func (w *Writer) WriteTo(res *Result, path string) error {
	if err := os.WriteFile(path, res.Body, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	w.log().Info("wrote output", "path", path, "size", len(res.Body))
	return nil
}

// writeResources creates the files directory of res and writes each
// resource below dir. Keys escaping dir are rejected.
func (w *Writer) writeResources(dir string, res *Result) error {
	filesDir := filepath.Join(dir, pipeline.FilesDir(res.Name))
	if fileutil.DirExists(filesDir) {
		w.log().Info("files directory already exists", "path", filesDir)
	} else if err := os.MkdirAll(filesDir, fileutil.DirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if err := fileutil.WriteTree(dir, res.Resources); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	w.log().Debug("wrote resources", "dir", filesDir, "count", len(res.Resources))
	return nil
}

func (w *Writer) log() *logger.Logger {
	return logger.Wrap(w.Logger)
}

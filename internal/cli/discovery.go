package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
)

// Sentinel errors for notebook discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .ipynb extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrNoNotebooks        = errors.New("no notebooks found")
)

const (
	notebookExt    = ".ipynb"
	checkpointsDir = ".ipynb_checkpoints"
)

// FileToConvert represents a single notebook to process.
type FileToConvert struct {
	InputPath string
	// OutputDir receives "<name><ext>" and "<name>_files/".
	OutputDir string
	// OutputPath, when set, is the exact output file (nb2html).
	OutputPath string
}

// discoverFiles finds the notebooks named by inputs. Directories are walked
// recursively, skipping Jupyter checkpoints. With outputDir empty, outputs
// go next to each notebook; otherwise the layout below each input
// directory is mirrored under outputDir.
func discoverFiles(inputs []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateNotebookExtension(input); err != nil {
				return nil, err
			}
			files = append(files, FileToConvert{
				InputPath: input,
				OutputDir: resolveOutputDir(input, outputDir, ""),
			})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if d.Name() == checkpointsDir {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), notebookExt) {
				return nil
			}
			files = append(files, FileToConvert{
				InputPath: path,
				OutputDir: resolveOutputDir(path, outputDir, input),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoNotebooks, strings.Join(inputs, ", "))
	}
	return files, nil
}

// resolveOutputDir determines the output directory of a notebook.
func resolveOutputDir(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return filepath.Dir(inputPath)
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath))
		}
	}

	return outputDir
}

// splitLegacyOutputDir recognizes "nb2pdf <notebook> <output_directory>":
// two positionals where only the first is a notebook.
func splitLegacyOutputDir(args []string) (inputs []string, outputDir string) {
	if len(args) == 2 &&
		strings.EqualFold(filepath.Ext(args[0]), notebookExt) &&
		!strings.EqualFold(filepath.Ext(args[1]), notebookExt) {
		if info, err := os.Stat(args[1]); err != nil || !containsNotebooks(args[1], info) {
			return args[:1], args[1]
		}
	}
	return args, ""
}

// containsNotebooks reports whether a directory holds .ipynb files at its top level.
func containsNotebooks(dir string, info os.FileInfo) bool {
	if !info.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*"+notebookExt))
	return err == nil && len(matches) > 0
}

// validateNotebookExtension checks that the file has a .ipynb extension.
func validateNotebookExtension(path string) error {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, notebookExt) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > nbconvert.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, nbconvert.MaxPoolSize)
	}
	return nil
}

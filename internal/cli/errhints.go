package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
	"github.com/robintibor/convert-notebook-to-latex/internal/hints"
)

// errorHints selects the hint appended to an error message.
type errorHints struct {
	engine     string // TeX engine in use
	configName string // --config value
}

// hint returns an actionable hint for err, or "".
func (h errorHints) hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, nbconvert.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, nbconvert.ErrLatexEngine):
		engine := h.engine
		if engine == "" {
			engine = config.Engines[0]
		}
		return hints.ForLatexEngine(engine, config.Engines)
	case errors.Is(err, nbconvert.ErrLatexCompile):
		return hints.ForLatexCompile()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(configCandidates(h.configName))
	case errors.Is(err, nbconvert.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, nbconvert.ErrTemplateNotFound):
		return hints.ForTemplateSetNotFound([]string{nbconvert.TemplateArticle, nbconvert.TemplateChapter})
	}
	return ""
}

// configCandidates lists the files LoadConfig searches for name.
func configCandidates(name string) []string {
	if name == "" {
		return nil
	}
	paths := []string{name + ".yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, config.AppDirName, name+".yaml"))
	}
	return paths
}

// Package hints turns common failures into short suggestions printed after
// the error message, as "\n  hint: <text>".
package hints

import (
	"os"
	"os/exec"
	"strings"

	"github.com/robintibor/convert-notebook-to-latex/internal/fileutil"
)

// IsInContainer reports whether the process runs under Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// LookPath finds executables; tests replace it.
var LookPath = exec.LookPath

// ciVars are set by the CI systems we know of.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect returns hints for failures to start headless Chrome.
func ForBrowserConnect() string {
	var out []string
	if (onCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		out = append(out, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		out = append(out, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(out...)
}

func onCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForLatexEngine returns hints when the TeX engine cannot be started,
// naming the supported engines found on PATH.
func ForLatexEngine(engine string, supported []string) string {
	out := []string{"install a TeX distribution (TeX Live, MiKTeX) providing " + engine}

	var found []string
	for _, name := range supported {
		if name == engine {
			continue
		}
		if _, err := LookPath(name); err == nil {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		out = append(out, "or use --engine "+strings.Join(found, "|"))
	}

	return join(append(out, "or use --webpdf to print through Chrome")...)
}

// ForLatexCompile points at the intermediate .tex file.
func ForLatexCompile() string {
	return join("run with --latex to inspect the generated .tex file")
}

// ForBibliography is shown when citations cannot be resolved.
func ForBibliography(path string) string {
	return join("no bibliography at " + path + "; use --bib /path/to/file.bib")
}

// ForTimeout suggests a longer timeout.
func ForTimeout() string {
	return join("for large notebooks, use --timeout flag")
}

// ForConfigNotFound suggests --config and, when one of searchedPaths lies
// in the user config directory, creating that file.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/nbconvert-latex") {
			return join(hint + " or create " + p)
		}
	}
	return join(hint)
}

// ForOutputDirectory is shown when output files cannot be written.
func ForOutputDirectory() string {
	return join("check parent directory exists and is writable")
}

// ForTemplateSetNotFound lists the built-in template sets.
func ForTemplateSetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return join("available: " + strings.Join(available, ", "))
}

// join renders hints as one "hint:" line, or "" when there are none.
func join(hints ...string) string {
	s := strings.Join(hints, "; ")
	if s == "" {
		return ""
	}
	return "\n  hint: " + s
}

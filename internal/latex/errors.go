package latex

import "errors"

// Sentinel errors for LaTeX compilation.
var (
	// ErrEngineNotFound indicates the LaTeX engine executable is not on PATH.
	ErrEngineNotFound = errors.New("LaTeX engine not found")

	// ErrCompile indicates the engine exited with an error.
	ErrCompile = errors.New("LaTeX compilation failed")

	// ErrNoOutput indicates the engine succeeded but produced no PDF.
	ErrNoOutput = errors.New("LaTeX engine produced no PDF")

	// ErrWorkDir indicates the build directory could not be prepared.
	ErrWorkDir = errors.New("failed to prepare LaTeX build directory")
)

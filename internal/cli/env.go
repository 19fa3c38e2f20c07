package cli

import (
	"io"
	"os"
	"time"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and converter creation.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config // used when --config is not given
	NewPool func(size int, opts ...nbconvert.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  config.DefaultConfig(),
		NewPool: NewConverterPool,
	}
}

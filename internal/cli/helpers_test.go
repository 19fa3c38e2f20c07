package cli

// Notes:
// - Test helpers shared by the cli tests: fake converters and pools standing
//   in for the TeX engine and Chrome, and an Environment capturing output.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
	"github.com/robintibor/convert-notebook-to-latex/internal/config"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const testNotebook = `{
 "nbformat": 4,
 "nbformat_minor": 5,
 "metadata": {"title": "CLI Notebook"},
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Intro\n", "\n", "See [Go](https://go.dev)."]},
  {"cell_type": "code", "metadata": {}, "execution_count": 1, "source": ["1 + 1"], "outputs": [
   {"output_type": "execute_result", "execution_count": 1, "metadata": {}, "data": {"text/plain": ["2"]}}
  ]}
 ]
}`

// writeNotebook writes testNotebook to dir/name and returns its path.
func writeNotebook(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(testNotebook), 0o644); err != nil {
		t.Fatalf("write notebook: %v", err)
	}
	return path
}

// testEnv returns an Environment capturing output, with a fixed clock.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Environment{
		Now:     func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) },
		Stdout:  stdout,
		Stderr:  stderr,
		Config:  config.DefaultConfig(),
		NewPool: NewConverterPool,
	}, stdout, stderr
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeConverter returns a fixed PDF body and records its inputs.
type fakeConverter struct {
	mu     sync.Mutex
	inputs []nbconvert.Input
	err    error
	delay  time.Duration
}

var _ Converter = (*fakeConverter)(nil)

func (f *fakeConverter) Convert(ctx context.Context, input nbconvert.Input) (*nbconvert.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	format := input.Format
	if format == "" {
		format = nbconvert.FormatLaTeX
	}
	name := filepath.Base(input.Path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return &nbconvert.Result{Name: name, Format: format, Body: []byte("%PDF-1.5 fake")}, nil
}

func (f *fakeConverter) Inputs() []nbconvert.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nbconvert.Input(nil), f.inputs...)
}

// fakePool hands out one shared fakeConverter and tracks concurrency.
type fakePool struct {
	conv       *fakeConverter
	size       int
	acquireErr error

	mu       sync.Mutex
	inUse    int
	maxInUse int
	closed   bool
	gotOpts  int
	releases int
}

var _ Pool = (*fakePool)(nil)

func (p *fakePool) Acquire() (Converter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse++
	p.maxInUse = max(p.maxInUse, p.inUse)
	return p.conv, nil
}

func (p *fakePool) Release(Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse--
	p.releases++
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// withFakePool makes env create p, recording the pool size and option count.
func withFakePool(env *Environment, p *fakePool) {
	env.NewPool = func(size int, opts ...nbconvert.Option) Pool {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.size = size
		p.gotOpts = len(opts)
		return p
	}
}

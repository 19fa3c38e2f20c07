package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
)

// ErrConverterInit reports a converter the pool failed to create.
var ErrConverterInit = errors.New("failed to initialize converter")

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	format       nbconvert.Format
	bibliography string
	document     *nbconvert.Document
	page         *nbconvert.PageSettings
	logger       *log.Logger
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch converts files with at most pool.Size() conversions in flight.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))
	var g errgroup.Group
	g.SetLimit(pool.Size())

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = ConversionResult{InputPath: f.InputPath, Err: err}
				return nil
			}

			conv, err := pool.Acquire()
			if err != nil {
				results[i] = ConversionResult{
					InputPath: f.InputPath,
					Err:       fmt.Errorf("%w: %w", ErrConverterInit, err),
				}
				return nil
			}
			defer pool.Release(conv)

			results[i] = convertFile(ctx, conv, f, params)
			return nil
		})
	}

	// Workers report failures through results.
	_ = g.Wait()
	return results
}

// convertFile converts a single notebook and writes its outputs.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}

	res, err := conv.Convert(ctx, nbconvert.Input{
		Path:         f.InputPath,
		Format:       params.format,
		Bibliography: params.bibliography,
		Document:     params.document,
		Page:         params.page,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	w := &nbconvert.Writer{OutDir: f.OutputDir, Logger: params.logger}
	if f.OutputPath != "" {
		err = w.WriteTo(res, f.OutputPath)
		result.OutputPath = f.OutputPath
	} else {
		result.OutputPath, err = w.Write(res)
	}
	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers
// and returns the number of failures.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, h errorHints, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, h.hint(r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// batchError reports failed conversions already printed by
// printResultsWithWriter. It unwraps to the first failure so the exit
// code reflects its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversions failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// newBatchError returns nil when every conversion succeeded.
func newBatchError(results []ConversionResult) error {
	summary := countResults(results)
	if summary.Failed == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			return &batchError{failed: summary.Failed, total: len(results), first: r.Err}
		}
	}
	return nil
}

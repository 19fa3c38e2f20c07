package cli

import (
	"context"

	nbconvert "github.com/robintibor/convert-notebook-to-latex"
)

// Converter is the conversion contract the batch loop depends on.
type Converter interface {
	Convert(ctx context.Context, input nbconvert.Input) (*nbconvert.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*nbconvert.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// converterPool adapts nbconvert.ConverterPool to Pool.
type converterPool struct {
	pool *nbconvert.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

// NewConverterPool creates a lazily filled pool of n converters sharing opts.
func NewConverterPool(n int, opts ...nbconvert.Option) Pool {
	return &converterPool{pool: nbconvert.NewConverterPool(n, opts...)}
}

func (p *converterPool) Acquire() (Converter, error) {
	c, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *converterPool) Release(c Converter) {
	if conv, ok := c.(*nbconvert.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int { return p.pool.Size() }

func (p *converterPool) Close() error { return p.pool.Close() }

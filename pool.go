package nbconvert

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent conversions. Each one may hold a TeX
	// engine or a Chrome instance (~200MB).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for engine and browser child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire once Close has been called.
var ErrPoolClosed = errors.New("converter pool closed")

// ConverterPool manages Converter instances for parallel batch conversion.
// Each converter owns its browser, so webpdf conversions run in parallel.
// Converters are created lazily on first acquire to avoid startup delay.
//
// The pool holds size creation tokens. Acquire takes either an idle
// converter or a token; a failed creation puts its token back, so a blocked
// caller always wakes up and either reuses a converter or retries creation.
type ConverterPool struct {
	size   int
	opts   []Option
	newFn  func(...Option) (*Converter, error)
	idle   chan *Converter
	tokens chan struct{}
	done   chan struct{}

	mu         sync.Mutex
	converters []*Converter
	closed     bool
}

// NewConverterPool creates a pool with capacity for n converters built
// with opts. Converters are created when acquired, not at pool creation.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	if n < 1 {
		n = 1
	}

	p := &ConverterPool{
		size:   n,
		opts:   opts,
		newFn:  NewConverter,
		idle:   make(chan *Converter, n),
		tokens: make(chan struct{}, n),
		done:   make(chan struct{}),
	}
	for range n {
		p.tokens <- struct{}{}
	}
	return p
}

// Acquire gets a converter from the pool, creating one if needed.
// Blocks while every converter is in use.
func (p *ConverterPool) Acquire() (*Converter, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case c := <-p.idle:
		return c, nil
	default:
	}

	select {
	case <-p.done:
		return nil, ErrPoolClosed
	case c := <-p.idle:
		return c, nil
	case <-p.tokens:
		return p.create()
	}
}

// create builds a converter while holding a creation token.
func (p *ConverterPool) create() (*Converter, error) {
	c, err := p.newFn(p.opts...)
	if err != nil {
		p.tokens <- struct{}{}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.Join(ErrPoolClosed, c.Close())
	}
	p.converters = append(p.converters, c)
	return c, nil
}

// Release returns a converter to the pool. It is a no-op after Close.
func (p *ConverterPool) Release(c *Converter) {
	select {
	case <-p.done:
	case p.idle <- c:
	}
}

// Close releases all browser resources.
// Returns an aggregated error if multiple converters fail to close.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, c := range converters {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

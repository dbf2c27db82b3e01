package pdfserve

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one engine is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// enginePool manages a pool of Engine instances for concurrent requests.
// Each engine has its own browser instance, enabling true parallelism.
// Engines are created lazily on first acquire to avoid startup delay.
type enginePool struct {
	size    int
	newFn   func() Engine
	engines []Engine
	sem     chan Engine
	mu      sync.Mutex
	created int
	closed  bool
}

// newEnginePool creates a pool with capacity for n engines built by newFn.
func newEnginePool(n int, newFn func() Engine) *enginePool {
	if n < 1 {
		n = 1
	}

	return &enginePool{
		size:    n,
		newFn:   newFn,
		engines: make([]Engine, 0, n),
		sem:     make(chan Engine, n),
	}
}

// acquire gets an engine from the pool, creating one if needed.
// Blocks if all engines are in use. Panics if the pool was closed;
// acquiring after close is a lifecycle bug in the caller.
func (p *enginePool) acquire() Engine {
	// Try to get an existing engine (non-blocking)
	select {
	case eng, ok := <-p.sem:
		if !ok {
			panic("pdfserve: engine pool used after close")
		}
		return eng
	default:
	}

	// Check if we can create a new engine
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("pdfserve: engine pool used after close")
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new engine outside the lock
		eng := p.newFn()

		p.mu.Lock()
		p.engines = append(p.engines, eng)
		p.mu.Unlock()

		return eng
	}
	p.mu.Unlock()

	// All engines created, wait for one to be released
	eng, ok := <-p.sem
	if !ok {
		panic("pdfserve: engine pool used after close")
	}
	return eng
}

// release returns an engine to the pool. The send happens under the lock so
// it cannot race a concurrent close of the channel; the channel capacity
// equals the engine cap, so the send never blocks.
func (p *enginePool) release(eng Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- eng
}

// close releases all browser resources.
// Returns an aggregated error if multiple engines fail to close.
func (p *enginePool) close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	// Drain buffered engines so a late acquire sees a closed channel
	// instead of a stale engine. Every created engine is closed below.
	for range p.sem {
	}
	engines := p.engines
	p.mu.Unlock()

	var errs []error
	for _, eng := range engines {
		if err := eng.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolvePoolSize determines the engine pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
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

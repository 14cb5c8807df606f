package mdsite

import (
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one renderer is available.
	MinPoolSize = 1

	// MaxPoolSize caps renderer instances; past this point a build is
	// bound by disk I/O, not conversion.
	MaxPoolSize = 8
)

// RendererPool manages a pool of Renderer instances for parallel builds.
// Renderers are created lazily on first acquire.
type RendererPool struct {
	size        int
	newRenderer func() *Renderer
	sem         chan *Renderer
	mu          sync.Mutex
	created     int
}

// NewRendererPool creates a pool with capacity for n Renderer instances
// produced by newRenderer. Renderers are created lazily when acquired,
// not at pool creation.
func NewRendererPool(n int, newRenderer func() *Renderer) *RendererPool {
	if n < 1 {
		n = 1
	}

	return &RendererPool{
		size:        n,
		newRenderer: newRenderer,
		sem:         make(chan *Renderer, n),
	}
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks if all renderers are in use.
func (p *RendererPool) Acquire() *Renderer {
	// Try to get an existing renderer (non-blocking)
	select {
	case r := <-p.sem:
		return r
	default:
	}

	// Check if we can create a new renderer
	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		return p.newRenderer()
	}
	p.mu.Unlock()

	// All renderers created, wait for one to be released
	return <-p.sem
}

// Release returns a renderer to the pool.
func (p *RendererPool) Release(r *Renderer) {
	p.sem <- r
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate from GOMAXPROCS (adjusted by automaxprocs in containers)
	n := runtime.GOMAXPROCS(0)

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

package cryptox

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrent argon2 computations so that bursts of
// signups or signins cannot exhaust memory or starve I/O-bound handlers.
// Each computation allocates Params.Memory KiB for its duration.
type Pool struct {
	hasher *Hasher
	sem    *semaphore.Weighted
}

// NewPool allows at most workers concurrent computations. workers <= 0
// means runtime.GOMAXPROCS(0).
func NewPool(h *Hasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{hasher: h, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash waits for a free slot or ctx cancellation.
func (p *Pool) Hash(ctx context.Context, password []byte) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	return p.hasher.Hash(password)
}

// Verify waits for a free slot or ctx cancellation.
func (p *Pool) Verify(ctx context.Context, password []byte, encoded string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	return p.hasher.Verify(password, encoded)
}

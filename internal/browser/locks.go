// File: internal/browser/locks.go
package browser

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ProfileLocks serializes session launches per user data directory. A
// profile's storage directory tolerates exactly one live browser process;
// today's supervisor runs tasks strictly in sequence, but the lock keeps that
// invariant enforced at the resource rather than relying on callers staying
// sequential.
type ProfileLocks struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewProfileLocks creates an empty lock registry.
func NewProfileLocks() *ProfileLocks {
	return &ProfileLocks{locks: make(map[string]*semaphore.Weighted)}
}

func (p *ProfileLocks) lockFor(dir string) *semaphore.Weighted {
	p.mu.Lock()
	defer p.mu.Unlock()
	sem, ok := p.locks[dir]
	if !ok {
		sem = semaphore.NewWeighted(1)
		p.locks[dir] = sem
	}
	return sem
}

// Acquire blocks until the directory is free or the context ends. The
// returned release function must be called exactly once.
func (p *ProfileLocks) Acquire(ctx context.Context, dir string) (release func(), err error) {
	sem := p.lockFor(dir)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}

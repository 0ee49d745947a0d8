// Package gate implements the readiness gate query consumers block on
// until the first harvest-and-build cycle completes.
package gate

import (
	"sync"
	"time"
)

// Gate is a one-shot, resettable readiness signal. The zero value is
// not ready.
type Gate struct {
	mu    sync.Mutex
	ready bool
	ch    chan struct{}
}

// New returns a gate in the not-ready state.
func New() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// MarkReady signals readiness, releasing all current and future waiters.
func (g *Gate) MarkReady() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return
	}
	g.ready = true
	close(g.ch)
}

// MarkNotReady resets the gate so waiters block again.
func (g *Gate) MarkNotReady() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ready {
		return
	}
	g.ready = false
	g.ch = make(chan struct{})
}

// Ready reports the current state without blocking.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Wait blocks until the gate is ready or the timeout elapses. It
// returns false on timeout so callers can surface a distinct
// still-loading condition.
func (g *Gate) Wait(timeout time.Duration) bool {
	g.mu.Lock()
	ch := g.ch
	ready := g.ready
	g.mu.Unlock()
	if ready {
		return true
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}

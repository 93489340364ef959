// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package mcstr implements managed strings: host-owned text cells exchanged
// across the plugin boundary by opaque handle. Plugins read and replace the
// contents through accessors and never own the backing storage, so text can
// cross the boundary without transferring allocation ownership.
package mcstr

import "sync"

// Handle identifies a managed string cell. The zero handle is never valid.
type Handle uint64

// Pool owns managed string cells. Cells live as long as the pool; there is
// no per-cell free. Safe for concurrent use.
type Pool struct {
	mu    sync.RWMutex
	next  Handle
	cells map[Handle]string
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		cells: make(map[Handle]string),
	}
}

// New allocates a cell holding s and returns its handle.
func (p *Pool) New(s string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.next++
	p.cells[p.next] = s
	return p.next
}

// Get returns the current contents of h. Unknown handles read as empty.
func (p *Pool) Get(h Handle) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.cells[h]
	return s, ok
}

// Set replaces the contents of h and returns the same handle. The prior
// contents are not observable afterwards. Setting an unknown handle fails
// without allocating.
func (p *Pool) Set(h Handle, s string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.cells[h]; !ok {
		return 0, false
	}
	p.cells[h] = s
	return h, true
}

// Len returns the number of live cells.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cells)
}

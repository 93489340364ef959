// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package event implements the host's event dispatch engine: per-event-id
// ordered listener chains, action-driven short-circuiting, and the override
// teardown contract.
package event

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/samber/oops"

	"github.com/emberclient/emberclient/internal/core"
	"github.com/emberclient/emberclient/pkg/errutil"
	"github.com/emberclient/emberclient/pkg/sdk"
)

// Disposition tells the producer what to do once a dispatch returns.
type Disposition int

const (
	// Proceed means default handling runs, applying any pending override.
	// Reached when the chain completed or a listener committed.
	Proceed Disposition = iota
	// Suppressed means a listener cancelled the event: default handling must
	// not observe it, and pending overrides have already been dropped.
	Suppressed
)

// String returns the disposition name.
func (d Disposition) String() string {
	if d == Suppressed {
		return "suppressed"
	}
	return "proceed"
}

// entry is one registered listener. The live flag lets an in-flight dispatch
// working from a snapshot skip entries removed after the snapshot was taken.
type entry struct {
	listener sdk.Listener
	owner    any
	live     atomic.Bool
}

// ListenerOption configures a listener registration.
type ListenerOption func(*entry)

// WithOwner associates the listener with a plugin or module instance. Owned
// listeners are purged automatically when the owner unregisters without
// removing them itself.
func WithOwner(owner any) ListenerOption {
	return func(e *entry) {
		e.owner = owner
	}
}

// Dispatcher maintains per-event-id ordered listener chains and walks them
// synchronously on the producer's goroutine.
//
// Chain mutations are serialized by one mutex relative to dispatch
// traversal. The traversal itself runs on a snapshot taken at dispatch
// start: listeners added mid-dispatch are not invoked until the next
// dispatch, and listeners removed mid-dispatch are not invoked at all.
type Dispatcher struct {
	mu      sync.Mutex
	chains  map[string][]*entry
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics attaches dispatch metrics.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		chains: make(map[string][]*entry),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddListener appends l to the tail of id's chain. The same listener value
// may sit in chains of different event ids, but at most once per id;
// re-adding it for the same id fails rather than duplicating the entry.
func (d *Dispatcher) AddListener(id string, l sdk.Listener, opts ...ListenerOption) error {
	if id == "" {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("event id cannot be empty")
	}
	if l == nil {
		return oops.Code(errutil.CodeInvalidArgument).With("event", id).Errorf("listener cannot be nil")
	}
	// Removal matches by ==, which panics on non-comparable dynamic types.
	// Reject those up front instead of blowing up in RemoveListener.
	if !reflect.TypeOf(l).Comparable() {
		return oops.Code(errutil.CodeInvalidArgument).With("event", id).
			Errorf("listener type %T is not comparable", l)
	}

	e := &entry{listener: l}
	for _, opt := range opts {
		opt(e)
	}
	e.live.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.chains[id] {
		if existing.listener == l {
			return oops.Code(errutil.CodeAlreadyExists).With("event", id).
				Errorf("listener already registered for event")
		}
	}
	d.chains[id] = append(d.chains[id], e)

	if d.metrics != nil {
		d.metrics.ListenersActive.Inc()
	}
	return nil
}

// RemoveListener removes l from every chain that contains it. Removal is
// identity-based rather than id-based: the caller may no longer hold the id
// the listener was added with.
func (d *Dispatcher) RemoveListener(l sdk.Listener) error {
	if l == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("listener cannot be nil")
	}
	if !reflect.TypeOf(l).Comparable() {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("listener type %T is not comparable", l)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, chain := range d.chains {
		kept := chain[:0]
		for _, e := range chain {
			if e.listener == l {
				e.live.Store(false)
				removed++
				continue
			}
			kept = append(kept, e)
		}
		d.setChainLocked(id, kept)
	}
	if removed == 0 {
		return oops.Code(errutil.CodeNotFound).Errorf("listener not registered for any event")
	}

	if d.metrics != nil {
		d.metrics.ListenersActive.Sub(float64(removed))
	}
	return nil
}

// PurgeOwner force-removes every listener registered under owner and returns
// how many were dropped. The registry calls this after an owner's unload
// event has fired, so an unregistered plugin cannot leave dangling callbacks
// behind.
func (d *Dispatcher) PurgeOwner(owner any) int {
	if owner == nil {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	purged := 0
	for id, chain := range d.chains {
		kept := chain[:0]
		for _, e := range chain {
			if e.owner == owner {
				e.live.Store(false)
				purged++
				continue
			}
			kept = append(kept, e)
		}
		d.setChainLocked(id, kept)
	}

	if purged > 0 {
		d.logger.Debug("purged owned listeners", "count", purged)
		if d.metrics != nil {
			d.metrics.ListenersActive.Sub(float64(purged))
		}
	}
	return purged
}

// ListenerCount returns the number of listeners currently chained for id.
func (d *Dispatcher) ListenerCount(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chains[id])
}

func (d *Dispatcher) setChainLocked(id string, chain []*entry) {
	if len(chain) == 0 {
		delete(d.chains, id)
		return
	}
	d.chains[id] = chain
}

// Dispatch walks id's chain in registration order, invoking each listener
// with the shared payload and reading the action it left behind:
// ActionNothing continues, ActionCommit stops the chain but lets default
// handling proceed, ActionCancel stops the chain and suppresses default
// handling. On cancellation the pending override slots are released before
// returning, so a producer never observes a stale override from a cancelled
// dispatch.
//
// The chain is snapshotted at dispatch start; the lock is not held while a
// listener runs, so listeners may call back into the dispatcher.
func (d *Dispatcher) Dispatch(id string, p sdk.Payload) Disposition {
	d.mu.Lock()
	snapshot := make([]*entry, len(d.chains[id]))
	copy(snapshot, d.chains[id])
	d.mu.Unlock()

	dispatchID := core.NewULID()
	disposition := Proceed
	outcome := "completed"

walk:
	for _, e := range snapshot {
		if !e.live.Load() {
			continue
		}
		e.listener.HandleEvent(p)

		switch p.EventControl().Action {
		case sdk.ActionCancel:
			disposition = Suppressed
			outcome = "cancelled"
			break walk
		case sdk.ActionCommit:
			outcome = "committed"
			break walk
		case sdk.ActionNothing:
		}
	}

	if disposition == Suppressed {
		if o, ok := p.(sdk.Overrider); ok {
			for _, slot := range o.Overrides() {
				slot.Clear()
			}
		}
	}

	d.logger.Debug("event dispatched",
		"event", id,
		"dispatch_id", dispatchID.String(),
		"listeners", len(snapshot),
		"outcome", outcome)
	if d.metrics != nil {
		d.metrics.DispatchesTotal.WithLabelValues(id, outcome).Inc()
	}
	return disposition
}

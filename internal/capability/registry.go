// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package capability implements the host side of the capability query
// protocol: a registry mapping capability id patterns to typed resolvers.
//
// Pattern matching uses gobwas/glob with '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// Examples:
//   - "chat.parse" matches only "chat.parse"
//   - "chat.*" matches "chat.parse" but NOT "chat.parse.strict"
//   - "chat.**" matches both
package capability

import (
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/emberclient/emberclient/pkg/errutil"
)

// Resolver populates out for a recognized capability id. Returning false
// means the id or the concrete type of out is not acceptable; a resolver
// must not write through out in that case.
type Resolver func(id string, out any) bool

// binding is one registered pattern with its compiled glob and resolver.
type binding struct {
	pattern string
	glob    glob.Glob
	resolve Resolver
	owner   any
}

// Option configures a binding.
type Option func(*binding)

// WithOwner associates the binding with a plugin or module instance so it
// can be purged when the owner unregisters.
func WithOwner(owner any) Option {
	return func(b *binding) {
		b.owner = owner
	}
}

// Registry maps capability id patterns to resolvers in registration order.
// Safe for concurrent use. The zero value is ready to use.
type Registry struct {
	mu       sync.RWMutex
	bindings []binding
}

// NewRegistry creates a capability registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds a resolver under a capability id pattern. Patterns compile
// with '.' as the segment separator, so "chat.*" does not reach into nested
// ids. Registering the same pattern twice fails; earlier registrations take
// precedence during Resolve, so a duplicate could never be reached.
func (r *Registry) Register(pattern string, resolve Resolver, opts ...Option) error {
	if pattern == "" {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("capability pattern cannot be empty")
	}
	if resolve == nil {
		return oops.Code(errutil.CodeInvalidArgument).With("pattern", pattern).
			Errorf("resolver cannot be nil")
	}

	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return oops.Code(errutil.CodeInvalidArgument).With("pattern", pattern).Wrap(err)
	}

	b := binding{pattern: pattern, glob: g, resolve: resolve}
	for _, opt := range opts {
		opt(&b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bindings {
		if existing.pattern == pattern {
			return oops.Code(errutil.CodeAlreadyExists).With("pattern", pattern).
				Errorf("capability pattern already registered")
		}
	}
	r.bindings = append(r.bindings, b)
	return nil
}

// Unregister removes the binding registered under exactly pattern.
func (r *Registry) Unregister(pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.bindings {
		if b.pattern == pattern {
			r.bindings = append(r.bindings[:i], r.bindings[i+1:]...)
			return nil
		}
	}
	return oops.Code(errutil.CodeNotFound).With("pattern", pattern).
		Errorf("capability pattern not registered")
}

// PurgeOwner removes every binding registered under owner and returns how
// many were dropped.
func (r *Registry) PurgeOwner(owner any) int {
	if owner == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.bindings[:0]
	purged := 0
	for _, b := range r.bindings {
		if b.owner == owner {
			purged++
			continue
		}
		kept = append(kept, b)
	}
	r.bindings = kept
	return purged
}

// Patterns returns the registered patterns in registration order. The
// returned slice is a copy.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.pattern
	}
	return out
}

// Resolve walks the bindings in registration order and offers id to each
// whose pattern matches, until one accepts. An id no resolver accepts is
// unrecognized: Resolve returns false and out is untouched.
//
// Resolvers run without the registry lock held, so they may call back into
// the registry.
func (r *Registry) Resolve(id string, out any) bool {
	if id == "" {
		return false
	}

	r.mu.RLock()
	matched := make([]Resolver, 0, 2)
	for _, b := range r.bindings {
		if b.glob.Match(id) {
			matched = append(matched, b.resolve)
		}
	}
	r.mu.RUnlock()

	for _, resolve := range matched {
		if resolve(id, out) {
			return true
		}
	}
	return false
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package registry tracks registered plugin and module records and fires
// lifecycle events through the event dispatcher.
//
// Records form a tree: each module record hangs off exactly one owning
// plugin record, and cascade unregistration guarantees listeners never
// observe a module outliving its plugin.
package registry

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/samber/oops"

	"github.com/emberclient/emberclient/internal/event"
	"github.com/emberclient/emberclient/pkg/errutil"
	"github.com/emberclient/emberclient/pkg/sdk"
)

// Events dispatches lifecycle events. Dispatch runs synchronously on the
// calling goroutine; the registry never holds its lock across it.
type Events interface {
	Dispatch(id string, p sdk.Payload) event.Disposition
}

// Purger force-removes registrations owned by an unregistering instance.
// The event dispatcher and the capability registry both implement it.
type Purger interface {
	PurgeOwner(owner any) int
}

// moduleRecord is one registered module under its owning plugin.
type moduleRecord struct {
	instance sdk.Module
	parent   *pluginRecord
	removing bool
}

// pluginRecord is one registered plugin and its owned modules in
// registration order.
type pluginRecord struct {
	instance sdk.Plugin
	name     string
	modules  []*moduleRecord
	removing bool
}

// Registry is the plugin/module registry. Mutations and lookups are
// serialized by one mutex; lifecycle dispatches run outside it so listeners
// may call back in.
type Registry struct {
	mu       sync.Mutex
	plugins  []*pluginRecord
	byPlugin map[sdk.Plugin]*pluginRecord
	byModule map[sdk.Module]*moduleRecord
	events   Events
	purgers  []Purger
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithPurgers adds purgers consulted when an instance unregisters, after its
// unload event has fired.
func WithPurgers(purgers ...Purger) Option {
	return func(r *Registry) {
		r.purgers = append(r.purgers, purgers...)
	}
}

// New creates a registry firing lifecycle events through events.
func New(events Events, opts ...Option) *Registry {
	r := &Registry{
		byPlugin: make(map[sdk.Plugin]*pluginRecord),
		byModule: make(map[sdk.Module]*moduleRecord),
		events:   events,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPlugin inserts a record for instance and dispatches
// "evn_plug_loaded" before returning, so load listeners have run by the time
// the registering caller continues.
func (r *Registry) RegisterPlugin(instance sdk.Plugin, name string) error {
	if instance == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("plugin instance cannot be nil")
	}
	if name == "" {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("plugin name cannot be empty")
	}
	// Instances key the record maps; a non-comparable instance cannot be
	// tracked or unregistered.
	if !reflect.TypeOf(instance).Comparable() {
		return oops.Code(errutil.CodeInvalidArgument).With("plugin", name).
			Errorf("plugin instance type %T is not comparable", instance)
	}

	rec := &pluginRecord{instance: instance, name: name}

	r.mu.Lock()
	if _, ok := r.byPlugin[instance]; ok {
		r.mu.Unlock()
		return oops.Code(errutil.CodeAlreadyExists).With("plugin", name).
			Errorf("plugin instance already registered")
	}
	r.plugins = append(r.plugins, rec)
	r.byPlugin[instance] = rec
	r.mu.Unlock()

	r.logger.Info("plugin registered", "plugin", name)
	r.events.Dispatch(sdk.EventPluginLoaded, &sdk.PluginEvent{Name: name, Instance: instance})
	return nil
}

// UnregisterPlugin cascade-unregisters instance: each owned module fires
// "evn_mod_unload" in registration order and is removed, then
// "evn_plug_unload" fires, then the plugin record is removed. Every unload
// event fires while its record is still present, so listeners can still
// resolve the instance.
func (r *Registry) UnregisterPlugin(instance sdk.Plugin) error {
	if instance == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("plugin instance cannot be nil")
	}

	r.mu.Lock()
	rec, ok := r.byPlugin[instance]
	if !ok || rec.removing {
		r.mu.Unlock()
		return oops.Code(errutil.CodeNotFound).Errorf("plugin instance not registered")
	}
	rec.removing = true
	modules := make([]*moduleRecord, len(rec.modules))
	copy(modules, rec.modules)
	for _, m := range modules {
		m.removing = true
	}
	r.mu.Unlock()

	for _, m := range modules {
		r.dropModule(m)
	}

	r.events.Dispatch(sdk.EventPluginUnload, &sdk.PluginEvent{Name: rec.name, Instance: instance})

	r.mu.Lock()
	delete(r.byPlugin, instance)
	for i, p := range r.plugins {
		if p == rec {
			r.plugins = append(r.plugins[:i], r.plugins[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.purge(instance)
	r.logger.Info("plugin unregistered", "plugin", rec.name)
	return nil
}

// RegisterModule inserts a record for instance under parent and dispatches
// "evn_mod_loaded".
func (r *Registry) RegisterModule(parent sdk.Plugin, instance sdk.Module) error {
	if parent == nil || instance == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("parent and module instance cannot be nil")
	}
	if !reflect.TypeOf(instance).Comparable() {
		return oops.Code(errutil.CodeInvalidArgument).
			Errorf("module instance type %T is not comparable", instance)
	}

	r.mu.Lock()
	parentRec, ok := r.byPlugin[parent]
	if !ok || parentRec.removing {
		r.mu.Unlock()
		return oops.Code(errutil.CodeInvalidArgument).Errorf("parent plugin not registered")
	}
	if _, ok := r.byModule[instance]; ok {
		r.mu.Unlock()
		return oops.Code(errutil.CodeAlreadyExists).With("plugin", parentRec.name).
			Errorf("module instance already registered")
	}
	rec := &moduleRecord{instance: instance, parent: parentRec}
	parentRec.modules = append(parentRec.modules, rec)
	r.byModule[instance] = rec
	r.mu.Unlock()

	r.logger.Info("module registered", "plugin", parentRec.name)
	r.events.Dispatch(sdk.EventModuleLoaded, &sdk.ModuleEvent{Parent: parent, Instance: instance})
	return nil
}

// UnregisterModule dispatches "evn_mod_unload" and removes the record.
func (r *Registry) UnregisterModule(instance sdk.Module) error {
	if instance == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("module instance cannot be nil")
	}

	r.mu.Lock()
	rec, ok := r.byModule[instance]
	if !ok || rec.removing {
		r.mu.Unlock()
		return oops.Code(errutil.CodeNotFound).Errorf("module instance not registered")
	}
	rec.removing = true
	r.mu.Unlock()

	r.dropModule(rec)
	return nil
}

// dropModule fires the unload event for a module already marked removing,
// then removes its record and purges its registrations.
func (r *Registry) dropModule(rec *moduleRecord) {
	r.events.Dispatch(sdk.EventModuleUnload, &sdk.ModuleEvent{
		Parent:   rec.parent.instance,
		Instance: rec.instance,
	})

	r.mu.Lock()
	delete(r.byModule, rec.instance)
	for i, m := range rec.parent.modules {
		if m == rec {
			rec.parent.modules = append(rec.parent.modules[:i], rec.parent.modules[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.purge(rec.instance)
	r.logger.Info("module unregistered", "plugin", rec.parent.name)
}

func (r *Registry) purge(owner any) {
	for _, p := range r.purgers {
		p.PurgeOwner(owner)
	}
}

// EnumeratePlugins implements the two-phase enumeration protocol: with a nil
// out it stores the current plugin count in *count; otherwise it copies the
// registered instances, in registration order, into out. *count always holds
// the current registration count on return, so a caller failing on an
// undersized buffer can resize and retry.
func (r *Registry) EnumeratePlugins(out []sdk.Plugin, count *int) error {
	if count == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("count cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.plugins)
	*count = n
	if out == nil {
		return nil
	}
	if len(out) < n {
		return oops.Code(errutil.CodeInvalidArgument).
			With("have", len(out)).With("need", n).
			Errorf("enumeration buffer undersized")
	}
	for i, rec := range r.plugins {
		out[i] = rec.instance
	}
	return nil
}

// EnumerateModules is EnumeratePlugins for modules. Modules enumerate
// grouped by their owning plugin's registration order, each group in module
// registration order.
func (r *Registry) EnumerateModules(out []sdk.Module, count *int) error {
	if count == nil {
		return oops.Code(errutil.CodeInvalidArgument).Errorf("count cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rec := range r.plugins {
		n += len(rec.modules)
	}
	*count = n
	if out == nil {
		return nil
	}
	if len(out) < n {
		return oops.Code(errutil.CodeInvalidArgument).
			With("have", len(out)).With("need", n).
			Errorf("enumeration buffer undersized")
	}
	i := 0
	for _, rec := range r.plugins {
		for _, m := range rec.modules {
			out[i] = m.instance
			i++
		}
	}
	return nil
}

// PluginName resolves the name a plugin instance was registered under.
func (r *Registry) PluginName(instance sdk.Plugin) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byPlugin[instance]
	if !ok {
		return "", false
	}
	return rec.name, true
}

// ModuleParent resolves the owning plugin of a module instance.
func (r *Registry) ModuleParent(instance sdk.Module) (sdk.Plugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byModule[instance]
	if !ok {
		return nil, false
	}
	return rec.parent.instance, true
}

// Counts returns the number of registered plugins and modules.
func (r *Registry) Counts() (plugins, modules int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.plugins {
		modules += len(rec.modules)
	}
	return len(r.plugins), modules
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package sdk defines the contract between the Ember client and its plugins:
// the capability query protocol, version negotiation, the event model, and
// the client facade handed to plugins at load time.
//
// Plugins compile against this package only. Everything behind the Client
// facade lives in the host and is reached through these interfaces.
package sdk

// Version describes an SDK revision as a major.minor pair.
type Version struct {
	Major int
	Minor int
}

// Current is the SDK revision this host implements.
//
// The event id strings and the Client method set are the wire format of the
// in-process protocol; neither changes without a Major bump.
var Current = Version{Major: 1, Minor: 0}

// Compatible reports whether a plugin built against want can load against a
// host providing v. Major must match exactly. A host with a lower Minor than
// the plugin expects still loads it, with reduced feature expectations on
// the plugin side.
func (v Version) Compatible(want Version) bool {
	return v.Major == want.Major
}

// Querier is the generic capability negotiation protocol. Any extensible
// interface implements it to expose ad hoc functionality beyond its fixed
// method set.
//
// The responder decides per id whether it recognizes the request and whether
// the concrete type of out is acceptable. Unrecognized ids return false, and
// the responder must not write through out in that case. There is no global
// specification for valid out shapes; consult the responder's documentation
// for the ids it answers.
type Querier interface {
	Query(id string, out any) bool
}

// QueryAs resolves a capability id into a concrete type. It is sugar over
// Querier.Query for callers who know the result shape at compile time; there
// is no separate runtime path.
func QueryAs[T any](q Querier, id string) (T, bool) {
	var zero T
	if q == nil {
		return zero, false
	}
	var out T
	if !q.Query(id, &out) {
		return zero, false
	}
	return out, true
}

// Plugin is implemented by plugin instances registered with the client.
//
// The registering caller retains ownership of the instance; the host only
// holds a non-owning reference keyed by interface identity. Instances must
// be comparable (pointer receivers satisfy this) since identity is how the
// registry tracks them.
type Plugin interface {
	Querier
}

// Module is implemented by dynamically loaded module instances. A module is
// always registered under exactly one parent plugin and never outlives it in
// registry terms.
type Module interface {
	Querier
}

// StrHandle identifies a managed string cell owned by the host. The zero
// handle is never valid. Plugins interact with the cell only through the
// Client accessors and never own the underlying memory.
type StrHandle uint64

// Client is the host facade handed to plugins at load time. It composes the
// event dispatcher, the plugin/module registry, and the capability registry;
// all methods are synchronous and report failure as a bare false.
type Client interface {
	Querier

	// RegisterPlugin registers instance under name and fires "evn_plug_loaded"
	// before returning. Registering the same instance twice fails.
	//
	// The caller manages the lifetime of instance. Unregister it before
	// discarding it.
	RegisterPlugin(instance Plugin, name string) bool

	// UnregisterPlugin cascade-unregisters the plugin's modules, firing
	// "evn_mod_unload" for each in registration order, then fires
	// "evn_plug_unload", then removes the record. Listeners can still resolve
	// the instance while the unload events run.
	UnregisterPlugin(instance Plugin) bool

	// RegisterModule registers instance under a currently registered parent
	// plugin and fires "evn_mod_loaded".
	RegisterModule(parent Plugin, instance Module) bool

	// UnregisterModule fires "evn_mod_unload" and removes the record.
	UnregisterModule(instance Module) bool

	// EnumeratePlugins copies the currently registered plugin instances into
	// out. Pass a nil out to receive the current count in *count, then call
	// again with a buffer of that size. Under concurrent registration the two
	// calls are only eventually consistent; treat an undersized second call
	// as recoverable and retry.
	EnumeratePlugins(out []Plugin, count *int) bool

	// EnumerateModules is EnumeratePlugins for module instances.
	EnumerateModules(out []Module, count *int) bool

	// AddEventListener appends l to the tail of the event's listener chain.
	// Adding the same listener value twice for one event fails. Keep the
	// registered value: removal matches by it.
	AddEventListener(eventID string, l Listener) bool

	// RemoveEventListener removes l from every chain that contains it.
	RemoveEventListener(l Listener) bool

	// QueueLogChat writes text to the ingame chat log, subject to the
	// "evn_chat_log" dispatch. Log only, nothing is sent.
	QueueLogChat(text string) bool

	// GetMCStr reads the current contents of a managed string cell.
	GetMCStr(h StrHandle) (string, bool)

	// SetMCStr replaces the contents of a managed string cell and returns the
	// same handle.
	SetMCStr(h StrHandle, s string) (StrHandle, bool)
}

// LoadInfo is the version descriptor delivered to a plugin at load time.
// Check Version before touching Client: a Major mismatch means the plugin
// must refuse to load against this host.
type LoadInfo struct {
	Version Version
	Client  Client
}

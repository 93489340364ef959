// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package host composes the event dispatcher, the plugin/module registry,
// the capability registry, and the managed string pool behind the single
// client facade handed to plugins at load time.
//
// The facade owns no engine logic itself; it coordinates the engine
// packages, collapses their typed errors to the boolean plugin boundary,
// and keeps the host metrics current.
package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/emberclient/emberclient/internal/capability"
	"github.com/emberclient/emberclient/internal/event"
	"github.com/emberclient/emberclient/internal/manifest"
	"github.com/emberclient/emberclient/internal/mcstr"
	"github.com/emberclient/emberclient/internal/observability"
	"github.com/emberclient/emberclient/internal/registry"
	"github.com/emberclient/emberclient/pkg/errutil"
	"github.com/emberclient/emberclient/pkg/sdk"
)

// Host is the client facade. It implements sdk.Client.
type Host struct {
	dispatcher *event.Dispatcher
	registry   *registry.Registry
	caps       *capability.Registry
	strings    *mcstr.Pool
	logger     *slog.Logger
	metrics    *observability.Metrics
	chatSink   ChatSink
}

var _ sdk.Client = (*Host)(nil)

// Option configures a Host.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	chatSink ChatSink
	promReg  prometheus.Registerer
	metrics  *observability.Metrics
}

// WithLogger sets the host's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithChatSink sets where chat log lines surviving dispatch are written.
func WithChatSink(sink ChatSink) Option {
	return func(c *config) {
		c.chatSink = sink
	}
}

// WithMetrics wires the host gauges and the dispatcher counters to the
// given registerer and host metrics, normally those of the observability
// server.
func WithMetrics(reg prometheus.Registerer, m *observability.Metrics) Option {
	return func(c *config) {
		c.promReg = reg
		c.metrics = m
	}
}

// New creates a host with its engine components wired together.
func New(opts ...Option) *Host {
	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dispatcherOpts := []event.Option{event.WithLogger(cfg.logger)}
	if cfg.promReg != nil {
		dispatcherOpts = append(dispatcherOpts, event.WithMetrics(event.NewMetrics(cfg.promReg)))
	}

	h := &Host{
		dispatcher: event.New(dispatcherOpts...),
		caps:       capability.NewRegistry(),
		strings:    mcstr.NewPool(),
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		chatSink:   cfg.chatSink,
	}
	if h.chatSink == nil {
		h.chatSink = &slogSink{logger: cfg.logger}
	}
	h.registry = registry.New(h.dispatcher,
		registry.WithLogger(cfg.logger),
		registry.WithPurgers(h.dispatcher, h.caps))

	h.registerHostCapabilities()
	return h
}

// registerHostCapabilities publishes the capabilities the host itself
// answers through the facade's query interface.
func (h *Host) registerHostCapabilities() {
	// client.version resolves into a *sdk.Version.
	_ = h.caps.Register("client.version", func(_ string, out any) bool {
		p, ok := out.(*sdk.Version)
		if !ok {
			return false
		}
		*p = sdk.Current
		return true
	})

	// client.log_chat resolves into a *func(string) bool pointing at
	// QueueLogChat, the callback-handoff pattern cross-plugin integrations
	// use.
	_ = h.caps.Register("client.log_chat", func(_ string, out any) bool {
		p, ok := out.(*func(string) bool)
		if !ok {
			return false
		}
		*p = h.QueueLogChat
		return true
	})
}

// LoadInfo returns the version descriptor handed to a plugin at load time.
func (h *Host) LoadInfo() sdk.LoadInfo {
	return sdk.LoadInfo{Version: sdk.Current, Client: h}
}

// Ready reports whether the host can accept registrations. Used as the
// observability readiness check.
func (h *Host) Ready() bool {
	return h.registry != nil
}

// Query implements the capability query protocol for the facade itself,
// resolving against the host capability registry.
func (h *Host) Query(id string, out any) bool {
	if h.caps.Resolve(id, out) {
		return true
	}
	h.logger.Debug("capability query unrecognized", "id", id, "code", errutil.CodeUnrecognized)
	return false
}

// RegisterPlugin registers instance under name. "evn_plug_loaded" listeners
// have run by the time it returns true.
func (h *Host) RegisterPlugin(instance sdk.Plugin, name string) bool {
	if err := h.registry.RegisterPlugin(instance, name); err != nil {
		errutil.LogWarn(h.logger, "register plugin failed", err)
		return false
	}
	h.syncGauges()
	return true
}

// RegisterPluginManifest registers instance described by manifest bytes:
// the manifest's name becomes the registered name, its declared capability
// patterns are published against the instance's query interface, and its
// declared SDK revision is checked against the host's before anything is
// touched.
func (h *Host) RegisterPluginManifest(instance sdk.Plugin, data []byte) bool {
	m, err := manifest.Parse(data)
	if err != nil {
		errutil.LogWarn(h.logger, "register plugin failed",
			oops.Code(errutil.CodeInvalidArgument).Wrap(err))
		return false
	}
	want, err := m.SDKVersion()
	if err != nil {
		errutil.LogWarn(h.logger, "register plugin failed",
			oops.Code(errutil.CodeInvalidArgument).Wrap(err))
		return false
	}
	if !sdk.Current.Compatible(want) {
		errutil.LogWarn(h.logger, "register plugin failed",
			oops.Code(errutil.CodeInvalidArgument).
				With("plugin", m.Name).With("plugin_sdk", m.SDK).
				Errorf("plugin built against incompatible SDK major %d, host is %d",
					want.Major, sdk.Current.Major))
		return false
	}

	if err := h.registry.RegisterPlugin(instance, m.Name); err != nil {
		errutil.LogWarn(h.logger, "register plugin failed", err)
		return false
	}
	for _, pattern := range m.Capabilities {
		err := h.caps.Register(pattern, func(id string, out any) bool {
			return instance.Query(id, out)
		}, capability.WithOwner(instance))
		if err != nil {
			errutil.LogWarn(h.logger, "publish plugin capability failed", err)
		}
	}
	h.syncGauges()
	return true
}

// UnregisterPlugin cascade-unregisters instance, its modules, its listeners,
// and its published capabilities.
func (h *Host) UnregisterPlugin(instance sdk.Plugin) bool {
	if err := h.registry.UnregisterPlugin(instance); err != nil {
		errutil.LogWarn(h.logger, "unregister plugin failed", err)
		return false
	}
	h.syncGauges()
	return true
}

// RegisterModule registers instance under parent.
func (h *Host) RegisterModule(parent sdk.Plugin, instance sdk.Module) bool {
	if err := h.registry.RegisterModule(parent, instance); err != nil {
		errutil.LogWarn(h.logger, "register module failed", err)
		return false
	}
	h.syncGauges()
	return true
}

// UnregisterModule unregisters instance.
func (h *Host) UnregisterModule(instance sdk.Module) bool {
	if err := h.registry.UnregisterModule(instance); err != nil {
		errutil.LogWarn(h.logger, "unregister module failed", err)
		return false
	}
	h.syncGauges()
	return true
}

// EnumeratePlugins implements the two-phase enumeration protocol.
func (h *Host) EnumeratePlugins(out []sdk.Plugin, count *int) bool {
	if err := h.registry.EnumeratePlugins(out, count); err != nil {
		errutil.LogWarn(h.logger, "enumerate plugins failed", err)
		return false
	}
	return true
}

// EnumerateModules implements the two-phase enumeration protocol.
func (h *Host) EnumerateModules(out []sdk.Module, count *int) bool {
	if err := h.registry.EnumerateModules(out, count); err != nil {
		errutil.LogWarn(h.logger, "enumerate modules failed", err)
		return false
	}
	return true
}

// snapshotBackoff bounds the enumerate-retry loop. The race window is a
// registration on another goroutine between the count and copy phases, so a
// handful of immediate retries is plenty.
func snapshotBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewConstant(time.Millisecond))
}

// PluginsSnapshot runs the two-phase enumeration under a retry loop,
// absorbing the protocol's inherent raciness for callers that just want a
// point-in-time slice.
func (h *Host) PluginsSnapshot(ctx context.Context) ([]sdk.Plugin, error) {
	var snapshot []sdk.Plugin
	err := retry.Do(ctx, snapshotBackoff(), func(_ context.Context) error {
		var n int
		if err := h.registry.EnumeratePlugins(nil, &n); err != nil {
			return err
		}
		buf := make([]sdk.Plugin, n)
		if err := h.registry.EnumeratePlugins(buf, &n); err != nil {
			// Undersized means a registration slipped between the phases.
			return retry.RetryableError(err)
		}
		snapshot = buf[:n]
		return nil
	})
	if err != nil {
		return nil, oops.With("operation", "plugins_snapshot").Wrap(err)
	}
	return snapshot, nil
}

// ModulesSnapshot is PluginsSnapshot for modules.
func (h *Host) ModulesSnapshot(ctx context.Context) ([]sdk.Module, error) {
	var snapshot []sdk.Module
	err := retry.Do(ctx, snapshotBackoff(), func(_ context.Context) error {
		var n int
		if err := h.registry.EnumerateModules(nil, &n); err != nil {
			return err
		}
		buf := make([]sdk.Module, n)
		if err := h.registry.EnumerateModules(buf, &n); err != nil {
			return retry.RetryableError(err)
		}
		snapshot = buf[:n]
		return nil
	})
	if err != nil {
		return nil, oops.With("operation", "modules_snapshot").Wrap(err)
	}
	return snapshot, nil
}

// AddEventListener appends l to the tail of the event's chain.
func (h *Host) AddEventListener(eventID string, l sdk.Listener) bool {
	if err := h.dispatcher.AddListener(eventID, l); err != nil {
		errutil.LogWarn(h.logger, "add event listener failed", err)
		return false
	}
	return true
}

// AddOwnedListener registers l on behalf of owner, a registered plugin or
// module instance. Owned listeners are purged automatically when the owner
// unregisters, so an unregistering plugin that forgets RemoveEventListener
// cannot leave a dangling callback behind.
func (h *Host) AddOwnedListener(owner any, eventID string, l sdk.Listener) bool {
	if err := h.dispatcher.AddListener(eventID, l, event.WithOwner(owner)); err != nil {
		errutil.LogWarn(h.logger, "add event listener failed", err)
		return false
	}
	return true
}

// RemoveEventListener removes l from every chain that contains it.
func (h *Host) RemoveEventListener(l sdk.Listener) bool {
	if err := h.dispatcher.RemoveListener(l); err != nil {
		errutil.LogWarn(h.logger, "remove event listener failed", err)
		return false
	}
	return true
}

// NewManagedString allocates a managed string cell. Host-side producers
// mint handles; plugins only read and replace through the Client accessors.
func (h *Host) NewManagedString(s string) sdk.StrHandle {
	return sdk.StrHandle(h.strings.New(s))
}

// GetMCStr reads a managed string cell.
func (h *Host) GetMCStr(handle sdk.StrHandle) (string, bool) {
	return h.strings.Get(mcstr.Handle(handle))
}

// SetMCStr replaces the contents of a managed string cell.
func (h *Host) SetMCStr(handle sdk.StrHandle, s string) (sdk.StrHandle, bool) {
	got, ok := h.strings.Set(mcstr.Handle(handle), s)
	return sdk.StrHandle(got), ok
}

func (h *Host) syncGauges() {
	if h.metrics == nil {
		return
	}
	plugins, modules := h.registry.Counts()
	h.metrics.PluginsActive.Set(float64(plugins))
	h.metrics.ModulesActive.Set(float64(modules))
}

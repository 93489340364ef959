// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package event

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the dispatcher's Prometheus metrics.
type Metrics struct {
	// DispatchesTotal counts dispatches by event id and outcome
	// (completed, committed, cancelled).
	DispatchesTotal *prometheus.CounterVec
	// ListenersActive tracks the number of registered listeners across all
	// chains.
	ListenersActive prometheus.Gauge
}

// NewMetrics creates and registers the dispatcher metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emberclient_events_dispatched_total",
				Help: "Total event dispatches by event id and outcome",
			},
			[]string{"event", "outcome"},
		),
		ListenersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "emberclient_event_listeners",
				Help: "Number of currently registered event listeners",
			},
		),
	}

	reg.MustRegister(m.DispatchesTotal)
	reg.MustRegister(m.ListenersActive)

	return m
}

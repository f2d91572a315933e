// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// handlerMetrics collects per-attempt relay metrics partitioned by endpoint
// host and attempt result.
type handlerMetrics struct {
	attemptsTotal  *prometheus.CounterVec
	exhaustedTotal prometheus.Counter
}

func newHandlerMetrics(r prometheus.Registerer, namespace string) *handlerMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &handlerMetrics{
		attemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Total number of relay attempts per proxy endpoint.",
		}, []string{"endpoint", "result"}),
		exhaustedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoints_exhausted_total",
			Help:      "Total number of requests for which every proxy endpoint failed.",
		}),
	}
}

func (m *handlerMetrics) attempt(host string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.attemptsTotal.WithLabelValues(host, result).Inc()
}

func (m *handlerMetrics) exhausted() {
	m.exhaustedTotal.Inc()
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package conntrack provides a net.Listener wrapper that exposes
// prometheus metrics for the accepted connections.
package conntrack

import (
	"errors"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type listenerMetrics struct {
	accepted prometheus.Counter
	active   prometheus.Gauge
	errors   prometheus.Counter
}

func newListenerMetrics(r prometheus.Registerer, namespace string) *listenerMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &listenerMetrics{
		accepted: f.NewCounter(prometheus.CounterOpts{
			Name:      "listener_cx_total",
			Namespace: namespace,
			Help:      "Number of accepted connections",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name:      "listener_cx_active",
			Namespace: namespace,
			Help:      "Number of active connections",
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Name:      "listener_errors_total",
			Namespace: namespace,
			Help:      "Number of listener errors when accepting connections",
		}),
	}
}

type Listener struct {
	net.Listener
	metrics *listenerMetrics
}

// NewListener wraps l and counts accepted connections, active connections
// and accept errors in the given registry.
func NewListener(l net.Listener, r prometheus.Registerer, namespace string) *Listener {
	return &Listener{
		Listener: l,
		metrics:  newListenerMetrics(r, namespace),
	}
}

func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		// Don't count the listener shutdown as an error.
		if !errors.Is(err, net.ErrClosed) {
			l.metrics.errors.Inc()
		}
		return nil, err
	}

	l.metrics.accepted.Inc()
	l.metrics.active.Inc()

	return &conn{Conn: c, metrics: l.metrics}, nil
}

type conn struct {
	net.Conn
	metrics *listenerMetrics

	closeOnce sync.Once
}

func (c *conn) Close() error {
	err := c.Conn.Close()
	c.closeOnce.Do(c.metrics.active.Dec)
	return err
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusWrap(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teapot" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r := prometheus.NewPedanticRegistry()
	s := NewPrometheus(r, "test").Wrap(h)

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", http.NoBody))
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", http.NoBody))

	mfs, err := r.Gather()
	if err != nil {
		t.Fatal(err)
	}

	counters := make(map[string]float64)
	for _, mf := range mfs {
		if mf.GetName() != "test_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var code, method string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "code":
					code = l.GetValue()
				case "method":
					method = l.GetValue()
				}
			}
			counters[code+" "+method] = m.GetCounter().GetValue()
		}
	}

	if got := counters["200 POST"]; got != 10 {
		t.Errorf("requests_total{200,POST} = %v, want 10", got)
	}
	if got := counters["418 GET"]; got != 1 {
		t.Errorf("requests_total{418,GET} = %v, want 1", got)
	}

	inFlight := findMetricFamily(mfs, "test_http_requests_in_flight")
	if inFlight == nil {
		t.Fatal("missing in flight gauge")
	}
	for _, m := range inFlight.GetMetric() {
		if v := m.GetGauge().GetValue(); v != 0 {
			t.Errorf("requests_in_flight = %v, want 0", v)
		}
	}
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type addrServer string

func (s addrServer) Addr() string {
	return string(s)
}

func TestAPIHandler(t *testing.T) {
	r := prometheus.NewPedanticRegistry()
	r.MustRegister(collectors.NewGoCollector())

	const config = "address=:8080\nlog-level=info\n"
	ts := httptest.NewServer(NewAPIHandler(r, addrServer("127.0.0.1:8080"), config))
	t.Cleanup(ts.Close)

	e := httpexpect.Default(t, ts.URL)

	e.GET("/healthz").Expect().
		Status(http.StatusOK).
		Body().IsEqual("OK")

	e.GET("/readyz").Expect().
		Status(http.StatusOK).
		Body().IsEqual("OK")

	e.GET("/configz").Expect().
		Status(http.StatusOK).
		Body().IsEqual(config)

	e.GET("/version").Expect().
		Status(http.StatusOK).
		JSON().Object().
		ContainsKey("version").
		ContainsKey("go_version")

	e.GET("/metrics").Expect().
		Status(http.StatusOK).
		Body().Contains("go_goroutines")
}

func TestAPIHandlerNotReady(t *testing.T) {
	ts := httptest.NewServer(NewAPIHandler(prometheus.NewPedanticRegistry(), nil, ""))
	t.Cleanup(ts.Close)

	e := httpexpect.Default(t, ts.URL)

	e.GET("/readyz").Expect().
		Status(http.StatusServiceUnavailable)

	e.GET("/healthz").Expect().
		Status(http.StatusOK)
}

func TestAPIHandlerNotReadyEmptyAddr(t *testing.T) {
	h := NewAPIHandler(prometheus.NewPedanticRegistry(), addrServer(""), "")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status=%d, expected %d", w.Code, http.StatusServiceUnavailable)
	}
}

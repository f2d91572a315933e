// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/301st/relay/log"
	"github.com/301st/relay/middleware"
)

// ProxyIPHeader carries the host of the proxy endpoint that served the
// successful attempt back to the caller.
const ProxyIPHeader = "X-Proxy-IP"

const allProxiesFailedBody = "all_proxies_failed"

type HandlerConfig struct {
	// BasicAuth is the credential pair every request is authenticated against.
	BasicAuth *url.Userinfo
	// Endpoints is the ordered proxy fallback list, immutable after startup.
	Endpoints []*ProxyEndpoint

	// PromNamespace is the namespace to use for the relay metrics.
	PromNamespace string
	// PromRegistry is the registry to register the relay metrics with.
	PromRegistry prometheus.Registerer
}

func DefaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{}
}

func (c *HandlerConfig) Validate() error {
	if c.BasicAuth == nil {
		return fmt.Errorf("basic auth credentials are required")
	}
	if _, ok := c.BasicAuth.Password(); !ok {
		return fmt.Errorf("basic auth password is required")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one proxy endpoint is required")
	}
	return nil
}

// Handler relays a client-supplied target URL through the configured proxy
// endpoints, trying them in order until one succeeds.
//
// The request flow is a single linear pass: authenticate, validate the target
// URL, attempt delivery per endpoint, respond. There are no retries within an
// endpoint and no backoff. Requests share no mutable state, the handler is
// safe for concurrent use.
type Handler struct {
	config  *HandlerConfig
	fetcher Fetcher
	metrics *handlerMetrics
	log     log.Logger
}

// NewHandler returns the relay HTTP handler protected with basic
// authentication. Authentication is checked first for any method and any
// path, so an unauthenticated health probe gets a 401 without any processing.
func NewHandler(cfg *HandlerConfig, f Fetcher, log log.Logger) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{
		config:  cfg,
		fetcher: f,
		metrics: newHandlerMetrics(cfg.PromRegistry, cfg.PromNamespace),
		log:     log,
	}

	pass, _ := cfg.BasicAuth.Password()
	return middleware.NewBasicAuth().Wrap(h, cfg.BasicAuth.Username(), pass), nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Errorf("read request body: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid URL"))
		return
	}

	targetURL := strings.TrimSpace(string(body))
	if !strings.HasPrefix(targetURL, "https://") {
		// Do not echo the input, a generic message is enough.
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid URL"))
		return
	}

	for _, e := range h.config.Endpoints {
		h.log.Infof("trying endpoint %s", e.Addr())

		b, err := h.fetcher.Fetch(r.Context(), e, RewriteClientIP(targetURL, e.Host))
		if err != nil {
			h.log.Infof("endpoint %s failed: %s", e.Addr(), err)
			h.metrics.attempt(e.Host, false)
			continue
		}

		h.log.Infof("success via %s", e.Addr())
		h.metrics.attempt(e.Host, true)

		w.Header().Set("Content-Type", "text/xml")
		w.Header().Set(ProxyIPHeader, e.Host)
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	h.log.Errorf("all %d endpoints failed for request from %s", len(h.config.Endpoints), r.RemoteAddr)
	h.metrics.exhausted()

	// Deliberately opaque, the response must not reveal which proxies were
	// tried or why they failed.
	w.WriteHeader(http.StatusBadGateway)
	w.Write([]byte(allProxiesFailedBody))
}

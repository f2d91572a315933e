// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/301st/relay/dialvia"
)

// Fetcher performs a single relay attempt through a proxy endpoint.
type Fetcher interface {
	// Fetch issues a GET request for targetURL tunneled through e and
	// returns the upstream response body.
	// Any transport failure, proxy authentication failure, timeout or
	// non-2xx upstream status is reported as an error.
	Fetch(ctx context.Context, e *ProxyEndpoint, targetURL string) ([]byte, error)
}

type FetcherConfig struct {
	// Timeout bounds a single attempt, it covers connecting to the proxy,
	// the CONNECT exchange, TLS handshake with the target and reading the
	// response body.
	Timeout time.Duration
	// DialTimeout is the maximum amount of time a dial to the proxy will
	// wait for a connect to complete.
	DialTimeout time.Duration
	// MaxResponseBytes limits the size of the upstream response body.
	// Zero means no limit.
	MaxResponseBytes int64
}

func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		Timeout:     15 * time.Second,
		DialTimeout: 10 * time.Second,
	}
}

// ProxyFetcher fetches URLs through upstream HTTP proxies using CONNECT
// tunnels with proxy basic authentication.
// Clients are created per endpoint on first use and reused across requests.
type ProxyFetcher struct {
	config *FetcherConfig

	mu      sync.Mutex
	clients map[string]*http.Client
}

func NewProxyFetcher(cfg *FetcherConfig) *ProxyFetcher {
	return &ProxyFetcher{
		config:  cfg,
		clients: make(map[string]*http.Client),
	}
}

func (f *ProxyFetcher) Fetch(ctx context.Context, e *ProxyEndpoint, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	res, err := f.client(e).Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("upstream status %d", res.StatusCode)
	}

	var r io.Reader = res.Body
	if f.config.MaxResponseBytes > 0 {
		r = io.LimitReader(res.Body, f.config.MaxResponseBytes)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return b, nil
}

// CloseIdleConnections closes idle connections of all per-endpoint clients.
func (f *ProxyFetcher) CloseIdleConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.clients {
		c.CloseIdleConnections()
	}
}

func (f *ProxyFetcher) client(e *ProxyEndpoint) *http.Client {
	key := e.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[key]; ok {
		return c
	}

	d := dialvia.HTTPProxy(
		(&net.Dialer{Timeout: f.config.DialTimeout}).DialContext,
		e.URL(),
	)
	c := &http.Client{
		Transport: &http.Transport{
			DialContext:       d.DialContext,
			ForceAttemptHTTP2: false,
		},
		Timeout: f.config.Timeout,
	}
	f.clients[key] = c

	return c
}

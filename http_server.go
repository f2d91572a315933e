// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/301st/relay/conntrack"
	"github.com/301st/relay/httplog"
	"github.com/301st/relay/log"
	"github.com/301st/relay/ratelimit"
)

type Scheme string

func (s Scheme) String() string {
	return string(s)
}

const (
	HTTPScheme  Scheme = "http"
	HTTPSScheme Scheme = "https"
)

type HTTPServerConfig struct {
	Protocol          Scheme
	Addr              string
	CertFile          string
	KeyFile           string
	ReadHeaderTimeout time.Duration
	LogHTTPMode       httplog.Mode

	// ReadLimit and WriteLimit limit the cumulative bandwidth of client
	// connections in bytes per second, zero means no limit.
	ReadLimit  int64
	WriteLimit int64

	// PromNamespace is the namespace to use for the listener metrics.
	PromNamespace string
	// PromRegistry is the registry to register the listener metrics with.
	// If nil, listener metrics are not collected.
	PromRegistry prometheus.Registerer
}

func DefaultHTTPServerConfig() *HTTPServerConfig {
	return &HTTPServerConfig{
		Protocol:          HTTPScheme,
		Addr:              ":8080",
		ReadHeaderTimeout: 1 * time.Minute,
	}
}

func (c *HTTPServerConfig) Validate() error {
	switch c.Protocol {
	case HTTPScheme:
	case HTTPSScheme:
		if c.CertFile == "" {
			return fmt.Errorf("cert file cannot be empty when using HTTPS")
		}
		if c.KeyFile == "" {
			return fmt.Errorf("key file cannot be empty when using HTTPS")
		}
		if _, err := os.Stat(c.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("cannot find TLS cert file at %q", c.CertFile)
		}
		if _, err := os.Stat(c.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("cannot find TLS key file at %q", c.KeyFile)
		}
	default:
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}

	return nil
}

// HTTPServer serves the given handler over HTTP or HTTPS and shuts down
// gracefully when the run context is canceled.
type HTTPServer struct {
	config *HTTPServerConfig
	log    log.Logger
	srv    *http.Server
	addr   atomic.Value

	// Listener allows to set a custom listener, if not set the server will
	// listen on the configured address.
	Listener net.Listener
}

func NewHTTPServer(cfg *HTTPServerConfig, h http.Handler, log log.Logger) (*HTTPServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hs := &HTTPServer{
		config: cfg,
		log:    log,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}

	if cfg.Protocol == HTTPSScheme {
		hs.srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		hs.srv.TLSNextProto = make(map[string]func(*http.Server, *tls.Conn, http.Handler))
	}

	return hs, nil
}

func (hs *HTTPServer) Run(ctx context.Context) error {
	listener, err := hs.listener()
	if err != nil {
		return err
	}
	hs.addr.Store(listener.Addr().String())

	hs.log.Infof("HTTP server listen address=%s protocol=%s", listener.Addr(), hs.config.Protocol)

	var wg sync.WaitGroup
	wg.Add(1)

	// Shutdown the server when the run context is done.
	go func() {
		defer wg.Done()

		<-ctx.Done()
		if err := hs.srv.Shutdown(context.Background()); err != nil {
			hs.log.Errorf("failed to shutdown server error=%s", err)
		}
	}()

	switch hs.config.Protocol {
	case HTTPScheme:
		err = hs.srv.Serve(listener)
	case HTTPSScheme:
		err = hs.srv.ServeTLS(listener, hs.config.CertFile, hs.config.KeyFile)
	}

	if errors.Is(err, http.ErrServerClosed) {
		hs.log.Debugf("server was shutdown gracefully")
		err = nil
	}

	wg.Wait()

	return err
}

// Addr returns the address the server is listening on,
// empty string if the server is not running.
func (hs *HTTPServer) Addr() string {
	addr, _ := hs.addr.Load().(string)
	return addr
}

func (hs *HTTPServer) listener() (net.Listener, error) {
	listener := hs.Listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", hs.srv.Addr)
		if err != nil {
			return nil, fmt.Errorf("failed to open listener on address %s: %w", hs.srv.Addr, err)
		}
	}

	if hs.config.PromRegistry != nil {
		listener = conntrack.NewListener(listener, hs.config.PromRegistry, hs.config.PromNamespace)
	}
	if rl, wl := hs.config.ReadLimit, hs.config.WriteLimit; rl > 0 || wl > 0 {
		// The ReadLimit limits reads *from* clients and the WriteLimit
		// limits writes *to* clients, so ReadLimit is the rx bandwidth
		// and WriteLimit is the tx bandwidth of the listener.
		listener = ratelimit.NewListener(listener, rl, wl)
	}

	return listener, nil
}

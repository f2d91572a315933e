// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"fmt"
	"net/url"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"github.com/301st/relay"
	"github.com/301st/relay/bind"
	"github.com/301st/relay/httplog"
	"github.com/301st/relay/internal/version"
	"github.com/301st/relay/log"
	"github.com/301st/relay/log/stdlog"
	"github.com/301st/relay/middleware"
	"github.com/301st/relay/runctx"
	"github.com/301st/relay/utils/cobrautil"
)

const promNs = "relay"

type command struct {
	promReg *prometheus.Registry

	configFile       string
	basicAuth        *url.Userinfo
	endpoints        []*relay.ProxyEndpoint
	fetcherConfig    *relay.FetcherConfig
	httpServerConfig *relay.HTTPServerConfig
	apiServerConfig  *relay.HTTPServerConfig
	logConfig        *log.Config

	dryRun bool
	goleak bool
}

func makeCommand() command {
	apiServerConfig := relay.DefaultHTTPServerConfig()
	apiServerConfig.Addr = "localhost:10000"

	return command{
		promReg:          prometheus.NewRegistry(),
		fetcherConfig:    relay.DefaultFetcherConfig(),
		httpServerConfig: relay.DefaultHTTPServerConfig(),
		apiServerConfig:  apiServerConfig,
		logConfig:        log.DefaultConfig(),
	}
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}
	onError, err := c.registerErrorsMetric()
	if err != nil {
		return fmt.Errorf("register errors metric: %w", err)
	}
	logger := stdlog.New(c.logConfig, stdlog.WithOnError(onError))

	defer func() {
		if cmdErr != nil {
			logger.Errorf("fatal error exiting: %s", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	logger.Infof("Relay %s (%s)", version.Version, version.Commit)
	logger.Debugf("resource limits: GOMAXPROCS=%d GOMEMLIMIT=%s", runtime.GOMAXPROCS(0), os.Getenv("GOMEMLIMIT"))

	var configz []byte
	{
		cfg := cobrautil.DescribeFlags(cmd.Flags(), true)
		if len(cfg) > 0 {
			logger.Infof("configuration\n%s", cfg)
		} else {
			logger.Infof("using default configuration")
		}

		configz = cobrautil.DescribeFlags(cmd.Flags(), false)
		logger.Debugf("all configuration\n%s\n\n", configz)
	}

	if err := c.registerProcMetrics(); err != nil {
		return fmt.Errorf("register process metrics: %w", err)
	}
	if err := c.registerVersionMetric(); err != nil {
		return fmt.Errorf("register version metric: %w", err)
	}

	g := runctx.NewGroup()
	var srv *relay.HTTPServer
	{
		f := relay.NewProxyFetcher(c.fetcherConfig)
		defer f.CloseIdleConnections()

		h, err := relay.NewHandler(&relay.HandlerConfig{
			BasicAuth:     c.basicAuth,
			Endpoints:     c.endpoints,
			PromNamespace: promNs,
			PromRegistry:  c.promReg,
		}, f, logger.Named("relay"))
		if err != nil {
			return err
		}

		for _, e := range c.endpoints {
			logger.Infof("using proxy endpoint %s", relay.RedactProxyEndpoint(e))
		}

		hl := httplog.NewLogger(logger.Named("server").Infof, c.httpServerConfig.LogHTTPMode).LogFunc()
		handler := middleware.NewPrometheus(c.promReg, promNs).Wrap(hl.Wrap(h))

		c.httpServerConfig.PromNamespace = promNs
		c.httpServerConfig.PromRegistry = c.promReg

		srv, err = relay.NewHTTPServer(c.httpServerConfig, handler, logger.Named("server"))
		if err != nil {
			return err
		}
		g.Add(srv.Run)
	}

	{
		h := relay.NewAPIHandler(c.promReg, srv, string(configz))
		a, err := relay.NewHTTPServer(c.apiServerConfig, h, logger.Named("api"))
		if err != nil {
			return err
		}
		g.Add(a.Run)
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
				os.Exit(1)
			}
		}()
	}

	if c.dryRun {
		return nil
	}

	return g.Run()
}

func (c *command) registerErrorsMetric() (func(name string), error) {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNs,
		Name:      "errors_total",
		Help:      "Number of errors",
	}, []string{"name"})

	if err := c.promReg.Register(m); err != nil {
		return nil, err
	}

	return func(name string) {
		m.WithLabelValues(name).Inc()
	}, nil
}

func (c *command) registerProcMetrics() error {
	return multierr.Combine(
		// Note that ProcessCollector is only available in Linux and Windows.
		c.promReg.Register(collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{Namespace: promNs})),
		c.promReg.Register(collectors.NewGoCollector()),
	)
}

func (c *command) registerVersionMetric() error {
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: promNs,
		Name:      "version",
		Help:      "Relay version, value is always 1",
		ConstLabels: prometheus.Labels{
			"version": version.Version,
			"commit":  version.Commit,
			"time":    version.Time,
		},
	}, func() float64 {
		return 1
	}))
}

func Command() *cobra.Command {
	c := makeCommand()

	cmd := &cobra.Command{
		Use:   "run [--address <host:port>] --basic-auth <username:password> [--proxy <username:password@host:port>]...",
		Short: "Start the relay server",
		Long: "Start the relay server. " +
			"The relay authenticates each request with basic authentication, " +
			"reads the target URL from the request body and fetches it through the configured " +
			"upstream proxy endpoints, trying them in order until one succeeds. " +
			"The ClientIp query parameter of the target URL is replaced with the host of the proxy " +
			"used for each attempt.",
		RunE: c.runE,
	}

	fs := cmd.Flags()
	bind.ConfigFile(fs, &c.configFile)
	bind.HTTPServerConfig(fs, c.httpServerConfig, "")
	bind.BasicAuth(fs, &c.basicAuth)
	bind.ProxyEndpoints(fs, &c.endpoints)
	bind.FetcherConfig(fs, c.fetcherConfig)
	bind.HTTPServerConfig(fs, c.apiServerConfig, "api", relay.HTTPScheme)
	bind.LogConfig(fs, c.logConfig)

	fs.BoolVar(&c.dryRun, "dry-run", false, "Validate the configuration and exit. ")
	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")

	bind.MarkFlagHidden(cmd,
		"dry-run",
		"goleak",
	)

	return cmd
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ready

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/spf13/cobra"
)

type command struct {
	apiAddr string
	timeout time.Duration
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	host, port, err := net.SplitHostPort(c.apiAddr)
	if err != nil {
		return err
	}
	if host == "" {
		host = "localhost"
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, fmt.Sprintf("http://%s/readyz", net.JoinHostPort(host, port)), http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return err
		}
		if _, err := cmd.ErrOrStderr().Write(b); err != nil {
			return err
		}
		return fmt.Errorf("not ready")
	}

	return nil
}

func Command() *cobra.Command {
	c := command{
		apiAddr: "localhost:10000",
		timeout: 2 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "ready [--api-address <host:port>]",
		Short: "Readiness probe for the relay",
		Long:  "Readiness probe for the relay. It checks the API server readyz endpoint, it is designed for use in containerized environments.",
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	fs.StringVar(&c.apiAddr, "api-address", c.apiAddr, "<host:port>"+
		"The API server address. ")
	fs.DurationVar(&c.timeout, "timeout", c.timeout, "The request timeout. ")

	return cmd
}

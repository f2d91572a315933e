// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dialvia

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func serveOne(l net.Listener, h func(conn net.Conn) error) error {
	conn, err := l.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()
	return h(conn)
}

func writeStatus(conn net.Conn, code int) error {
	res := http.Response{
		StatusCode: code,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Body:       http.NoBody,
	}
	return res.Write(conn)
}

func TestHTTPProxyDialerDialContext(t *testing.T) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	d := HTTPProxy(
		(&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		&url.URL{Scheme: "http", Host: l.Addr().String(), User: url.UserPassword("u", "p")},
	)

	ctx := context.Background()

	t.Run("status 200", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() {
			errCh <- serveOne(l, func(conn net.Conn) error {
				req, err := http.ReadRequest(bufio.NewReader(conn))
				if err != nil {
					return err
				}
				if req.Method != http.MethodConnect {
					t.Errorf("method = %s, want CONNECT", req.Method)
				}
				if req.Header.Get("Proxy-Authorization") == "" {
					t.Error("missing Proxy-Authorization header")
				}
				return writeStatus(conn, 200)
			})
		}()

		conn, err := d.DialContext(ctx, "tcp", "foobar.com:443")
		if err != nil {
			t.Fatal(err)
		}
		conn.Close()

		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	})

	t.Run("status 407", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() {
			errCh <- serveOne(l, func(conn net.Conn) error {
				if _, err := http.ReadRequest(bufio.NewReader(conn)); err != nil {
					return err
				}
				return writeStatus(conn, 407)
			})
		}()

		conn, err := d.DialContext(ctx, "tcp", "foobar.com:443")
		if err == nil {
			conn.Close()
			t.Fatal("err is nil")
		}

		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	})

	t.Run("context canceled", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() {
			errCh <- serveOne(l, func(conn net.Conn) error {
				// Read the request and hang until the client gives up.
				_, err := http.ReadRequest(bufio.NewReader(conn))
				if err != nil {
					return err
				}
				_, err = conn.Read(make([]byte, 1))
				if err == io.EOF {
					err = nil
				}
				return err
			})
		}()

		ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()

		if _, err := d.DialContext(ctx, "tcp", "foobar.com:443"); err != context.DeadlineExceeded { //nolint:errorlint // test it explicitly
			t.Fatalf("err = %v, want context.DeadlineExceeded", err)
		}

		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	})

	t.Run("unsupported network", func(t *testing.T) {
		if _, err := d.DialContext(ctx, "udp", "foobar.com:443"); err == nil {
			t.Fatal("err is nil")
		}
	})
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"fmt"
	"net/url"
	"strings"
)

// ProxyEndpoint is one upstream HTTP forward proxy with its credentials.
// Endpoints are parsed at startup and never modified afterwards,
// the order they are configured in is the fallback attempt order.
type ProxyEndpoint struct {
	// Host is the proxy host, for IP-allowlisted upstreams it is also the
	// value substituted into the ClientIp query parameter.
	Host string
	// Port is the proxy port.
	Port string
	// User holds the proxy basic authentication credentials.
	User *url.Userinfo
}

// ParseProxyEndpoint parses an endpoint in the form "username:password@host:port".
func ParseProxyEndpoint(val string) (*ProxyEndpoint, error) {
	u, err := url.Parse(normalizeURLScheme(val))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy endpoint %q", val)
	}

	if u.Scheme != "http" {
		return nil, fmt.Errorf("invalid proxy scheme %q, only http proxies are supported", u.Scheme)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("missing username")
	}
	if p, _ := u.User.Password(); p == "" {
		return nil, fmt.Errorf("missing password")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}
	if !isPort(u.Port()) {
		return nil, fmt.Errorf("invalid port %q", u.Port())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("path, query, and fragment are not allowed in proxy endpoint")
	}

	return &ProxyEndpoint{
		Host: u.Hostname(),
		Port: u.Port(),
		User: u.User,
	}, nil
}

// URL returns the proxy URL with credentials.
func (e *ProxyEndpoint) URL() *url.URL {
	return &url.URL{
		Scheme: "http",
		User:   e.User,
		Host:   e.Addr(),
	}
}

// Addr returns the host:port address of the proxy.
func (e *ProxyEndpoint) Addr() string {
	return e.Host + ":" + e.Port
}

func (e *ProxyEndpoint) String() string {
	return e.User.String() + "@" + e.Addr()
}

// RedactProxyEndpoint formats an endpoint with the password masked.
func RedactProxyEndpoint(e *ProxyEndpoint) string {
	if e == nil {
		return ""
	}
	return e.User.Username() + ":xxxxx@" + e.Addr()
}

// ParseUserinfo parses a username:password string into url.Userinfo.
// Username and password are URL decoded, which allows passing special
// characters such as @ as %40 or a colon as %3a.
func ParseUserinfo(val string) (*url.Userinfo, error) {
	n := strings.Index(val, ":")
	if n < 0 {
		return nil, fmt.Errorf("expected username:password")
	}

	user, err := url.QueryUnescape(val[:n])
	if err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if user == "" {
		return nil, fmt.Errorf("missing username")
	}
	pass, err := url.QueryUnescape(val[n+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}
	if pass == "" {
		return nil, fmt.Errorf("missing password")
	}

	return url.UserPassword(user, pass), nil
}

// RedactUserinfo formats userinfo with the password masked.
func RedactUserinfo(ui *url.Userinfo) string {
	if ui == nil {
		return ""
	}
	if _, has := ui.Password(); has {
		return ui.Username() + ":xxxxx"
	}
	return ui.Username()
}

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"net/url"
	"strings"
)

// ClientIPParam is the query parameter the relay overwrites with the host of
// the proxy used for the attempt. IP-allowlisted upstream APIs require it to
// match the IP the request actually originates from.
const ClientIPParam = "ClientIp"

// RewriteClientIP replaces the value of every ClientIp query parameter of
// target with host. The query is processed as an ordered list of key-value
// pairs: other parameters, their order and their encoding are left intact,
// and no parameter is inserted when ClientIp is absent. The rewrite is
// idempotent.
//
// If target does not parse as a URL it is returned unchanged, the fetch
// attempt will fail and report the reason.
func RewriteClientIP(target, host string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	if u.RawQuery == "" {
		return target
	}

	pairs := strings.Split(u.RawQuery, "&")
	found := false
	for i, p := range pairs {
		k, _, ok := strings.Cut(p, "=")
		if ok && k == ClientIPParam {
			pairs[i] = ClientIPParam + "=" + url.QueryEscape(host)
			found = true
		}
	}
	if !found {
		return target
	}

	u.RawQuery = strings.Join(pairs, "&")
	return u.String()
}

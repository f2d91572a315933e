// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package relay implements an authenticated HTTP relay that forwards a
// client-supplied target URL through an ordered list of upstream HTTP
// proxies, trying them one by one until an attempt succeeds.
//
// It exists for callers that cannot use standard HTTP proxies themselves,
// e.g. Cloudflare Workers talking to an IP-allowlisted API: the caller POSTs
// the target URL, the relay fetches it through one of its proxies and returns
// the upstream response together with the proxy IP that served it.
package relay

// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package httplog

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/301st/relay/middleware"
)

type logWriter struct {
	b bytes.Buffer
}

func (w *logWriter) String() string {
	return w.b.String()
}

func (w *logWriter) URLLine(e middleware.LogEntry) {
	fmt.Fprintf(&w.b, "%s %s status=%v duration=%s\n",
		e.Request.Method,
		e.Request.URL.Redacted(),
		e.Status,
		e.Duration,
	)
}

func (w *logWriter) ShortURLLine(e middleware.LogEntry) {
	u := e.Request.URL
	scheme, host, path := u.Scheme, u.Host, u.Path
	if scheme != "" {
		scheme += "://"
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}

	fmt.Fprintf(&w.b, "%s %s status=%v duration=%s\n",
		e.Request.Method,
		scheme+host+path,
		e.Status,
		e.Duration,
	)
}

// Headers dumps the request headers with the Authorization value redacted.
func (w *logWriter) Headers(e middleware.LogEntry) {
	names := make([]string, 0, len(e.Request.Header))
	for k := range e.Request.Header {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		v := e.Request.Header[k]
		if k == middleware.AuthorizationHeader {
			fmt.Fprintf(&w.b, "%s: xxxxx\n", k)
			continue
		}
		for i := range v {
			fmt.Fprintf(&w.b, "%s: %s\n", k, v[i])
		}
	}
	fmt.Fprint(&w.b, "\n")
}

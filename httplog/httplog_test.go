// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package httplog

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/301st/relay/middleware"
)

func makeEntry(status int) middleware.LogEntry {
	r := httptest.NewRequest(http.MethodPost, "https://relay.local/", nil)
	r.Header.Set(middleware.AuthorizationHeader, "Basic dXNlcjpwYXNz")
	r.Header.Set("Content-Type", "text/plain")
	return middleware.LogEntry{
		Request:  r,
		Status:   status,
		Duration: 5 * time.Millisecond,
	}
}

func TestLoggerModes(t *testing.T) {
	var out strings.Builder
	logFunc := func(format string, args ...any) {
		fmt.Fprintf(&out, format, args...)
	}

	t.Run("none", func(t *testing.T) {
		out.Reset()
		NewLogger(logFunc, None).LogFunc()(makeEntry(200))
		if out.Len() != 0 {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("short-url", func(t *testing.T) {
		out.Reset()
		NewLogger(logFunc, ShortURL).LogFunc()(makeEntry(200))
		if !strings.Contains(out.String(), "POST https://relay.local/ status=200") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("headers redacts authorization", func(t *testing.T) {
		out.Reset()
		NewLogger(logFunc, Headers).LogFunc()(makeEntry(200))
		s := out.String()
		if strings.Contains(s, "dXNlcjpwYXNz") {
			t.Errorf("authorization value leaked: %q", s)
		}
		if !strings.Contains(s, "Authorization: xxxxx") {
			t.Errorf("missing redacted header: %q", s)
		}
		if !strings.Contains(s, "Content-Type: text/plain") {
			t.Errorf("missing header: %q", s)
		}
	})

	t.Run("errors logs only 5xx", func(t *testing.T) {
		out.Reset()
		f := NewLogger(logFunc, Errors).LogFunc()
		f(makeEntry(200))
		f(makeEntry(404))
		if out.Len() != 0 {
			t.Errorf("unexpected output %q", out.String())
		}
		f(makeEntry(502))
		if !strings.Contains(out.String(), "status=502") {
			t.Errorf("missing 5xx entry %q", out.String())
		}
	})
}

func TestDefaultModeString(t *testing.T) {
	if Mode("").String() != "errors" {
		t.Errorf("default mode = %s", Mode("").String())
	}
}

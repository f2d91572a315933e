// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stdlog

import (
	"bytes"
	"strings"
	"testing"

	rlog "github.com/301st/relay/log"
)

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(rlog.DefaultConfig())
	l.Unwrap().SetOutput(&buf)

	l.Debugf("hidden")
	l.Infof("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level:\n%s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info message not logged:\n%s", out)
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	l := New(rlog.DefaultConfig())
	l.Unwrap().SetOutput(&buf)

	l.Named("api").Infof("ping")
	if got := buf.String(); !strings.Contains(got, "[api] [INFO] ping") {
		t.Errorf("unexpected log line %q", got)
	}

	buf.Reset()
	l.Named("api").Named("ready").Infof("pong")
	if got := buf.String(); !strings.Contains(got, "[api.ready] [INFO] pong") {
		t.Errorf("unexpected log line %q", got)
	}
}

func TestLoggerOnError(t *testing.T) {
	var calls []string
	l := New(rlog.DefaultConfig(), WithOnError(func(name string) {
		calls = append(calls, name)
	}))
	l.Unwrap().SetOutput(new(bytes.Buffer))

	l.Infof("info")
	l.Errorf("boom")
	n := l.Named("relay")
	n.Errorf("boom")

	if len(calls) != 2 || calls[0] != "" || calls[1] != "relay" {
		t.Errorf("unexpected onError calls %v", calls)
	}
}

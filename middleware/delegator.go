// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"net/http"
)

// delegator wraps http.ResponseWriter to capture the response status code
// and the number of bytes written.
type delegator interface {
	http.ResponseWriter
	Status() int
	Written() int64
}

type responseDelegator struct {
	http.ResponseWriter
	status  int
	written int64
}

func newDelegator(w http.ResponseWriter, _ func(int)) delegator {
	if d, ok := w.(delegator); ok {
		return d
	}
	return &responseDelegator{ResponseWriter: w}
}

func (d *responseDelegator) WriteHeader(code int) {
	if d.status == 0 {
		d.status = code
	}
	d.ResponseWriter.WriteHeader(code)
}

func (d *responseDelegator) Write(b []byte) (int, error) {
	if d.status == 0 {
		d.status = http.StatusOK
	}
	n, err := d.ResponseWriter.Write(b)
	d.written += int64(n)
	return n, err
}

func (d *responseDelegator) Status() int {
	if d.status == 0 {
		return http.StatusOK
	}
	return d.status
}

func (d *responseDelegator) Written() int64 {
	return d.written
}

// Flush implements http.Flusher if the wrapped writer does.
func (d *responseDelegator) Flush() {
	if f, ok := d.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

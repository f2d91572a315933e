// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicAuth(t *testing.T) {
	ba := NewBasicAuth()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.SetBasicAuth("user", "pass")

	if user, pass, ok := ba.BasicAuth(r); !ok || user != "user" || pass != "pass" {
		t.Errorf("BasicAuth failed, got %v %v %v", user, pass, ok)
	}
	if !ba.AuthenticatedRequest(r, "user", "pass") {
		t.Errorf("AuthenticatedRequest failed")
	}
	if ba.AuthenticatedRequest(r, "user", "nope") {
		t.Errorf("AuthenticatedRequest accepted wrong password")
	}
}

func TestParseBasicAuthMalformed(t *testing.T) {
	for _, auth := range []string{
		"",
		"Basic",
		"Basic !!!not-base64!!!",
		"Basic dXNlcndpdGhvdXRjb2xvbg==", // "userwithoutcolon"
		"Bearer dXNlcjpwYXNz",
	} {
		if _, _, ok := parseBasicAuth(auth); ok {
			t.Errorf("parseBasicAuth(%q) ok = true", auth)
		}
	}
}

func TestBasicAuthWrap(t *testing.T) {
	ba := NewBasicAuth()

	h := ba.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(AuthorizationHeader) != "" {
			t.Errorf("auth header should not be forwarded")
		}
		w.WriteHeader(http.StatusOK)
	}), "user", "pass")

	t.Run("Authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.SetBasicAuth("user", "pass")

		h.ServeHTTP(w, r)
		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("got %v", w.Result().StatusCode)
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		h.ServeHTTP(w, r)
		res := w.Result()
		if res.StatusCode != http.StatusUnauthorized {
			t.Errorf("got %v", res.StatusCode)
		}
		b, _ := io.ReadAll(res.Body)
		if string(b) != "Unauthorized" {
			t.Errorf("body = %q, want Unauthorized", b)
		}
	})
}

// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	if doc["basePath"] != "/api/v1" {
		t.Errorf("basePath = %v", doc["basePath"])
	}
}

func TestTokenCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/token" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"invalid username or password"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc.def.ghi","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "token", "--server", srv.URL, "--username", "admin", "--password", "right")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "abc.def.ghi" {
		t.Errorf("token = %q", out)
	}

	_, err = execute(t, "token", "--server", srv.URL, "--username", "admin", "--password", "wrong")
	if err == nil || !strings.Contains(err.Error(), "invalid username or password") {
		t.Errorf("err = %v", err)
	}
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	if _, err := execute(t, "user", "create", "--username", "x"); err == nil {
		t.Error("expected an error without --password")
	}
}

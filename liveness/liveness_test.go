// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package liveness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pagetally/models"
)

func settingsFor(t *testing.T, server *httptest.Server) models.Settings {
	t.Helper()
	return models.Settings{
		Site:     strings.TrimPrefix(server.URL, "http://"),
		UseHTTPS: false,
	}
}

func TestCheck_LivePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blog/post" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewSiteChecker()

	ok, _, err := checker.Check(context.Background(), settingsFor(t, server), "blog/post")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() reported a live path as dead")
	}

	ok, reason, err := checker.Check(context.Background(), settingsFor(t, server), "no/such/page")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if ok {
		t.Error("Check() reported a dead path as live")
	}
	if reason == "" {
		t.Error("Check() returned no reason for a dead path")
	}
}

func TestCheck_FollowsOneRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		case "/new":
			w.WriteHeader(http.StatusOK)
		case "/loop":
			http.Redirect(w, r, "/loop2", http.StatusMovedPermanently)
		case "/loop2":
			http.Redirect(w, r, "/loop3", http.StatusMovedPermanently)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	checker := NewSiteChecker()

	// One hop is followed
	ok, _, err := checker.Check(context.Background(), settingsFor(t, server), "old")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() should follow a single redirect")
	}

	// Two hops are not
	ok, _, err = checker.Check(context.Background(), settingsFor(t, server), "loop")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if ok {
		t.Error("Check() should stop after one redirect")
	}
}

func TestCheck_UnreachableSite(t *testing.T) {
	checker := NewSiteChecker()

	s := models.Settings{Site: "127.0.0.1:1", UseHTTPS: false}
	ok, reason, err := checker.Check(context.Background(), s, "anything")
	if err != nil {
		t.Fatalf("Check() error = %v (connection failures are a reason, not an error)", err)
	}
	if ok {
		t.Error("Check() reported an unreachable site as live")
	}
	if reason == "" {
		t.Error("Check() returned no reason for an unreachable site")
	}
}

func TestCheck_NoSiteConfigured(t *testing.T) {
	checker := NewSiteChecker()

	if _, _, err := checker.Check(context.Background(), models.Settings{}, "x"); err == nil {
		t.Error("Check() should fail when no site is configured")
	}
}

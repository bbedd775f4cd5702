// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package canonical

import (
	"reflect"
	"testing"

	"github.com/danielhkuo/pagetally/models"
)

func TestCanonicalize(t *testing.T) {
	strict := models.Settings{IgnoreQueries: true, RemoveIndexPages: true}
	loose := models.Settings{IgnoreQueries: false, RemoveIndexPages: false}

	tests := []struct {
		name     string
		path     string
		query    string
		settings models.Settings
		want     string
	}{
		{"root", "/", "", strict, ""},
		{"empty", "", "", strict, ""},
		{"simple", "/blog/post", "", strict, "blog/post"},
		{"trailing slash", "/blog/post/", "", strict, "blog/post"},
		{"query ignored", "/blog/post", "utm_source=feed", strict, "blog/post"},
		{"query kept", "/blog/post", "page=2", loose, "blog/post?page=2"},
		{"index stripped", "/docs/index.html", "", strict, "docs"},
		{"root index stripped", "/index.html", "", strict, ""},
		{"index kept", "/docs/index.html", "", loose, "docs/index.html"},
		{"index not a suffix of a name", "/docs/my-index.html", "", strict, "docs/my-index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.path, tt.query, tt.settings)
			if got != tt.want {
				t.Errorf("Canonicalize(%q, %q) = %q, want %q", tt.path, tt.query, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"root is one empty segment", "", []string{""}},
		{"single segment", "about", []string{"about"}},
		{"nested", "x/y/z", []string{"x", "y", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

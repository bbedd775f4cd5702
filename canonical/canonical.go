// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package canonical

import (
	"strings"

	"github.com/danielhkuo/pagetally/models"
)

// Canonicalize normalizes a request path into the string the engine keys on.
// Leading and trailing slashes are trimmed, the query string is dropped or
// folded into the last segment per settings, and a trailing index.html is
// stripped when configured. The site root canonicalizes to "".
func Canonicalize(rawPath, rawQuery string, s models.Settings) string {
	p := strings.Trim(rawPath, "/")

	if rawQuery != "" && !s.IgnoreQueries {
		p = p + "?" + rawQuery
	}

	if s.RemoveIndexPages {
		if p == "index.html" {
			return ""
		}
		p = strings.TrimSuffix(p, "/index.html")
	}

	return p
}

// Segments splits a canonical path into its folder chain plus page name.
// The empty path (site root) is a single empty-name segment.
func Segments(path string) []string {
	if path == "" {
		return []string{""}
	}
	return strings.Split(path, "/")
}

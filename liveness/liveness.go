// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package liveness

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/pagetally/models"
)

// Checker verifies that a path is actually served by the tracked site before
// the engine is allowed to register it. Implementations must bound their own
// latency; a slow tracked site must not hold worker capacity hostage.
type Checker interface {
	Check(ctx context.Context, s models.Settings, path string) (ok bool, reason string, err error)
}

// SiteChecker probes the tracked site over HTTP, following at most one
// redirect.
type SiteChecker struct {
	client *http.Client
}

const checkTimeout = 10 * time.Second

func NewSiteChecker() *SiteChecker {
	return &SiteChecker{
		client: &http.Client{
			Timeout: checkTimeout,
			// One redirect hop only; anything deeper is treated as dead.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > 1 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Check issues a GET against the tracked site for the given canonical path
// and reports whether it resolved to a success status.
func (c *SiteChecker) Check(ctx context.Context, s models.Settings, path string) (bool, string, error) {
	if s.Site == "" {
		return false, "", fmt.Errorf("no tracked site configured")
	}

	scheme := "http"
	if s.UseHTTPS {
		scheme = "https"
	}
	url := scheme + "://" + s.Site + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to build liveness request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err.Error(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, "", nil
	}
	return false, resp.Status, nil
}

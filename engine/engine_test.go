// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/danielhkuo/pagetally/testutil"
)

func setupEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	testutil.SeedInit(t, conn)
	return New(conn, conn), conn
}

func TestRecordVisitAndGet(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	if err := e.RecordVisit(ctx, "blog/post-1", "fingerprint-1"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	record, err := e.Get(ctx, "blog/post-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Page != "blog/post-1" {
		t.Errorf("Expected page 'blog/post-1', got '%s'", record.Page)
	}
	if record.Views != 1 || record.Hits != 1 {
		t.Errorf("Expected 1 view / 1 hit, got %d / %d", record.Views, record.Hits)
	}
}

func TestRepeatVisitorCountsHitsNotViews(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	// Same visitor twice, a second visitor once
	for _, fp := range []string{"f1", "f1", "f2"} {
		if err := e.RecordVisit(ctx, "page", fp); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	record, err := e.Get(ctx, "page")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 2 {
		t.Errorf("Expected 2 views, got %d", record.Views)
	}
	if record.Hits != 3 {
		t.Errorf("Expected 3 hits, got %d", record.Hits)
	}
}

func TestGetUnknownPath(t *testing.T) {
	e, _ := setupEngine(t)

	_, err := e.Get(context.Background(), "never/visited")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPageExists(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	exists, err := e.PageExists(ctx, "some/page")
	if err != nil {
		t.Fatalf("PageExists failed: %v", err)
	}
	if exists {
		t.Error("Expected page to not exist before any visit")
	}

	if err := e.RecordVisit(ctx, "some/page", "fp"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	exists, err = e.PageExists(ctx, "some/page")
	if err != nil {
		t.Fatalf("PageExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected page to exist after a visit")
	}
}

func TestRecordVisitBeforeInit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	e := New(conn, conn)

	err := e.RecordVisit(context.Background(), "page", "fp")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestConcurrentFirstVisitsConverge(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()

	const visitors = 8
	var wg sync.WaitGroup
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- e.RecordVisit(ctx, "docs/guide", string(rune('a'+n)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	if n := testutil.CountRows(t, conn, "paths"); n != 1 {
		t.Errorf("Expected 1 path row, got %d", n)
	}
	if n := testutil.CountRows(t, conn, "pages"); n != 1 {
		t.Errorf("Expected 1 page row, got %d", n)
	}
	// root + "docs"
	if n := testutil.CountRows(t, conn, "folders"); n != 2 {
		t.Errorf("Expected 2 folder rows, got %d", n)
	}

	record, err := e.Get(ctx, "docs/guide")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != visitors || record.Hits != visitors {
		t.Errorf("Expected %d views / %d hits, got %d / %d", visitors, visitors, record.Views, record.Hits)
	}
}

func TestRootLevelPage(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()

	if err := e.RecordVisit(ctx, "about", "fp"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	// No extra folders created for a page directly under the root
	if n := testutil.CountRows(t, conn, "folders"); n != 1 {
		t.Errorf("Expected only the root folder, got %d rows", n)
	}

	record, err := e.GetPage(ctx, 0, "about")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if record.Views != 1 {
		t.Errorf("Expected 1 view, got %d", record.Views)
	}
}

func TestSiteRootEmptyPath(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	// The site root canonicalizes to the empty path
	if err := e.RecordVisit(ctx, "", "fp"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	record, err := e.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 1 || record.Hits != 1 {
		t.Errorf("Expected 1 view / 1 hit, got %d / %d", record.Views, record.Hits)
	}
}

func TestFlushFoldsAndClears(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()

	for _, fp := range []string{"f1", "f1", "f2"} {
		if err := e.RecordVisit(ctx, "page", fp); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	saltBefore := testutil.ActiveSalt(t, conn)

	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	// Totals survive the flush unchanged
	record, err := e.Get(ctx, "page")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 2 || record.Hits != 3 {
		t.Errorf("Expected 2 views / 3 hits after flush, got %d / %d", record.Views, record.Hits)
	}

	// Ledger and visitor set are cleared
	if n := testutil.CountRows(t, conn, "page_visitors"); n != 0 {
		t.Errorf("Expected empty ledger after flush, got %d rows", n)
	}
	if n := testutil.CountRows(t, conn, "visitors"); n != 0 {
		t.Errorf("Expected empty visitors after flush, got %d rows", n)
	}

	// Salt rotated
	if testutil.ActiveSalt(t, conn) == saltBefore {
		t.Error("Expected salt to rotate on flush")
	}
	if n := testutil.CountRows(t, conn, "salt"); n != 1 {
		t.Errorf("Expected exactly one salt row, got %d", n)
	}
}

func TestFlushIsIdempotentOnEmptyLedger(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	if err := e.RecordVisit(ctx, "page", "fp"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Second flush failed: %v", err)
	}

	record, err := e.Get(ctx, "page")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 1 || record.Hits != 1 {
		t.Errorf("Expected 1 view / 1 hit, got %d / %d", record.Views, record.Hits)
	}
}

func TestFlushBeforeInit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	e := New(conn, conn)

	err := e.Flush(context.Background())
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestSaltRotationUnlinksVisitors(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()

	if err := e.RecordVisit(ctx, "page", "stable-fingerprint"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	var before string
	if err := conn.QueryRow(`SELECT visitor_id FROM visitors`).Scan(&before); err != nil {
		t.Fatalf("Failed to read visitor hash: %v", err)
	}

	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if err := e.RecordVisit(ctx, "page", "stable-fingerprint"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	var after string
	if err := conn.QueryRow(`SELECT visitor_id FROM visitors`).Scan(&after); err != nil {
		t.Fatalf("Failed to read visitor hash: %v", err)
	}

	if before == after {
		t.Error("Expected the same fingerprint to hash differently after salt rotation")
	}

	// The returning visitor counts as new, so views grow to 2
	record, err := e.Get(ctx, "page")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 2 || record.Hits != 2 {
		t.Errorf("Expected 2 views / 2 hits, got %d / %d", record.Views, record.Hits)
	}
}

func TestCountsSpanFlushBoundary(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	if err := e.RecordVisit(ctx, "page", "f1"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := e.RecordVisit(ctx, "page", "f2"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	// Durable baseline plus live ledger in one read
	record, err := e.Get(ctx, "page")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Views != 2 || record.Hits != 2 {
		t.Errorf("Expected 2 views / 2 hits, got %d / %d", record.Views, record.Hits)
	}
}

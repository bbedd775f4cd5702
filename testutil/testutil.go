// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/pagetally/auth"
	"github.com/danielhkuo/pagetally/db"
	"github.com/danielhkuo/pagetally/models"
	_ "modernc.org/sqlite"
)

// Test admin credentials seeded by SeedInit
const (
	TestUser = "admin"
	TestPass = "correct horse"
	TestSite = "example.com"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// A single connection is enforced so every caller sees the same memory
// database; database/sql serializes access over it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// SeedInit populates settings, admin credentials, and a first salt, the same
// rows engine.Init writes, so tests can start from an initialized install
// without going through the init handler.
func SeedInit(t *testing.T, conn *sql.DB) {
	t.Helper()

	settings := models.Settings{
		Site:             TestSite,
		UseHTTPS:         false,
		IgnoreQueries:    true,
		RemoveIndexPages: true,
	}
	settingsJSON, _ := json.Marshal(settings)

	hashedPass, err := auth.HashPassword(TestPass)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	userJSON, _ := json.Marshal(TestUser)
	passJSON, _ := json.Marshal(hashedPass)

	salt, err := auth.NewSalt()
	if err != nil {
		t.Fatalf("Failed to generate test salt: %v", err)
	}

	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO settings (setting_name, setting) VALUES ('schema_ver', '1')`, nil},
		{`INSERT INTO settings (setting_name, setting) VALUES ('current_settings', $1)`, []interface{}{string(settingsJSON)}},
		{`INSERT INTO settings (setting_name, setting) VALUES ('user', $1)`, []interface{}{string(userJSON)}},
		{`INSERT INTO settings (setting_name, setting) VALUES ('password', $1)`, []interface{}{string(passJSON)}},
		{`INSERT INTO salt (salt) VALUES ($1)`, []interface{}{salt}},
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s.query, s.args...); err != nil {
			t.Fatalf("Failed to seed init state: %v", err)
		}
	}
}

// ActiveSalt reads the current anonymization salt.
func ActiveSalt(t *testing.T, conn *sql.DB) string {
	t.Helper()

	var salt string
	if err := conn.QueryRow(`SELECT salt FROM salt`).Scan(&salt); err != nil {
		t.Fatalf("Failed to read salt: %v", err)
	}
	return salt
}

// CountRows counts the rows of a table.
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

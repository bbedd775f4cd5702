// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the request, response, and domain types shared by the
engine and the HTTP handlers.

Visitor fingerprints never appear in any model: the engine consumes them as
plain strings on the write path and persists only their salted hashes, so
there is nothing identifying to serialize.

# Settings

Settings is stored as a JSON value in the settings table and returned verbatim
from GET /api/settings. DefaultSettings describes pre-init behavior.
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the cryptographic primitives for visitor anonymization
and admin authentication.

# Visitor Hashing

Visitor IDs are SHA3-256 digests of fingerprint+salt:

	id := auth.HashVisitor(ip+userAgent, activeSalt)

The salt is a 32-byte random secret (NewSalt) that the flush cycle replaces,
bounding how long any two visits can be linked to the same identity.

# Admin Passwords

Admin passwords are stored as bcrypt hashes (HashPassword/CheckPassword).
Before initialization, CheckDefault accepts the built-in admin/admin pair so
first-time setup can happen at all.
*/
package auth

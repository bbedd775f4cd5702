// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

var (
	// ErrNotFound is returned when a path, page, or folder is not registered.
	ErrNotFound = errors.New("record not found")

	// ErrNotInitialized is returned by operations that need settings and a
	// salt before Init has run.
	ErrNotInitialized = errors.New("tracker is not initialized")

	// ErrAlreadyInitialized is returned by Init on an initialized install.
	ErrAlreadyInitialized = errors.New("tracker is already initialized")

	// ErrRootFolder guards the sentinel root from deletion.
	ErrRootFolder = errors.New("cannot delete the root folder")
)

// Package repository implements MongoDB-backed stores for the application's
// documents. Sentinel errors let handlers distinguish failure scenarios
// without inspecting driver internals.
package repository

import "errors"

// ErrNotFound is returned when a document does not exist or is owned by a
// different user. Handlers translate it into a 404 (or 401 from the auth
// gate when the subject of a token no longer exists).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering or updating to an email that
// another user already holds. Handlers translate it into a 400.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateCategory is returned when a category with the same name and
// type already exists for the user. Handlers translate it into a 400.
var ErrDuplicateCategory = errors.New("category already exists")

package repository

import "errors"

// ErrNotFound is returned when no record matches the given identity.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned by TryTransition when the live record no longer
// satisfies the precondition: another writer already moved it. The record is
// left untouched.
var ErrConflict = errors.New("transition precondition no longer holds")

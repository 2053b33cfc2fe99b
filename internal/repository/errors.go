// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as services and handlers to distinguish between failure
// scenarios. Not-found conditions are reported as sql.ErrNoRows,
// matching what QueryRow returns for an empty result.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as deleting an action type that is still
// referenced by check-ins or time rules, or closing a check-in that
// another request closed first. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned by user creation when the username
// is already taken.
var ErrUsernameExists = errors.New("username already exists")

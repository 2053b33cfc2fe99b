// Package service implements the attendance core: the check-in
// ledger with its pairing state machine, the admin catalog over
// reference data, and the historical query/aggregation operations.
// Handlers translate the typed errors defined here into HTTP
// responses; nothing in this package knows about transport.
package service

import "errors"

// ValidationError reports malformed or inconsistent input. It is
// detected before any state mutation and surfaced verbatim to the
// caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// validationf is a small constructor used throughout the services.
func validationf(msg string) error { return &ValidationError{Msg: msg} }

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Pairing failures. These are terminal for the request: the state
// machine rejected the transition and nothing was written.
var (
	// ErrAlreadyOpen rejects an opening event while an event of the
	// same opening role is still ongoing for the user.
	ErrAlreadyOpen = errors.New("an open check-in of this kind already exists")

	// ErrNoOpenCounterpart rejects a closing event when no matching
	// open event exists at or before its timestamp.
	ErrNoOpenCounterpart = errors.New("no open counterpart check-in to close")

	// ErrNoOpenShift rejects a temporary-event start while no shift
	// is ongoing for the user.
	ErrNoOpenShift = errors.New("no ongoing shift; clock in first")

	// ErrEventStillOpen rejects a shift end while a temporary event
	// is still ongoing for the user.
	ErrEventStillOpen = errors.New("a temporary event is still open; close it first")
)

// IsPairing reports whether err is one of the pairing rejections.
func IsPairing(err error) bool {
	return errors.Is(err, ErrAlreadyOpen) ||
		errors.Is(err, ErrNoOpenCounterpart) ||
		errors.Is(err, ErrNoOpenShift) ||
		errors.Is(err, ErrEventStillOpen)
}

// Package apperrors defines the error taxonomy shared by repositories,
// services and handlers. Handlers map these sentinels to HTTP status codes;
// everything else wraps them with context via fmt.Errorf and %w.
package apperrors

import "errors"

var (
	// ErrNotFound marks a missing chat, folder, user, invitation or join request.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an actor without authority for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks an invariant violation such as a duplicate membership
	// or a second normal chat between the same two users.
	ErrConflict = errors.New("conflict")
	// ErrExpired marks an invitation used past its lifetime.
	ErrExpired = errors.New("expired")
)

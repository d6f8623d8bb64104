package session

import "errors"

var (
	// ErrInvalidToken is returned for any refresh token that cannot be
	// used: unknown, expired, revoked, or already rotated. Callers get
	// no detail about which.
	ErrInvalidToken = errors.New("session.invalid_token")

	// ErrNotFound is returned by stores when no pair matches.
	ErrNotFound = errors.New("session.not_found")

	// ErrAlreadyRotated is returned by stores when a compare-and-swap
	// rotation loses to a concurrent call.
	ErrAlreadyRotated = errors.New("session.already_rotated")
)

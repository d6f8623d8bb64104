// Package auth provides password-based principal authentication.
//
// It verifies credentials against bcrypt hashes and deliberately
// collapses every failure mode into ErrInvalidCredentials so callers
// cannot distinguish an unknown email from a wrong password. Session
// issuance lives in the session package; this one only answers "who is
// this" for a correct email and password.
package auth

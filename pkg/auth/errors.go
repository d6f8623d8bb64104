package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// suspended accounts alike to prevent user enumeration.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	ErrUserNotFound       = errors.New("auth.user_not_found")
	ErrEmailAlreadyExists = errors.New("auth.email_already_exists")
	ErrWeakPassword       = errors.New("auth.weak_password")
	ErrInvalidEmail       = errors.New("auth.invalid_email")
)

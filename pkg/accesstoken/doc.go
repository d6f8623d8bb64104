// Package accesstoken mints and verifies the short-lived access
// credential. Tokens are HS256 JWTs carrying the principal id as subject
// and the tenant id as a private claim; they are trusted for identity by
// the permission engine and never stored server-side. All verification
// failures collapse into ErrInvalidToken.
package accesstoken

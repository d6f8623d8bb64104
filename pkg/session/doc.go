// Package session manages rotating credential pairs: a short-lived
// access token plus a single-use refresh token.
//
// Each refresh grant is persisted as a SessionPair. Rotation revokes the
// presented pair and spawns a successor, linking them through the
// replaced-by reference. Presenting an already-rotated token is treated
// as a theft signal: the whole descendant chain is revoked and the
// caller is forced back through primary authentication.
//
// Expiry is a computed predicate over stored timestamps. Rows are never
// mutated by the clock; lookups fetch by token hash alone and the
// active check runs in application code afterwards.
package session

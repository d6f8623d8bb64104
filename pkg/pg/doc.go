// Package pg provides PostgreSQL connection management for the credential
// store and tenant directory: pgxpool setup with retry, a health check,
// goose schema migrations routed through the application logger, and
// helpers for classifying common Postgres errors.
package pg

// Package httpserver wraps http.Server with graceful shutdown on context
// cancellation or SIGINT/SIGTERM, plus a combined liveness/readiness
// health handler.
package httpserver

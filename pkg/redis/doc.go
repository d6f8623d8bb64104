// Package redis provides Redis client setup with connection retry and a
// health check. Used by the tenant directory cache.
package redis

// Package requestid attaches a correlation identifier to every inbound
// HTTP request. Client-supplied X-Request-ID values are reused when they
// are well formed; otherwise a fresh UUID is generated. The id is stored
// in the request context, echoed back in the response header, and exposed
// to the logger through LoggerExtractor.
package requestid

// Package logger builds slog loggers with consistent formatting and
// request-scoped attribute injection.
//
// The factory produces JSON output for production and text output for
// development. Context extractors let middleware-populated values such as
// the tenant id and request id appear on every log record without the
// call sites passing them explicitly:
//
//	log := logger.New(
//		logger.WithProduction("tenantcore"),
//		logger.WithContextExtractors(
//			tenant.LoggerExtractor(),
//			requestid.LoggerExtractor(),
//		),
//	)
//
// Security-relevant events (for example refresh-token reuse) are logged
// with the logger.Event attribute so audit pipelines can filter on a
// stable key rather than on message text.
package logger

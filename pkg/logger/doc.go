// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the codebase through a
// single factory, New, that creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static default
// attributes, and ContextExtractor callbacks that pull attributes out of the
// context on every Handle call. The resolution middleware stores the tenant
// in the request context, so wiring its extractors in stamps tenant_id and
// schema on every record logged during a tenant request without any explicit
// plumbing at call sites.
//
// # Architecture
//
// New picks the concrete slog.Handler (slog.NewTextHandler or
// slog.NewJSONHandler) based on the configured Format, then wraps it with
// LogHandlerDecorator, which runs the registered ContextExtractor callbacks
// before delegating to the underlying handler.
//
// Helper constructors such as Group, Error, TenantID, and Schema live in
// attr.go and keep attribute naming consistent across the codebase.
//
// # Usage
//
//	import (
//	    "github.com/dmitrymomot/tenantkit/pkg/logger"
//	    "github.com/dmitrymomot/tenantkit/pkg/requestid"
//	    "github.com/dmitrymomot/tenantkit/pkg/tenant"
//	)
//
//	func main() {
//	    log := logger.New(
//	        logger.WithProduction("tenantd"),
//	        logger.WithContextExtractors(
//	            requestid.LoggerExtractor(),
//	            tenant.LoggerExtractor(),
//	            tenant.SchemaLoggerExtractor(),
//	        ),
//	    )
//	    logger.SetAsDefault(log)
//	}
//
// # Error Handling
//
// The Error and Errors helpers produce attributes only when the supplied
// error is non-nil, allowing calls like:
//
//	log.Info("operation finished", logger.Error(err))
//
// without an additional nil check.
package logger

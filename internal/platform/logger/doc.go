// Package logger provides structured logging for the application.
//
// It configures a log/slog JSON logger from the server configuration and carries
// request-scoped loggers through context.Context, so that handlers, services and
// stores log with the trace ID of the request that reached them.
package logger

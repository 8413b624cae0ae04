// Package logger provides structured logging for the application on top of
// log/slog. It configures the process-wide logger from configuration and
// carries request-scoped loggers through context.Context.
package logger

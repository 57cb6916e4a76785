// Package observability provides metrics, tracing and logging helpers for
// background work.
package observability

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// GlobalLogger is the logger used by code running outside a request, such as
// scheduled jobs and command line tools.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// SetLogger replaces GlobalLogger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

// AsyncOperation tracks the lifetime of a background operation.
type AsyncOperation struct {
	name  string
	start time.Time
}

// LogAsyncOperationStart logs the start of an asynchronous operation.
func LogAsyncOperationStart(ctx context.Context, operation string, attrs ...any) *AsyncOperation {
	GlobalLogger.InfoContext(ctx, "async operation started",
		append([]any{slog.String("operation", operation)}, attrs...)...)
	return &AsyncOperation{name: operation, start: time.Now()}
}

// End logs the completion of the operation.
func (op *AsyncOperation) End(ctx context.Context, attrs ...any) {
	GlobalLogger.InfoContext(ctx, "async operation completed",
		append([]any{
			slog.String("operation", op.name),
			slog.Duration("duration", time.Since(op.start)),
		}, attrs...)...)
}

// Fail logs that the operation failed with err.
func (op *AsyncOperation) Fail(ctx context.Context, err error, attrs ...any) {
	GlobalLogger.ErrorContext(ctx, "async operation failed",
		append([]any{
			slog.String("operation", op.name),
			slog.Duration("duration", time.Since(op.start)),
			slog.String("error", err.Error()),
		}, attrs...)...)
}

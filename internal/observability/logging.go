// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// GlobalLogger is the logger used by repository helpers. Bootstrap replaces it
// with the request-context aware logger.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger swaps the logger used by this package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...any) {
	l.log(ctx, slog.LevelDebug, "create", "repository create", attrs...)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...any) {
	l.log(ctx, slog.LevelDebug, "update", "repository update", attrs...)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...any) {
	l.log(ctx, slog.LevelDebug, "delete", "repository delete", attrs...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.log(ctx, slog.LevelError, operation, "repository error", slog.String("error", err.Error()))
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, operation, msg string, attrs ...any) {
	base := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	GlobalLogger.Log(ctx, level, msg, append(base, attrs...)...)
}

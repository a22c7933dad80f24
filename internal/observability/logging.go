// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetGlobalLogger replaces the logger used by store and persistence loggers.
func SetGlobalLogger(l *slog.Logger) {
	GlobalLogger = &Logger{Logger: l}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key for the correlation id of a unit of work.
const CorrelationID LogContextKey = "correlation_id"

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableCorrelationID bool
	EnableStoreLogging  bool
}

var (
	// Config holds the current logging configuration.
	Config = LoggingConfig{
		EnableCorrelationID: true,
		EnableStoreLogging:  true,
	}
)

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// StoreLogger provides structured logging for domain store mutations.
type StoreLogger struct {
	collection string
	logger     *Logger
}

// NewStoreLogger creates a new StoreLogger for the given collection.
func NewStoreLogger(collection string) *StoreLogger {
	return &StoreLogger{
		collection: collection,
	}
}

func (l *StoreLogger) target() *Logger {
	if l.logger != nil {
		return l.logger
	}
	return GlobalLogger
}

// WithLogger pins the logger instead of following GlobalLogger.
func (l *StoreLogger) WithLogger(logger *slog.Logger) *StoreLogger {
	return &StoreLogger{collection: l.collection, logger: &Logger{Logger: logger}}
}

// LogMutation logs a successful store mutation.
func (l *StoreLogger) LogMutation(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableStoreLogging {
		return
	}
	attrs := []any{
		slog.String("collection", l.collection),
		slog.String("operation", operation),
	}
	if Config.EnableCorrelationID {
		attrs = append(attrs, slog.String("correlation_id", ExtractCorrelationID(ctx)))
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.target().InfoContext(ctx, "store mutation", attrs...)
}

// LogRejected logs a mutation refused by a store rule.
func (l *StoreLogger) LogRejected(ctx context.Context, operation string, err error) {
	if !Config.EnableStoreLogging {
		return
	}
	l.target().WarnContext(ctx, "store mutation rejected",
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// PersistLogger logs snapshot persistence operations.
type PersistLogger struct {
	driver string
}

// NewPersistLogger creates a PersistLogger for the given database driver.
func NewPersistLogger(driver string) *PersistLogger {
	return &PersistLogger{driver: driver}
}

// LogSnapshot logs a completed snapshot save or load with per-collection counts.
func (l *PersistLogger) LogSnapshot(ctx context.Context, operation string, counts map[string]int) {
	attrs := []any{
		slog.String("driver", l.driver),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range counts {
		attrs = append(attrs, slog.Int(k, v))
	}
	GlobalLogger.InfoContext(ctx, "snapshot "+operation, attrs...)
}

// LogError logs a persistence error.
func (l *PersistLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "snapshot error",
		slog.String("driver", l.driver),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

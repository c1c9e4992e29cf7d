package vecid

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/vecid/payload"
)

// Logger wraps slog.Logger with vecid-specific operation helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithTier adds a tier field to the logger.
func (l *Logger) WithTier(t payload.Tier) *Logger {
	return &Logger{
		Logger: l.Logger.With("tier", t.String()),
	}
}

// LogEncode logs an encode operation.
func (l *Logger) LogEncode(ctx context.Context, tier payload.Tier, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"tier", tier.String(),
			"size", size,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "encode completed",
		"tier", tier.String(),
		"size", size,
	)
}

// LogDecode logs a deserialize operation.
func (l *Logger) LogDecode(ctx context.Context, format string, n int, err error) {
	if err != nil {
		l.DebugContext(ctx, "decode failed",
			"format", format,
			"bytes", n,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "decode completed",
		"format", format,
		"bytes", n,
	)
}

// LogOptimize logs an optimizer run.
func (l *Logger) LogOptimize(ctx context.Context, trials, best int, mse float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "optimize failed",
			"trials", trials,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "optimize completed",
		"trials", trials,
		"best_trial", best,
		"mse", mse,
	)
}

// LogVerify logs an envelope verification. Failures are logged at warn level.
func (l *Logger) LogVerify(ctx context.Context, keyID string, err error) {
	if err != nil {
		l.WarnContext(ctx, "envelope verification failed",
			"key_id", keyID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "envelope verified",
		"key_id", keyID,
	)
}

// LogBatch logs a batch encode operation.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch encode completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
		return
	}
	l.InfoContext(ctx, "batch encode completed",
		"count", count,
	)
}

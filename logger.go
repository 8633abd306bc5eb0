package bayespart

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bayespart-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithSubspace adds a subspace field to the logger.
func (l *Logger) WithSubspace(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("subspace", id),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogPhase logs a phase transition.
func (l *Logger) LogPhase(ctx context.Context, phase Phase) {
	l.DebugContext(ctx, "phase entered",
		"phase", phase.String(),
	)
}

// LogExploration logs the exploration pass.
func (l *Logger) LogExploration(ctx context.Context, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "exploration failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "exploration completed",
			"samples", samples,
		)
	}
}

// LogPartition logs the partitioning step.
func (l *Logger) LogPartition(ctx context.Context, requested, leaves int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partitioning failed",
			"requested", requested,
			"error", err,
		)
		return
	}
	if leaves < requested {
		l.WarnContext(ctx, "partitioning stopped early",
			"requested", requested,
			"leaves", leaves,
		)
		return
	}
	l.InfoContext(ctx, "partitioning completed",
		"leaves", leaves,
	)
}

// LogSubspace logs a finished subspace task.
func (l *Logger) LogSubspace(ctx context.Context, id, workerID, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "subspace failed",
			"subspace", id,
			"worker", workerID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "subspace completed",
			"subspace", id,
			"worker", workerID,
			"samples", samples,
		)
	}
}

// LogRun logs the outcome of a run.
func (l *Logger) LogRun(ctx context.Context, subspaces, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"subspaces", subspaces,
			"samples", samples,
		)
	}
}

// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ ports.Logger = (*Logger)(nil)

// New creates a new Logger writing to stderr.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a new Logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		logger: slog.New(NewHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	handler := NewHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error message.
// zerr metadata attached to the error is rendered as attributes.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error(err.Error(), metadataAttrs(err)...)
}

func metadataAttrs(err error) []any {
	meta := domain.ErrorMetadata(err)
	if len(meta) == 0 {
		return nil
	}
	attrs := make([]any, 0, len(meta))
	for k, v := range meta {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

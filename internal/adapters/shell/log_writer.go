package shell

import (
	"bytes"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/ports"
)

const (
	levelInfo = "info"
	levelWarn = "warn"
)

// logWriter forwards complete lines of process output to a logger.
type logWriter struct {
	logger ports.Logger
	level  string

	mu  sync.Mutex
	buf []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}

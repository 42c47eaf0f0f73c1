// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry by recording one progrock vertex per step visit.
type Recorder struct {
	w      progrock.Writer
	rec    *progrock.Recorder
	logger ports.Logger
	seq    atomic.Uint64
}

// New creates a Recorder writing to a Summary that is logged on Close.
func New(logger ports.Logger) *Recorder {
	return NewRecorder(NewSummary(), logger)
}

// NewRecorder creates a Recorder with the given writer. logger may be nil.
func NewRecorder(w progrock.Writer, logger ports.Logger) *Recorder {
	return &Recorder{
		w:      w,
		rec:    progrock.NewRecorder(w),
		logger: logger,
	}
}

// Record starts a vertex for the step named name.
// Every call yields a distinct vertex, so repeated builds of a step are recorded separately.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(strconv.FormatUint(r.seq.Add(1), 10) + "/" + name)
	vertex := &Vertex{vertex: r.rec.Vertex(d, name)}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close completes the root group and closes the writer. A Summary writer is reported to the logger.
func (r *Recorder) Close() error {
	r.rec.Complete()
	if err := r.rec.Close(); err != nil {
		return err
	}
	if s, ok := r.w.(*Summary); ok && r.logger != nil {
		if counts := s.Counts(); counts.Total() > 0 {
			r.logger.Info(counts.String())
		}
	}
	return nil
}

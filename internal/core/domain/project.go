package domain

import (
	"errors"
	"strings"

	"go.trai.ch/zerr"
)

// Scheduling selects how the job pool bounds concurrency.
type Scheduling string

const (
	// SchedulingBatch waits for the whole batch of jobs whenever the pool is full.
	SchedulingBatch Scheduling = "batch"
	// SchedulingWindow keeps at most cores jobs running and starts a new one as soon as any finishes.
	SchedulingWindow Scheduling = "window"
)

// ParseScheduling converts a configuration string to a Scheduling mode. The empty string is batch.
func ParseScheduling(s string) (Scheduling, error) {
	switch Scheduling(strings.ToLower(s)) {
	case "", SchedulingBatch:
		return SchedulingBatch, nil
	case SchedulingWindow:
		return SchedulingWindow, nil
	default:
		return SchedulingBatch, errors.Join(ErrInvalidScheduling, zerr.With(zerr.New("unsupported scheduling mode"), "scheduling", s))
	}
}

// Bootstrap describes how the build program rebuilds itself from source.
type Bootstrap struct {
	Source     string
	Executable string
	// Command is the compile command; "{exe}" and "{src}" are substituted.
	Command []string
}

// Enabled reports whether a self rebuild is configured.
func (b Bootstrap) Enabled() bool {
	return b.Source != ""
}

// Project is a loaded build description.
type Project struct {
	// Cores is the concurrency ceiling; zero means one per CPU.
	Cores      int
	Scheduling Scheduling
	Toolchain  Toolchain
	Bootstrap  Bootstrap
	Targets    []*Step
}

// Target returns the top-level step named name.
func (p *Project) Target(name string) (*Step, error) {
	for _, t := range p.Targets {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, errors.Join(ErrUnknownTarget, zerr.With(zerr.New("target not declared"), "target", name))
}

// Select returns the named top-level steps in the given order, or every target when names is empty.
func (p *Project) Select(names []string) ([]*Step, error) {
	if len(names) == 0 {
		return p.Targets, nil
	}
	steps := make([]*Step, 0, len(names))
	for _, name := range names {
		t, err := p.Target(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	return steps, nil
}

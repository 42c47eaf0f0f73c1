// Package builder drives the traversal of step trees.
package builder

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.trai.ch/zerr"
)

// Options configures a Build.
type Options struct {
	// Cores bounds the number of concurrent jobs. Values below one mean one.
	Cores      int
	Scheduling domain.Scheduling
	Toolchain  domain.Toolchain
	// Force treats every non-file step as stale.
	Force bool
}

// Build owns a list of top-level steps and the pool their jobs run in.
type Build struct {
	oracle    ports.StalenessOracle
	remover   ports.ArtifactRemover
	logger    ports.Logger
	telemetry ports.Telemetry
	pool      *pool.Pool
	toolchain domain.Toolchain
	force     bool

	steps       []*domain.Step
	definitions map[domain.StepID]uint64

	// visited marks steps already handled in the current traversal.
	visited map[domain.StepID]bool

	mu     sync.RWMutex
	status map[domain.StepID]domain.StepStatus
}

// New creates an empty Build. telemetry may be nil.
func New(
	spawner ports.Spawner,
	oracle ports.StalenessOracle,
	remover ports.ArtifactRemover,
	logger ports.Logger,
	telemetry ports.Telemetry,
	opts Options,
) *Build {
	toolchain := opts.Toolchain
	if toolchain.CC == "" {
		toolchain.CC = domain.DefaultToolchain().CC
	}
	if toolchain.AR == "" {
		toolchain.AR = domain.DefaultToolchain().AR
	}

	return &Build{
		oracle:      oracle,
		remover:     remover,
		logger:      logger,
		telemetry:   telemetry,
		pool:        pool.New(spawner, opts.Cores, opts.Scheduling),
		toolchain:   toolchain,
		force:       opts.Force,
		definitions: make(map[domain.StepID]uint64),
		visited:     make(map[domain.StepID]bool),
		status:      make(map[domain.StepID]domain.StepStatus),
	}
}

// Install appends a top-level step.
// A step name that is already known with a different definition is rejected.
func (b *Build) Install(step *domain.Step) error {
	seen := make(map[domain.StepID]uint64)
	for s := range step.Walk() {
		if s.Name == "" {
			return domain.ErrEmptyStepName
		}
		id, fp := s.ID(), s.Fingerprint()
		if known, ok := b.definitions[id]; ok && known != fp {
			return nameConflict(s.Name)
		}
		if known, ok := seen[id]; ok && known != fp {
			return nameConflict(s.Name)
		}
		seen[id] = fp
	}

	for id, fp := range seen {
		b.definitions[id] = fp
	}
	b.steps = append(b.steps, step)
	return nil
}

func nameConflict(name string) error {
	return errors.Join(domain.ErrStepNameConflict, zerr.With(zerr.New("conflicting definition"), "step", name))
}

// Steps returns the installed top-level steps.
func (b *Build) Steps() []*domain.Step {
	return b.steps
}

// Status returns the outcome of the most recent visit of the step named name.
func (b *Build) Status(name string) domain.StepStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s, ok := b.status[domain.NameID(name)]; ok {
		return s
	}
	return domain.StepStatusPending
}

func (b *Build) setStatus(s *domain.Step, status domain.StepStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[s.ID()] = status
}

// Build builds every installed step in order and waits for the jobs it dispatched.
//
// On the first failing step Build returns without draining the pool. Jobs already
// dispatched keep running until Free, Clean or the next Build reaps them.
func (b *Build) Build(ctx context.Context) error {
	if err := b.reset(ctx); err != nil {
		b.logger.Error(zerr.Wrap(err, "job from a previous build failed"))
	}

	for _, s := range b.steps {
		if err := b.buildStep(ctx, s); err != nil {
			return errors.Join(domain.ErrBuildFailed, err)
		}
	}

	err := b.pool.WaitAll(ctx)
	b.settle(ctx)
	if err != nil {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	return nil
}

func (b *Build) reset(ctx context.Context) error {
	err := b.pool.Reset(ctx)
	clear(b.visited)

	b.mu.Lock()
	clear(b.status)
	b.mu.Unlock()

	return err
}

func (b *Build) buildStep(ctx context.Context, s *domain.Step) error {
	if s.IsFile() {
		return nil
	}

	id := s.ID()
	if b.visited[id] {
		return nil
	}
	b.visited[id] = true

	if err := b.pool.Barrier(ctx); err != nil {
		b.setStatus(s, domain.StepStatusFailed)
		return err
	}

	children := s.Children()
	ids := make([]domain.StepID, 0, len(children))
	for _, child := range children {
		if err := b.buildStep(ctx, child); err != nil {
			b.setStatus(s, domain.StepStatusFailed)
			return err
		}
		ids = append(ids, child.ID())
	}

	// The staleness check and the command must observe finished child outputs.
	if err := b.pool.Join(ctx, ids...); err != nil {
		b.setStatus(s, domain.StepStatusFailed)
		return err
	}

	stale, err := b.NeedsRebuild(s)
	if err != nil {
		b.setStatus(s, domain.StepStatusFailed)
		return errors.Join(zerr.With(zerr.New("failed to check step"), "step", s.Name), err)
	}

	if !stale {
		b.logger.Info("no need to build " + s.Name)
		b.setStatus(s, domain.StepStatusUpToDate)
		if b.telemetry != nil {
			_, vertex := b.telemetry.Record(ctx, s.Name)
			vertex.Cached()
		}
		return nil
	}

	cmd := s.Command(b.toolchain)
	b.logger.Info("building " + s.Name + ": " + cmd.String())

	var vertex ports.Vertex
	if b.telemetry != nil {
		_, vertex = b.telemetry.Record(ctx, s.Name)
	}

	if err := b.pool.Dispatch(ctx, id, cmd, vertex); err != nil {
		if vertex != nil {
			vertex.Complete(err)
		}
		b.setStatus(s, domain.StepStatusFailed)
		return errors.Join(zerr.With(zerr.New("failed to dispatch step"), "step", s.Name), err)
	}

	b.setStatus(s, domain.StepStatusDispatched)
	return nil
}

// settle resolves the status of dispatched steps from their recorded job results.
func (b *Build) settle(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, status := range b.status {
		if status != domain.StepStatusDispatched {
			continue
		}
		if err := b.pool.Join(ctx, id); err != nil {
			b.status[id] = domain.StepStatusFailed
		} else {
			b.status[id] = domain.StepStatusBuilt
		}
	}
}

// NeedsRebuild reports whether s or any step below it is stale.
// File steps are never stale.
func (b *Build) NeedsRebuild(s *domain.Step) (bool, error) {
	if s.IsFile() {
		return false, nil
	}
	stale, err := b.oracle.NeedsRebuild(s.Name, s.InputNames()...)
	if err != nil {
		return false, err
	}
	// Forced steps still go through the oracle so a vanished input is reported.
	if stale || b.force {
		return true, nil
	}

	for _, child := range s.Children() {
		stale, err := b.NeedsRebuild(child)
		if err != nil || stale {
			return stale, err
		}
	}
	return false, nil
}

// Clean drains outstanding jobs and removes the output of every non-file step.
// It stops at the first removal failure.
func (b *Build) Clean(ctx context.Context) error {
	// Failures of outstanding jobs were reported by the build that dispatched them.
	_ = b.pool.WaitAll(ctx)
	if err := ctx.Err(); err != nil {
		return errors.Join(domain.ErrCleanFailed, err)
	}

	for _, top := range b.steps {
		for s := range top.Walk() {
			if s.IsFile() {
				continue
			}
			removed, err := b.remover.Remove(s.Name)
			if err != nil {
				return errors.Join(domain.ErrCleanFailed, err)
			}
			if removed {
				b.logger.Info("removed " + s.Name)
			} else {
				b.logger.Info("no need to remove " + s.Name)
			}
		}
	}
	return nil
}

// Free waits for every outstanding job and releases the installed steps.
func (b *Build) Free(ctx context.Context) error {
	err := b.pool.Reset(ctx)

	b.steps = nil
	clear(b.definitions)
	clear(b.visited)

	b.mu.Lock()
	clear(b.status)
	b.mu.Unlock()

	return err
}

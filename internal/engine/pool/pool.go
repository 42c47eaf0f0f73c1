// Package pool tracks in-flight build jobs and bounds their concurrency.
package pool

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"golang.org/x/sync/semaphore"
)

// Pool holds the jobs dispatched for build steps.
//
// In batch mode the caller drains the pool through Barrier once it holds cores jobs.
// In window mode Dispatch blocks until fewer than cores jobs are running.
type Pool struct {
	spawner ports.Spawner
	cores   int
	mode    domain.Scheduling
	sem     *semaphore.Weighted

	mu      sync.Mutex
	live    []*entry
	results map[domain.StepID]*entry
}

type entry struct {
	id     domain.StepID
	job    ports.Job
	vertex ports.Vertex
	done   chan struct{}
	err    error
}

// New creates a Pool. A cores value below one is treated as one and any mode other
// than window means batch.
func New(spawner ports.Spawner, cores int, mode domain.Scheduling) *Pool {
	if cores < 1 {
		cores = 1
	}
	if mode != domain.SchedulingWindow {
		mode = domain.SchedulingBatch
	}
	p := &Pool{
		spawner: spawner,
		cores:   cores,
		mode:    mode,
		results: make(map[domain.StepID]*entry),
	}
	if mode == domain.SchedulingWindow {
		p.sem = semaphore.NewWeighted(int64(cores))
	}
	return p
}

// Cores returns the concurrency ceiling.
func (p *Pool) Cores() int {
	return p.cores
}

// Len returns the number of jobs dispatched since the last drain.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Barrier drains the pool when it is full. It only has an effect in batch mode.
func (p *Pool) Barrier(ctx context.Context) error {
	if p.mode != domain.SchedulingBatch || p.Len() < p.cores {
		return nil
	}
	return p.WaitAll(ctx)
}

// Dispatch spawns cmd for the step id without waiting for it.
// vertex, when non-nil, receives the job's output and is completed when the job exits.
func (p *Pool) Dispatch(ctx context.Context, id domain.StepID, cmd domain.Command, vertex ports.Vertex) error {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	var opts ports.SpawnOptions
	if vertex != nil {
		opts.Stdout = vertex.Stdout()
		opts.Stderr = vertex.Stderr()
	}

	job, err := p.spawner.Spawn(ctx, cmd, opts)
	if err != nil {
		if p.sem != nil {
			p.sem.Release(1)
		}
		return err
	}

	e := &entry{
		id:     id,
		job:    job,
		vertex: vertex,
		done:   make(chan struct{}),
	}

	p.mu.Lock()
	p.live = append(p.live, e)
	p.results[id] = e
	p.mu.Unlock()

	go p.reap(e)
	return nil
}

func (p *Pool) reap(e *entry) {
	e.err = e.job.Wait()
	if e.vertex != nil {
		e.vertex.Complete(e.err)
	}
	if p.sem != nil {
		p.sem.Release(1)
	}
	close(e.done)
}

// Join waits for the jobs dispatched for ids and returns their combined failures.
// Steps without a job, such as up-to-date steps, contribute nothing.
func (p *Pool) Join(ctx context.Context, ids ...domain.StepID) error {
	entries := make([]*entry, 0, len(ids))
	p.mu.Lock()
	for _, id := range ids {
		if e, ok := p.results[id]; ok {
			entries = append(entries, e)
		}
	}
	p.mu.Unlock()

	return wait(ctx, entries)
}

// WaitAll waits for every job dispatched since the last drain, in dispatch order.
// The pool is emptied whatever the outcome.
func (p *Pool) WaitAll(ctx context.Context) error {
	p.mu.Lock()
	entries := p.live
	p.live = nil
	p.mu.Unlock()

	return wait(ctx, entries)
}

// Reset forgets the results recorded for previous jobs. Jobs still running are drained first.
func (p *Pool) Reset(ctx context.Context) error {
	err := p.WaitAll(ctx)

	p.mu.Lock()
	clear(p.results)
	p.mu.Unlock()

	return err
}

func wait(ctx context.Context, entries []*entry) error {
	var errs []error
	for _, e := range entries {
		select {
		case <-e.done:
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		}
		if e.err != nil {
			errs = append(errs, e.err)
		}
	}
	return errors.Join(errs...)
}

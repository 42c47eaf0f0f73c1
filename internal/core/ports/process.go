package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Redirect selects which standard streams of a spawned process are connected to pipes.
type Redirect uint8

const (
	// RedirectNone leaves the standard streams to the spawner.
	RedirectNone Redirect = 0
	// RedirectStdin connects the child's stdin to Job.Stdin.
	RedirectStdin Redirect = 1 << 0
	// RedirectOutput connects the child's stdout and stderr to Job.Output.
	RedirectOutput Redirect = 1 << 1
)

// Has reports whether r includes flag.
func (r Redirect) Has(flag Redirect) bool {
	return r&flag != 0
}

// SpawnOptions configures a spawned process.
type SpawnOptions struct {
	Redirect Redirect
	// Stdout and Stderr receive a copy of the output streams that are not redirected.
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner starts external commands without waiting for them.
//
//go:generate go run go.uber.org/mock/mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type Spawner interface {
	// Spawn starts cmd and returns as soon as the process is running.
	// Pipe, fork or exec failures are reported as domain.ErrSpawn.
	Spawn(ctx context.Context, cmd domain.Command, opts SpawnOptions) (Job, error)
}

// Job is one spawned process with an awaitable exit outcome.
type Job interface {
	// Command returns the argument vector the job was started with.
	Command() domain.Command
	// Pid returns the OS process id.
	Pid() int
	// Stdin is the write end of the child's stdin, or nil when not redirected.
	Stdin() io.WriteCloser
	// Output is the read end of the child's combined stdout and stderr, or nil when not redirected.
	Output() io.ReadCloser
	// Wait blocks until the process terminates.
	// It returns domain.ErrProcessFailed for a non-zero exit, domain.ErrProcessSignaled for
	// a signal and domain.ErrWait when the wait itself fails.
	Wait() error
}

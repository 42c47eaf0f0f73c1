package builder_test

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// fakeSpawner pretends to run compilers: waiting a job writes its output file
// with the current clock of the spawner.
type fakeSpawner struct {
	t *testing.T

	mu       sync.Mutex
	clock    time.Time
	commands []domain.Command
	failures map[string]error
}

func newFakeSpawner(t *testing.T, clock time.Time) *fakeSpawner {
	return &fakeSpawner{t: t, clock: clock, failures: make(map[string]error)}
}

func (f *fakeSpawner) Spawn(_ context.Context, cmd domain.Command, _ ports.SpawnOptions) (ports.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return &fakeJob{spawner: f, cmd: cmd, output: outputOf(cmd), mtime: f.clock}, nil
}

func (f *fakeSpawner) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(d)
}

func (f *fakeSpawner) spawned() []domain.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Command(nil), f.commands...)
}

func (f *fakeSpawner) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
}

type fakeJob struct {
	spawner *fakeSpawner
	cmd     domain.Command
	output  string
	mtime   time.Time
}

func (j *fakeJob) Command() domain.Command { return j.cmd }
func (j *fakeJob) Pid() int                { return 1 }
func (j *fakeJob) Stdin() io.WriteCloser   { return nil }
func (j *fakeJob) Output() io.ReadCloser   { return nil }

func (j *fakeJob) Wait() error {
	j.spawner.mu.Lock()
	err := j.spawner.failures[j.output]
	j.spawner.mu.Unlock()
	if err != nil {
		return err
	}
	touch(j.spawner.t, j.output, j.mtime)
	return nil
}

// outputOf returns the file a synthesized command writes.
func outputOf(cmd domain.Command) string {
	for i, arg := range cmd {
		if arg == "-o" && i+1 < len(cmd) {
			return cmd[i+1]
		}
	}
	if len(cmd) > 2 && cmd[1] == "rcs" {
		return cmd[2]
	}
	return ""
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

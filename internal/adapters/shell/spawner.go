// Package shell provides the process spawning adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Spawner = (*Spawner)(nil)

// Spawner implements ports.Spawner using os/exec.
type Spawner struct {
	logger ports.Logger
}

// NewSpawner creates a new Spawner. Output of processes whose streams are not
// redirected is forwarded to logger line by line.
func NewSpawner(logger ports.Logger) *Spawner {
	return &Spawner{logger: logger}
}

// Spawn starts command and returns without waiting for it.
// Requested pipes are created before the process is started.
func (s *Spawner) Spawn(ctx context.Context, command domain.Command, opts ports.SpawnOptions) (ports.Job, error) {
	if len(command) == 0 {
		return nil, errors.Join(domain.ErrSpawn, zerr.New("empty command"))
	}

	cmd := exec.CommandContext(ctx, command.Program(), command.Args()...) //nolint:gosec // user provided command
	j := &job{
		ctx:     ctx,
		cmd:     cmd,
		command: slices.Clone(command),
	}

	if opts.Redirect.Has(ports.RedirectStdin) {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, spawnError(err, command, "failed to create stdin pipe")
		}
		j.stdin = stdin
	}

	var outputWriter *os.File
	if opts.Redirect.Has(ports.RedirectOutput) {
		r, w, err := os.Pipe()
		if err != nil {
			j.closePipes()
			return nil, spawnError(err, command, "failed to create output pipe")
		}
		cmd.Stdout = w
		cmd.Stderr = w
		j.output = r
		outputWriter = w
	} else {
		j.stdoutLog = &logWriter{logger: s.logger, level: levelInfo}
		j.stderrLog = &logWriter{logger: s.logger, level: levelWarn}
		cmd.Stdout = fanOut(j.stdoutLog, opts.Stdout)
		cmd.Stderr = fanOut(j.stderrLog, opts.Stderr)
	}

	if err := cmd.Start(); err != nil {
		if outputWriter != nil {
			_ = outputWriter.Close()
		}
		j.closePipes()
		return nil, spawnError(err, command, "failed to start process")
	}

	// The child holds its own copy of the write end.
	if outputWriter != nil {
		_ = outputWriter.Close()
	}

	return j, nil
}

func fanOut(primary io.Writer, extra io.Writer) io.Writer {
	if extra == nil {
		return primary
	}
	return io.MultiWriter(primary, extra)
}

func spawnError(err error, command domain.Command, msg string) error {
	return errors.Join(domain.ErrSpawn, zerr.With(zerr.Wrap(err, msg), "command", command.String()))
}

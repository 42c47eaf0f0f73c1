// Package bootstrap rebuilds the running build program when its source changes.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// OldSuffix is appended to the previous executable while it is being replaced.
const OldSuffix = ".old"

// DefaultCommand compiles the build program with the Go toolchain.
var DefaultCommand = []string{"go", "build", "-o", "{exe}", "{src}"}

// Options describes one self rebuild.
type Options struct {
	Source     string
	Executable string
	// Args is the argument vector to re-execute with, program name included.
	Args []string
	// Command is the compile command. "{exe}" and "{src}" are substituted.
	Command []string
}

// execFunc replaces the current process image.
type execFunc func(path string, argv []string, env []string) error

// Bootstrapper recompiles and re-executes the build program.
type Bootstrapper struct {
	spawner ports.Spawner
	oracle  ports.StalenessOracle
	logger  ports.Logger
	exec    execFunc
}

// New creates a Bootstrapper.
func New(spawner ports.Spawner, oracle ports.StalenessOracle, logger ports.Logger) *Bootstrapper {
	return &Bootstrapper{
		spawner: spawner,
		oracle:  oracle,
		logger:  logger,
		exec:    reexec,
	}
}

// Rebuild recompiles the executable when the source is newer and re-executes it.
// It returns nil without side effects when the executable is up to date. On success
// it does not return unless the platform cannot replace the running process.
// On failure the previous executable is restored.
func (b *Bootstrapper) Rebuild(ctx context.Context, opts Options) error {
	stale, err := b.oracle.NeedsRebuild(opts.Executable, opts.Source)
	if err != nil {
		return errors.Join(domain.ErrBootstrapFailed, err)
	}
	if !stale {
		return nil
	}

	old := opts.Executable + OldSuffix
	if err := os.Rename(opts.Executable, old); err != nil && !os.IsNotExist(err) {
		return failure(err, "failed to move executable aside", opts.Executable)
	}

	cmd := Expand(opts.Command, opts.Executable, opts.Source)
	b.logger.Info("rebuilding " + opts.Executable + ": " + cmd.String())

	if err := b.compile(ctx, cmd); err != nil {
		b.restore(old, opts.Executable)
		return errors.Join(domain.ErrBootstrapFailed, err)
	}

	if err := b.exec(opts.Executable, opts.Args, os.Environ()); err != nil {
		b.restore(old, opts.Executable)
		return failure(err, "failed to re-execute", opts.Executable)
	}
	return nil
}

func (b *Bootstrapper) compile(ctx context.Context, cmd domain.Command) error {
	job, err := b.spawner.Spawn(ctx, cmd, ports.SpawnOptions{})
	if err != nil {
		return err
	}
	return job.Wait()
}

func (b *Bootstrapper) restore(old, exe string) {
	if _, err := os.Stat(old); err != nil {
		return
	}
	if err := os.Rename(old, exe); err != nil {
		b.logger.Error(zerr.With(zerr.Wrap(err, "failed to restore executable"), "path", exe))
	}
}

// Expand substitutes the executable and source paths into a compile command template.
// An empty template expands DefaultCommand.
func Expand(template []string, exe, src string) domain.Command {
	if len(template) == 0 {
		template = DefaultCommand
	}
	r := strings.NewReplacer("{exe}", exe, "{src}", src)
	cmd := make(domain.Command, len(template))
	for i, arg := range template {
		cmd[i] = r.Replace(arg)
	}
	return cmd
}

func failure(err error, msg, path string) error {
	return errors.Join(domain.ErrBootstrapFailed, zerr.With(zerr.Wrap(err, msg), "path", path))
}

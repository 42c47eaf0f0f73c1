// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"os"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/bootstrap"
	"go.trai.ch/kiln/internal/engine/builder"
	"go.trai.ch/zerr"
)

// DefaultConfigPath is the configuration read when none is given.
const DefaultConfigPath = "kiln.yaml"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	spawner      ports.Spawner
	oracle       ports.StalenessOracle
	remover      ports.ArtifactRemover
	logger       ports.Logger
	telemetry    ports.Telemetry
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	spawner ports.Spawner,
	oracle ports.StalenessOracle,
	remover ports.ArtifactRemover,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		spawner:      spawner,
		oracle:       oracle,
		remover:      remover,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// RunOptions configures a build or clean run.
type RunOptions struct {
	// ConfigPath defaults to DefaultConfigPath.
	ConfigPath string
	// Cores overrides the configured concurrency when positive.
	Cores int
	// Force rebuilds every target regardless of timestamps.
	Force bool
}

// Build builds the named targets, or every target when none are named.
func (a *App) Build(ctx context.Context, targets []string, opts RunOptions) error {
	b, err := a.prepare(targets, opts)
	if err != nil {
		return err
	}
	defer a.closeTelemetry()
	defer a.free(b)

	return b.Build(ctx)
}

// Clean removes the build products of the named targets, or of every target when none are named.
func (a *App) Clean(ctx context.Context, targets []string, opts RunOptions) error {
	b, err := a.prepare(targets, opts)
	if err != nil {
		return err
	}
	defer a.free(b)

	return b.Clean(ctx)
}

func (a *App) prepare(targets []string, opts RunOptions) (*builder.Build, error) {
	project, err := a.load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	steps, err := project.Select(targets)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, domain.ErrNoSteps
	}

	b := builder.New(a.spawner, a.oracle, a.remover, a.logger, a.telemetry, builder.Options{
		Cores:      resolveCores(opts.Cores, project.Cores),
		Scheduling: project.Scheduling,
		Toolchain:  project.Toolchain,
		Force:      opts.Force,
	})
	for _, s := range steps {
		if err := b.Install(s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// free reaps jobs left behind by a failed run.
func (a *App) free(b *builder.Build) {
	if err := b.Free(context.Background()); err != nil {
		a.logger.Error(zerr.Wrap(err, "outstanding job failed"))
	}
}

func (a *App) closeTelemetry() {
	if a.telemetry == nil {
		return
	}
	if err := a.telemetry.Close(); err != nil {
		a.logger.Error(zerr.Wrap(err, "failed to close telemetry"))
	}
}

// Bootstrap rebuilds and re-executes the kiln binary when its configured source changed.
// It does nothing when the configuration has no bootstrap section or cannot be read.
func (a *App) Bootstrap(ctx context.Context, configPath string, args []string) error {
	project, err := a.load(configPath)
	if errors.Is(err, domain.ErrConfigRead) {
		return nil
	}
	if err != nil {
		return err
	}
	if !project.Bootstrap.Enabled() {
		return nil
	}

	exe := project.Bootstrap.Executable
	if exe == "" {
		exe, err = os.Executable()
		if err != nil {
			return errors.Join(domain.ErrBootstrapFailed, zerr.Wrap(err, "failed to locate executable"))
		}
	}

	return bootstrap.New(a.spawner, a.oracle, a.logger).Rebuild(ctx, bootstrap.Options{
		Source:     project.Bootstrap.Source,
		Executable: exe,
		Args:       args,
		Command:    project.Bootstrap.Command,
	})
}

func (a *App) load(path string) (*domain.Project, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return a.configLoader.Load(path)
}

func resolveCores(flag, configured int) int {
	switch {
	case flag > 0:
		return flag
	case configured > 0:
		return configured
	default:
		return runtime.NumCPU()
	}
}

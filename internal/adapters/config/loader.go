// Package config provides the configuration loader for kiln.
package config

import (
	"errors"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFilename is the configuration file looked up in the working directory.
	DefaultFilename = "kiln.yaml"

	supportedVersion = "1"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader for kiln.yaml files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration file at path.
func (l *Loader) Load(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, errors.Join(domain.ErrConfigRead, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path))
	}

	var kilnfile Kilnfile
	if err := yaml.Unmarshal(data, &kilnfile); err != nil {
		return nil, errors.Join(domain.ErrConfigParse, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path))
	}

	switch kilnfile.Version {
	case supportedVersion:
	case "":
		l.logger.Warn(path + " does not declare a version, assuming " + supportedVersion)
	default:
		l.logger.Warn(path + " declares unknown version " + kilnfile.Version + ", reading it as " + supportedVersion)
	}

	project, err := kilnfile.toProject()
	if err != nil {
		return nil, errors.Join(domain.ErrConfigParse, zerr.With(err, "path", path))
	}
	return project, nil
}

func (k *Kilnfile) toProject() (*domain.Project, error) {
	scheduling, err := domain.ParseScheduling(k.Scheduling)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Cores:      k.Cores,
		Scheduling: scheduling,
		Toolchain:  domain.Toolchain{CC: k.Toolchain.CC, AR: k.Toolchain.AR},
		Targets:    make([]*domain.Step, 0, len(k.Targets)),
	}
	if k.Bootstrap != nil {
		project.Bootstrap = domain.Bootstrap{
			Source:     k.Bootstrap.Source,
			Executable: k.Bootstrap.Executable,
			Command:    k.Bootstrap.Command,
		}
	}

	names := make(map[string]bool, len(k.Targets))
	for i := range k.Targets {
		step, err := k.Targets[i].toStep()
		if err != nil {
			return nil, err
		}
		if names[step.Name] {
			return nil, zerr.With(zerr.New("duplicate target"), "target", step.Name)
		}
		names[step.Name] = true
		project.Targets = append(project.Targets, step)
	}

	return project, nil
}

func (s *StepDTO) toStep() (*domain.Step, error) {
	if s.Name == "" {
		return nil, domain.ErrEmptyStepName
	}

	kind, err := domain.ParseStepKind(s.Kind)
	if err != nil {
		return nil, zerr.With(err, "step", s.Name)
	}
	debug, err := domain.ParseDebugLevel(s.Debug)
	if err != nil {
		return nil, zerr.With(err, "step", s.Name)
	}
	optimize, err := domain.ParseOptimizeLevel(s.Optimize)
	if err != nil {
		return nil, zerr.With(err, "step", s.Name)
	}

	srcs, err := toSteps(s.Srcs)
	if err != nil {
		return nil, err
	}
	deps, err := toSteps(s.Deps)
	if err != nil {
		return nil, err
	}

	return &domain.Step{
		Kind:        kind,
		Name:        s.Name,
		Debug:       debug,
		Optimize:    optimize,
		Srcs:        srcs,
		Deps:        deps,
		LinkerFlags: s.LinkerFlags,
	}, nil
}

func toSteps(dtos []StepDTO) ([]*domain.Step, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	steps := make([]*domain.Step, 0, len(dtos))
	for i := range dtos {
		step, err := dtos[i].toStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

package config

import "gopkg.in/yaml.v3"

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version    string        `yaml:"version"`
	Cores      int           `yaml:"cores"`
	Scheduling string        `yaml:"scheduling"`
	Toolchain  ToolchainDTO  `yaml:"toolchain"`
	Bootstrap  *BootstrapDTO `yaml:"bootstrap"`
	Targets    []StepDTO     `yaml:"targets"`
}

// ToolchainDTO names the compiler and archiver.
type ToolchainDTO struct {
	CC string `yaml:"cc"`
	AR string `yaml:"ar"`
}

// BootstrapDTO configures the self rebuild of the build program.
type BootstrapDTO struct {
	Source     string   `yaml:"source"`
	Executable string   `yaml:"executable"`
	Command    []string `yaml:"command"`
}

// StepDTO represents a step definition in the configuration.
// A plain string is shorthand for a file step of that name.
type StepDTO struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"`
	Debug       string    `yaml:"debug"`
	Optimize    string    `yaml:"optimize"`
	Srcs        []StepDTO `yaml:"srcs"`
	Deps        []StepDTO `yaml:"deps"`
	LinkerFlags []string  `yaml:"linker_flags"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StepDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = StepDTO{Name: node.Value}
		return nil
	}

	// The alias type drops this method so Decode does not recurse.
	type plain StepDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = StepDTO(p)
	return nil
}

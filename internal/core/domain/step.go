// Package domain contains the core domain models of the build graph.
package domain

import (
	"errors"
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// StepKind identifies what a Step produces.
type StepKind int

const (
	// KindFile is a pre-existing artifact with no build action.
	KindFile StepKind = iota
	// KindExecutable is linked by the C compiler driver.
	KindExecutable
	// KindStaticLibrary is archived by ar.
	KindStaticLibrary
	// KindDynamicLibrary is linked as a shared object by the C compiler driver.
	KindDynamicLibrary
)

var stepKindNames = map[StepKind]string{
	KindFile:           "file",
	KindExecutable:     "executable",
	KindStaticLibrary:  "static_library",
	KindDynamicLibrary: "dynamic_library",
}

// String returns the configuration name of the kind.
func (k StepKind) String() string {
	if name, ok := stepKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseStepKind converts a configuration string to a StepKind.
// The empty string is a File.
func ParseStepKind(s string) (StepKind, error) {
	if s == "" {
		return KindFile, nil
	}
	for kind, name := range stepKindNames {
		if strings.EqualFold(s, name) {
			return kind, nil
		}
	}
	return KindFile, errors.Join(ErrInvalidStepKind, zerr.With(zerr.New("unsupported step kind"), "kind", s))
}

// DebugLevel selects the debug information flag passed to the compiler.
type DebugLevel int

const (
	// DebugNone passes no debug flag.
	DebugNone DebugLevel = iota
	// DebugAuto passes -g.
	DebugAuto
	// DebugGDB passes -ggdb.
	DebugGDB
)

// Flag returns the compiler flag for the level, or "" when none applies.
func (d DebugLevel) Flag() string {
	switch d {
	case DebugAuto:
		return "-g"
	case DebugGDB:
		return "-ggdb"
	default:
		return ""
	}
}

// ParseDebugLevel converts a configuration string to a DebugLevel.
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return DebugNone, nil
	case "auto", "g":
		return DebugAuto, nil
	case "gdb", "ggdb":
		return DebugGDB, nil
	default:
		return DebugNone, errors.Join(ErrInvalidDebugLevel, zerr.With(zerr.New("unsupported debug level"), "debug", s))
	}
}

// OptimizeLevel selects the optimization flag passed to the compiler.
type OptimizeLevel int

const (
	// OptimizeNone passes no optimization flag.
	OptimizeNone OptimizeLevel = iota
	OptimizeO1
	OptimizeO2
	OptimizeO3
	OptimizeFast
	OptimizeSize
	OptimizeSizeAggressive
)

var optimizeFlags = map[OptimizeLevel]string{
	OptimizeO1:             "-O1",
	OptimizeO2:             "-O2",
	OptimizeO3:             "-O3",
	OptimizeFast:           "-Ofast",
	OptimizeSize:           "-Os",
	OptimizeSizeAggressive: "-Oz",
}

// Flag returns the compiler flag for the level, or "" when none applies.
func (o OptimizeLevel) Flag() string {
	return optimizeFlags[o]
}

// ParseOptimizeLevel converts a configuration string such as "O2" or "-Os" to an OptimizeLevel.
func ParseOptimizeLevel(s string) (OptimizeLevel, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return OptimizeNone, nil
	}
	flag := "-" + strings.TrimPrefix(s, "-")
	for level, f := range optimizeFlags {
		if f == flag {
			return level, nil
		}
	}
	return OptimizeNone, errors.Join(ErrInvalidOptimizeLevel, zerr.With(zerr.New("unsupported optimize level"), "optimize", s))
}

// Step is one node of the build tree: a named target plus the children it is built from.
//
// Srcs are passed to the compiler as inputs, Deps only take part in the staleness decision.
// A Step exclusively owns its children.
type Step struct {
	Kind        StepKind
	Name        string
	Debug       DebugLevel
	Optimize    OptimizeLevel
	Srcs        []*Step
	Deps        []*Step
	LinkerFlags []string
}

// NewFile creates a leaf Step for an existing artifact.
func NewFile(name string) *Step {
	return &Step{Kind: KindFile, Name: name}
}

// NewExecutable creates an executable Step.
func NewExecutable(name string) *Step {
	return &Step{Kind: KindExecutable, Name: name}
}

// NewStaticLibrary creates a static library Step.
func NewStaticLibrary(name string) *Step {
	return &Step{Kind: KindStaticLibrary, Name: name}
}

// NewDynamicLibrary creates a dynamic library Step.
func NewDynamicLibrary(name string) *Step {
	return &Step{Kind: KindDynamicLibrary, Name: name}
}

// WithSrcs appends compiler inputs and returns the step.
func (s *Step) WithSrcs(srcs ...*Step) *Step {
	s.Srcs = append(s.Srcs, srcs...)
	return s
}

// WithDeps appends staleness-only dependencies and returns the step.
func (s *Step) WithDeps(deps ...*Step) *Step {
	s.Deps = append(s.Deps, deps...)
	return s
}

// WithLinkerFlags appends linker flags and returns the step.
func (s *Step) WithLinkerFlags(flags ...string) *Step {
	s.LinkerFlags = append(s.LinkerFlags, flags...)
	return s
}

// IsFile reports whether the step is a pure leaf without a build action.
func (s *Step) IsFile() bool {
	return s.Kind == KindFile
}

// Children returns srcs followed by deps, in declaration order.
// File steps have no children.
func (s *Step) Children() []*Step {
	if s.IsFile() {
		return nil
	}
	children := make([]*Step, 0, len(s.Srcs)+len(s.Deps))
	children = append(children, s.Srcs...)
	return append(children, s.Deps...)
}

// InputNames returns the names of srcs and deps, the files the step's staleness is compared against.
func (s *Step) InputNames() []string {
	children := s.Children()
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name
	}
	return names
}

// Walk yields the step and every step below it in post-order.
func (s *Step) Walk() iter.Seq[*Step] {
	return func(yield func(*Step) bool) {
		s.walk(yield)
	}
}

func (s *Step) walk(yield func(*Step) bool) bool {
	for _, child := range s.Children() {
		if !child.walk(yield) {
			return false
		}
	}
	return yield(s)
}

// Toolchain names the programs used to build steps.
type Toolchain struct {
	CC string
	AR string
}

// DefaultToolchain returns the cc/ar toolchain.
func DefaultToolchain() Toolchain {
	return Toolchain{CC: "cc", AR: "ar"}
}

// Command synthesizes the command line that builds the step. File steps return nil.
func (s *Step) Command(tc Toolchain) Command {
	switch s.Kind {
	case KindExecutable:
		cmd := s.compilerPrefix(tc)
		cmd = append(cmd, "-o", s.Name)
		cmd = append(cmd, s.srcNames()...)
		return append(cmd, s.linkerArgs()...)
	case KindDynamicLibrary:
		cmd := s.compilerPrefix(tc)
		cmd = append(cmd, "-shared", "-fPIC", "-o", s.Name)
		cmd = append(cmd, s.srcNames()...)
		return append(cmd, s.linkerArgs()...)
	case KindStaticLibrary:
		// Archiving does not link, linker flags are dropped.
		cmd := Command{tc.AR, "rcs", s.Name}
		return append(cmd, s.srcNames()...)
	default:
		return nil
	}
}

func (s *Step) compilerPrefix(tc Toolchain) Command {
	cmd := Command{tc.CC}
	if f := s.Debug.Flag(); f != "" {
		cmd = append(cmd, f)
	}
	if f := s.Optimize.Flag(); f != "" {
		cmd = append(cmd, f)
	}
	return cmd
}

func (s *Step) srcNames() []string {
	names := make([]string, len(s.Srcs))
	for i, src := range s.Srcs {
		names[i] = src.Name
	}
	return names
}

func (s *Step) linkerArgs() []string {
	args := make([]string, len(s.LinkerFlags))
	for i, flag := range s.LinkerFlags {
		args[i] = "-Wl," + flag
	}
	return args
}

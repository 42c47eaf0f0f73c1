package domain

import "go.trai.ch/zerr"

var (
	// ErrStaleCheck is returned when a declared input or output could not be stat'd.
	ErrStaleCheck = zerr.New("staleness check failed")

	// ErrSpawn is returned when a process could not be started (pipe, fork or exec failure).
	ErrSpawn = zerr.New("failed to spawn process")

	// ErrProcessFailed is returned when a process exits with a non-zero status.
	ErrProcessFailed = zerr.New("process exited with non-zero status")

	// ErrProcessSignaled is returned when a process is terminated by a signal.
	ErrProcessSignaled = zerr.New("process terminated by signal")

	// ErrWait is returned when waiting on a process fails for reasons other than its exit status.
	ErrWait = zerr.New("failed to wait for process")

	// ErrRemove is returned when a build product cannot be removed during clean.
	ErrRemove = zerr.New("failed to remove build product")

	// ErrStepNameConflict is returned when two steps share a name but differ in definition.
	ErrStepNameConflict = zerr.New("step name declared twice with different definitions")

	// ErrNoSteps is returned when a build is requested without any installed steps.
	ErrNoSteps = zerr.New("no steps installed")

	// ErrUnknownTarget is returned when a requested target is not declared in the configuration.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrEmptyStepName is returned when a step is declared without a name.
	ErrEmptyStepName = zerr.New("step name is empty")

	// ErrInvalidStepKind is returned when a step kind cannot be parsed.
	ErrInvalidStepKind = zerr.New("invalid step kind, expected file, executable, static_library or dynamic_library")

	// ErrInvalidDebugLevel is returned when a debug level cannot be parsed.
	ErrInvalidDebugLevel = zerr.New("invalid debug level, expected none, auto or gdb")

	// ErrInvalidOptimizeLevel is returned when an optimization level cannot be parsed.
	ErrInvalidOptimizeLevel = zerr.New("invalid optimize level, expected none, O1, O2, O3, Ofast, Os or Oz")

	// ErrInvalidScheduling is returned when the scheduling mode cannot be parsed.
	ErrInvalidScheduling = zerr.New("invalid scheduling mode, expected batch or window")

	// ErrConfigRead is returned when the configuration file cannot be read.
	ErrConfigRead = zerr.New("failed to read config file")

	// ErrConfigParse is returned when the configuration file cannot be parsed.
	ErrConfigParse = zerr.New("failed to parse config file")

	// ErrBootstrapFailed is returned when the build program could not rebuild itself.
	ErrBootstrapFailed = zerr.New("self rebuild failed")

	// ErrBuildFailed is returned when a build run fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrCleanFailed is returned when a clean run fails.
	ErrCleanFailed = zerr.New("clean failed")
)

// metadataer matches zerr.Error, which carries key/value metadata.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorMetadata merges the metadata of every error in err's tree.
// Values closer to the root win over those of wrapped causes.
func ErrorMetadata(err error) map[string]any {
	out := make(map[string]any)
	collectMetadata(err, out)
	return out
}

func collectMetadata(err error, out map[string]any) {
	if err == nil {
		return
	}
	if m, ok := err.(metadataer); ok {
		for k, v := range m.Metadata() {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			collectMetadata(inner, out)
		}
	case interface{ Unwrap() error }:
		collectMetadata(u.Unwrap(), out)
	}
}

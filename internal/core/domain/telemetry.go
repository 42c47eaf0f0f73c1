package domain

// StepStatus is the outcome of the most recent visit of a step.
type StepStatus string

const (
	// StepStatusPending indicates the step has not been visited in this run.
	StepStatusPending StepStatus = "pending"
	// StepStatusDispatched indicates a job was spawned for the step and not yet reaped.
	StepStatusDispatched StepStatus = "dispatched"
	// StepStatusBuilt indicates the step's job finished successfully.
	StepStatusBuilt StepStatus = "built"
	// StepStatusUpToDate indicates no rebuild was needed.
	StepStatusUpToDate StepStatus = "up-to-date"
	// StepStatusFailed indicates the step or its job failed.
	StepStatusFailed StepStatus = "failed"
)

// IsTerminal reports whether the status is final for the current run.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusBuilt, StepStatusUpToDate, StepStatusFailed:
		return true
	default:
		return false
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

package shell

import (
	"errors"
	"io"
	"os/exec"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Job = (*job)(nil)

// job is a started process. Output, when redirected, must be read to EOF before Wait.
type job struct {
	ctx     interface{ Err() error }
	cmd     *exec.Cmd
	command domain.Command

	stdin  io.WriteCloser
	output io.ReadCloser

	stdoutLog *logWriter
	stderrLog *logWriter
}

func (j *job) Command() domain.Command { return j.command }

func (j *job) Pid() int {
	if j.cmd.Process == nil {
		return 0
	}
	return j.cmd.Process.Pid
}

func (j *job) Stdin() io.WriteCloser { return j.stdin }

func (j *job) Output() io.ReadCloser { return j.output }

// Wait blocks until the process exits and interprets its status.
func (j *job) Wait() error {
	err := j.cmd.Wait()
	j.flushLogs()
	if err == nil {
		return nil
	}

	rendered := j.command.String()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return errors.Join(domain.ErrWait, zerr.With(zerr.Wrap(err, "wait failed"), "command", rendered))
	}

	if sig, ok := signalOf(exitErr.ProcessState); ok {
		detail := zerr.With(zerr.With(zerr.New("terminated by "+sig), "signal", sig), "command", rendered)
		if ctxErr := j.ctx.Err(); ctxErr != nil {
			return errors.Join(domain.ErrProcessSignaled, detail, ctxErr)
		}
		return errors.Join(domain.ErrProcessSignaled, detail)
	}

	code := exitErr.ExitCode()
	detail := zerr.With(zerr.With(zerr.New("command failed"), "exit_code", code), "command", rendered)
	return errors.Join(domain.ErrProcessFailed, detail)
}

func (j *job) flushLogs() {
	if j.stdoutLog != nil {
		_ = j.stdoutLog.Close()
	}
	if j.stderrLog != nil {
		_ = j.stderrLog.Close()
	}
}

func (j *job) closePipes() {
	if j.stdin != nil {
		_ = j.stdin.Close()
	}
	if j.output != nil {
		_ = j.output.Close()
	}
}

package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Command describes one child process.
type Command struct {
	Argv []string
	Dir  string
	Env  []string
	// Output receives stdout and stderr as they are produced.
	Output io.Writer
}

// ProcessResult is the outcome of a finished child process.
type ProcessResult struct {
	ExitCode int
	Output   string
}

// ProcessRunner runs child processes.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
}

// ExecRunner runs commands with os/exec. A non-zero exit is reported in the
// result, not as an error; errors mean the process could not run at all.
type ExecRunner struct{}

// Run starts the process and waits for it.
func (ExecRunner) Run(ctx context.Context, cmd Command) (ProcessResult, error) {
	if len(cmd.Argv) == 0 {
		return ProcessResult{}, errors.New("empty command")
	}

	var captured bytes.Buffer
	var out io.Writer = &captured
	if cmd.Output != nil {
		out = io.MultiWriter(&captured, cmd.Output)
	}

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdout = out
	c.Stderr = out

	err := c.Run()
	result := ProcessResult{Output: captured.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running %s: %w", cmd.Argv[0], err)
	}
	return result, nil
}

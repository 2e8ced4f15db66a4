package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrSpawn reports an executable that is missing or could not be started.
var ErrSpawn = errors.New("process spawn failed")

// Command is one external invocation.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return fmt.Sprint(append([]string{c.Path}, c.Args...))
}

// Result is the captured output of a finished process. ExitCode is kept for
// logging only.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a Command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts cmd and waits for it. A non-zero exit is not an error; a failure
// to start is wrapped in ErrSpawn.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrSpawn, c.Path, err)
	}

	err := cmd.Wait()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: cmd.ProcessState.ExitCode()}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return res, fmt.Errorf("waiting for %s: %w", c.Path, err)
	}
	return res, nil
}

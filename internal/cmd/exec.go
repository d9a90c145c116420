package cmd

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/em/internal/log"
)

// Error describes a command that exited unsuccessfully.
type Error struct {
	Name   string
	Args   []string
	Stdout []byte
	Stderr string
	Err    error
}

// Error returns the trimmed stderr of the command, falling back to the
// underlying exit error when the command wrote nothing to stderr.
func (e *Error) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code, or -1 if the command did not run.
func (e *Error) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// RunContext executes a command in dir and discards its stdout.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes a command in dir and returns its stdout.
// On failure the returned error is an *Error carrying stdout and stderr,
// unless the context was cancelled, in which case ctx.Err() is returned.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	defer func() { done(time.Since(start)) }()

	c := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		c.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return stdout.Bytes(), &Error{
			Name:   name,
			Args:   args,
			Stdout: stdout.Bytes(),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// Package compiler runs the external shader compiler as a child process.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvCompiler names the environment variable that overrides the default
// compiler executable.
const EnvCompiler = "DXC"

// DefaultPath returns the compiler executable used when none is configured.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvCompiler)); p != "" {
		return p
	}
	if runtime.GOOS == "windows" {
		return "dxc.exe"
	}
	return "dxc"
}

// Result describes a finished compiler process.
type Result struct {
	// ExitCode is the process exit code. 0 indicates success.
	ExitCode int
}

// Success reports whether the compiler exited with code 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// StartError reports that the compiler process could not be started at all,
// usually because the executable does not exist.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Runner runs one compiler invocation to completion.
type Runner interface {
	Run(ctx context.Context, args []string) (Result, error)
}

// Exec runs the compiler with os/exec.
//
// The child inherits Stdout and Stderr; nothing is captured. Stdin is not
// connected.
type Exec struct {
	// Path is the compiler executable. Resolved through PATH when it has no
	// separator.
	Path string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec that forwards the compiler's output to stdout and
// stderr. Nil writers default to the process's own streams.
func NewExec(path string, stdout, stderr io.Writer) *Exec {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Exec{Path: path, Stdout: stdout, Stderr: stderr}
}

// Run blocks until the compiler exits.
//
// A non-zero exit is reported through Result, not as an error. The error is
// non-nil only when the process could not be run or was killed because ctx
// ended.
func (e *Exec) Run(ctx context.Context, args []string) (Result, error) {
	if e.Path == "" {
		return Result{}, &StartError{Path: e.Path, Err: errors.New("compiler path is empty")}
	}

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Start(); err != nil {
		return Result{}, &StartError{Path: e.Path, Err: err}
	}

	return waitResult(ctx, e.Path, cmd.Wait())
}

// waitResult classifies the error returned by Wait.
//
// A compiler that exited on its own keeps its result even if ctx ended
// meanwhile. Only a process that died from a signal after ctx ended is
// reported as cancelled.
func waitResult(ctx context.Context, path string, err error) (Result, error) {
	if err == nil {
		return Result{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code >= 0 {
			return Result{ExitCode: code}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("compilation cancelled: %w", ctxErr)
		}
		// Terminated by a signal; there is no exit code to forward.
		return Result{ExitCode: 1}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("compilation cancelled: %w", ctxErr)
	}
	return Result{}, fmt.Errorf("failed to execute %s: %w", path, err)
}

// CommandLine renders the executable and its arguments as one space
// separated line, the form echoed to the build log.
func CommandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, path)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shaderweaver/internal/compiler"
	"shaderweaver/internal/invoker"
	"shaderweaver/internal/trace"
)

type CLIResult struct {
	ExitCode int

	// Build is nil when compilation never started.
	Build *invoker.Result

	// TraceHash is the sha256 of the written trace, empty without --trace.
	TraceHash string
}

// NewLogger returns the diagnostics logger used for stderr output.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "shaderweaver: ", 0)
}

// Execute is the default entrypoint for running a parsed invocation.
// Compiler output is forwarded to stdout and stderr.
func Execute(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (CLIResult, error) {
	return ExecuteWithRunner(ctx, inv, compiler.NewExec(inv.Compiler, stdout, stderr), stdout, stderr)
}

// ExecuteWithRunner compiles inv with the given compiler runner.
//
// Responsibilities:
//   - Echo each command line to stdout and diagnostics to stderr.
//   - Write the trace after the run, on failure too.
//   - Translate outcomes to exit codes; a compiler failure exits with the
//     compiler's own code.
func ExecuteWithRunner(ctx context.Context, inv Invocation, runner compiler.Runner, stdout, stderr io.Writer) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if runner == nil {
		return res, fmt.Errorf("nil compiler runner")
	}
	logger := NewLogger(stderr)

	for _, t := range inv.Spec.Targets {
		if !t.Known() {
			logger.Printf("warning: unrecognized stage %q, passing it to the compiler as is", t)
		}
	}

	rec := trace.NewRecorder()
	iv := &invoker.Invoker{
		Compiler: inv.Compiler,
		Runner:   runner,
		Stdout:   stdout,
		Log:      logger,
		Trace:    rec,
		DryRun:   inv.DryRun,
	}

	defer func() {
		if r := recover(); r != nil {
			res.ExitCode = ExitInternalError
			res.Build = nil
			execErr = fmt.Errorf("panic: %v", r)
		}
		if inv.TracePath == "" {
			return
		}
		tr := rec.Trace(trace.BuildTrace{
			Compiler: inv.Compiler,
			Input:    inv.Spec.InputFile,
			Model:    inv.Spec.ShaderModel,
			Debug:    inv.Spec.Debug,
		})
		hash, err := trace.WriteFile(inv.TracePath, tr)
		if err != nil {
			err = fmt.Errorf("writing trace: %w", err)
			if execErr == nil {
				res.ExitCode = ExitConfigError
				execErr = err
				return
			}
			// The build error wins; the trace failure is only reported.
			logger.Print(err)
			return
		}
		res.TraceHash = hash
		logger.Printf("trace written to %s (sha256 %s)", inv.TracePath, hash)
	}()

	build, err := iv.Run(ctx, inv.Spec)
	res.Build = &build
	res.ExitCode = exitCodeFor(err)
	return res, err
}

func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var failed *invoker.CompilationFailedError
	if errors.As(err, &failed) {
		if failed.ExitCode == 0 {
			return ExitCompileFailure
		}
		return failed.ExitCode
	}
	var se *compiler.StartError
	if errors.As(err, &se) {
		return ExitCompilerUnavailable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitInterrupted
	}
	return ExitInternalError
}

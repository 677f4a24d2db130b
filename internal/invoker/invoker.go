// Package invoker compiles every target of a shader.Spec in order, one
// compiler process at a time, and stops at the first failure.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shaderweaver/internal/compiler"
	"shaderweaver/internal/shader"
	"shaderweaver/internal/trace"
)

// Invoker runs the compiler once per target.
type Invoker struct {
	// Compiler is the executable name echoed in front of each command line.
	Compiler string

	// Runner starts the compiler. Usually a *compiler.Exec for the same path.
	Runner compiler.Runner

	// Stdout receives one command line per target before it runs.
	Stdout io.Writer

	// Log receives diagnostics. Nil discards them.
	Log *log.Logger

	// Trace receives one event per target. Nil discards them.
	Trace trace.Sink

	// DryRun echoes every command line without running anything.
	DryRun bool
}

// Result summarizes a run.
type Result struct {
	// ExitCode is 0 when every target compiled, otherwise the exit code of
	// the first failing compiler.
	ExitCode int

	// Compiled lists the targets that finished successfully, in order.
	Compiled []shader.Stage
}

// Run compiles spec's targets in order.
//
// A target is only started after the previous one exited 0. When the
// compiler exits non-zero, Run returns *CompilationFailedError with that
// exit code and the remaining targets are never started. Other errors mean
// the compiler could not be run at all or ctx ended.
func (inv *Invoker) Run(ctx context.Context, spec shader.Spec) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if inv.Runner == nil && !inv.DryRun {
		return Result{}, fmt.Errorf("nil compiler runner")
	}

	jobs := spec.Jobs()
	res := Result{Compiled: make([]shader.Stage, 0, len(jobs))}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			inv.skipRest(jobs[i:], trace.ReasonCancelled, "")
			return res, fmt.Errorf("compiling %s shader: %w", job.Stage, err)
		}

		inv.echo(job)

		if inv.DryRun {
			trace.SafeRecord(inv.Trace, trace.TargetEvent{Kind: trace.EventTargetPlanned, Target: job.Stage.String(), Args: job.Args})
			continue
		}

		out, err := inv.Runner.Run(ctx, job.Args)
		if err != nil {
			reason := trace.ReasonCancelled
			var se *compiler.StartError
			if errors.As(err, &se) {
				reason = trace.ReasonCompilerUnavailable
			}
			inv.skipRest(jobs[i:], reason, "")
			return res, fmt.Errorf("compiling %s shader: %w", job.Stage, err)
		}

		if !out.Success() {
			trace.SafeRecord(inv.Trace, trace.TargetEvent{Kind: trace.EventTargetFailed, Target: job.Stage.String(), ExitCode: out.ExitCode, Args: job.Args})
			inv.skipRest(jobs[i+1:], trace.ReasonPreviousTargetFailed, job.Stage.String())

			failed := &CompilationFailedError{Target: job.Stage, ExitCode: out.ExitCode}
			inv.logf("%v", failed)
			res.ExitCode = out.ExitCode
			return res, failed
		}

		trace.SafeRecord(inv.Trace, trace.TargetEvent{Kind: trace.EventTargetCompiled, Target: job.Stage.String(), Args: job.Args})
		res.Compiled = append(res.Compiled, job.Stage)
	}

	res.ExitCode = 0
	return res, nil
}

func (inv *Invoker) echo(job shader.Job) {
	if inv.Stdout == nil {
		return
	}
	fmt.Fprintln(inv.Stdout, compiler.CommandLine(inv.Compiler, job.Args))
}

func (inv *Invoker) skipRest(jobs []shader.Job, reason, cause string) {
	for _, j := range jobs {
		trace.SafeRecord(inv.Trace, trace.TargetEvent{Kind: trace.EventTargetSkipped, Target: j.Stage.String(), Reason: reason, CauseTarget: cause})
	}
}

func (inv *Invoker) logf(format string, args ...any) {
	if inv.Log == nil {
		return
	}
	inv.Log.Printf(format, args...)
}

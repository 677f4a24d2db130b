package cli

import (
	"context"
	"errors"
	"io"

	"shaderweaver/internal/invoker"
)

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error. Help goes to stdout.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (CLIResult, error) {
	inv, err := parseInvocation(args, stdout)
	if errors.Is(err, ErrHelp) {
		return CLIResult{ExitCode: ExitSuccess}, nil
	}
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}
	return Execute(ctx, inv, stdout, stderr)
}

// Main runs the tool and returns the process exit code. Errors not already
// reported by the compile loop are printed to stderr.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	res, err := Run(ctx, args, stdout, stderr)
	if err != nil {
		var failed *invoker.CompilationFailedError
		if !errors.As(err, &failed) {
			NewLogger(stderr).Print(err)
		}
	}
	return res.ExitCode
}

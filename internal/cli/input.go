package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shaderweaver/internal/compiler"
	"shaderweaver/internal/shader"
)

const (
	ExitSuccess           = 0
	ExitCompileFailure    = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4

	// ExitCompilerUnavailable follows the shell convention for a command
	// that cannot be found or executed.
	ExitCompilerUnavailable = 127
	ExitInterrupted         = 130
)

// DebugToken enables debug symbols wherever it appears in the arguments.
const DebugToken = "--debug"

// ErrHelp is returned by ParseInvocation when usage was requested.
var ErrHelp = errors.New("help requested")

// Invocation is the fully parsed description of a run.
type Invocation struct {
	Spec shader.Spec

	// Compiler is the compiler executable.
	Compiler string

	// TracePath is where the JSON build trace goes. Empty disables it.
	TracePath string

	// DryRun echoes the command lines without running the compiler.
	DryRun bool
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

type options struct {
	compiler  string
	tracePath string
	dryRun    bool
	debug     bool

	// rawDebug is set when the literal --debug token was stripped before
	// flag parsing.
	rawDebug bool
}

// newRootCommand declares the command line for args. Once flags and
// positional arguments are valid, run receives the parsed Invocation.
// Every parse error is an *InvocationError.
func newRootCommand(args []string, run func(cmd *cobra.Command, inv Invocation) error) *cobra.Command {
	debug, rest := SplitDebug(args)
	o := &options{rawDebug: debug}

	cmd := &cobra.Command{
		Use:   "shaderweaver <file> <output> <targets> <model> [--debug]",
		Short: "Compile an HLSL file once per shader stage with DXC",
		Long: `shaderweaver runs the DXC shader compiler once for every requested stage.

Arguments:
  <file>     HLSL source file
  <output>   output path stem; each stage writes <output>.<stage>
  <targets>  comma separated stages: vs,ps,gs,hs,ds,cs
  <model>    shader model, 6_0 to 6_6

Every stage must define an entry point named <stage>Main (vsMain, psMain, ...).
Stages are compiled in the order given and the run stops at the first failure,
exiting with the compiler's exit code.

Exactly four arguments are accepted; anything extra is an error. Arguments
starting with "-" are read as flags, so put "--" before such paths:
  shaderweaver -- shader.hlsl -out vs 6_0

Examples:
  shaderweaver shader.hlsl build/shader vs,ps 6_0
  shaderweaver shader.hlsl build/shader vs,ps,cs 6_2 --debug`,
		Args: positionalArgs,
		RunE: func(c *cobra.Command, positional []string) error {
			inv, err := o.invocation(positional)
			if err != nil {
				return err
			}
			return run(c, inv)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	cmd.SetArgs(rest)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})

	f := cmd.Flags()
	f.StringVar(&o.compiler, "compiler", compiler.DefaultPath(), "compiler executable (default from $"+compiler.EnvCompiler+")")
	f.StringVar(&o.tracePath, "trace", "", "write a JSON build trace to this path")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "print the compiler command lines without running them")
	f.BoolVar(&o.debug, "debug", false, "embed debug information (-Zi -DDEBUG=1 -Qembed_debug)")
	return cmd
}

func positionalArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(4)(cmd, args); err != nil {
		return invalidInvocationf("%v (usage: %s)", err, cmd.Use)
	}
	return nil
}

func (o *options) invocation(positional []string) (Invocation, error) {
	targets := shader.ParseTargets(positional[2])
	if len(targets) == 0 {
		return Invocation{}, invalidInvocationf("no targets in %q", positional[2])
	}

	spec, err := shader.NewSpec(positional[0], positional[1], targets, positional[3], o.rawDebug || o.debug)
	if err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}

	if strings.TrimSpace(o.compiler) == "" {
		return Invocation{}, invalidInvocationf("--compiler must not be empty")
	}

	return Invocation{
		Spec:      spec,
		Compiler:  o.compiler,
		TracePath: o.tracePath,
		DryRun:    o.dryRun,
	}, nil
}

// SplitDebug removes every literal --debug token from args.
//
// --debug is not bound to a position; any occurrence, even after a "--"
// terminator, turns debug output on.
func SplitDebug(args []string) (debug bool, rest []string) {
	rest = make([]string, 0, len(args))
	for _, a := range args {
		if a == DebugToken {
			debug = true
			continue
		}
		rest = append(rest, a)
	}
	return debug, rest
}

// ParseInvocation parses the argument list (without argv[0]).
//
// It has no side effects: nothing is printed and nothing is executed.
// ErrHelp is returned when -h or --help was given.
func ParseInvocation(args []string) (Invocation, error) {
	return parseInvocation(args, io.Discard)
}

// parseInvocation is ParseInvocation with help text written to out.
func parseInvocation(args []string, out io.Writer) (Invocation, error) {
	var inv Invocation
	parsed := false
	cmd := newRootCommand(args, func(_ *cobra.Command, i Invocation) error {
		inv, parsed = i, true
		return nil
	})
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		return Invocation{}, err
	}
	if !parsed {
		return Invocation{}, ErrHelp
	}
	return inv, nil
}

// ExitCode extracts a semantic exit code from a ParseInvocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrHelp) {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	return ExitInternalError
}

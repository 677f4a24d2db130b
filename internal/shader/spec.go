package shader

import (
	"errors"
	"fmt"
)

// Flags appended to every invocation, in order.
const (
	FlagWarningsAsErrors = "-WX"
	FlagDebugInfo        = "-Zi"
	FlagDebugDefine      = "-DDEBUG=1"
	FlagEmbedDebug       = "-Qembed_debug"
)

// DebugFlags are added after -WX when debug output is requested.
var DebugFlags = []string{FlagDebugInfo, FlagDebugDefine, FlagEmbedDebug}

// Spec is the immutable description of one run.
//
// Targets keep the order the caller listed them in; that order is the
// compilation order.
type Spec struct {
	InputFile   string
	OutputStem  string
	Targets     []Stage
	ShaderModel string
	Debug       bool
}

// NewSpec validates the shape of a run and returns it.
//
// Only emptiness is checked. Stage codes and the shader model are passed to
// the compiler verbatim.
func NewSpec(inputFile, outputStem string, targets []Stage, shaderModel string, debug bool) (Spec, error) {
	if inputFile == "" {
		return Spec{}, errors.New("input file is required")
	}
	if outputStem == "" {
		return Spec{}, errors.New("output stem is required")
	}
	if len(targets) == 0 {
		return Spec{}, errors.New("at least one target is required")
	}
	for i, t := range targets {
		if t == "" {
			return Spec{}, fmt.Errorf("targets[%d] is empty", i)
		}
	}
	if shaderModel == "" {
		return Spec{}, errors.New("shader model is required")
	}

	ts := make([]Stage, len(targets))
	copy(ts, targets)
	return Spec{
		InputFile:   inputFile,
		OutputStem:  outputStem,
		Targets:     ts,
		ShaderModel: shaderModel,
		Debug:       debug,
	}, nil
}

// Job is everything needed to compile one stage. It is created, run and
// thrown away.
type Job struct {
	Stage      Stage
	EntryPoint string
	Profile    string
	OutputFile string

	// Args is the compiler argument list, excluding the executable.
	Args []string
}

// Job derives the compile job for a single stage.
func (s Spec) Job(stage Stage) Job {
	entry := string(stage) + "Main"
	profile := string(stage) + "_" + s.ShaderModel
	output := s.OutputStem + "." + string(stage)

	args := make([]string, 0, 8)
	args = append(args,
		"-T"+profile,
		"-E"+entry,
		"-Fo"+output,
		FlagWarningsAsErrors,
	)
	if s.Debug {
		args = append(args, DebugFlags...)
	}
	args = append(args, s.InputFile)

	return Job{
		Stage:      stage,
		EntryPoint: entry,
		Profile:    profile,
		OutputFile: output,
		Args:       args,
	}
}

// Jobs returns one Job per target, in target order.
func (s Spec) Jobs() []Job {
	jobs := make([]Job, 0, len(s.Targets))
	for _, t := range s.Targets {
		jobs = append(jobs, s.Job(t))
	}
	return jobs
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"shaderweaver/internal/shader"
)

func TestParseInvocation_Positional(t *testing.T) {
	t.Setenv("DXC", "")
	inv, err := ParseInvocation([]string{"shader.hlsl", "build/out", "vs,ps", "6_0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := shader.Spec{
		InputFile:   "shader.hlsl",
		OutputStem:  "build/out",
		Targets:     []shader.Stage{"vs", "ps"},
		ShaderModel: "6_0",
		Debug:       false,
	}
	if !reflect.DeepEqual(inv.Spec, want) {
		t.Fatalf("spec = %#v", inv.Spec)
	}
	if inv.Compiler != "dxc" && inv.Compiler != "dxc.exe" {
		t.Fatalf("compiler = %q", inv.Compiler)
	}
	if inv.TracePath != "" || inv.DryRun {
		t.Fatalf("unexpected options: %#v", inv)
	}
}

func TestParseInvocation_DebugAnywhere(t *testing.T) {
	base := []string{"s.hlsl", "out", "vs", "6_0"}
	cases := [][]string{
		{"--debug", "s.hlsl", "out", "vs", "6_0"},
		{"s.hlsl", "--debug", "out", "vs", "6_0"},
		{"s.hlsl", "out", "vs", "6_0", "--debug"},
		{"s.hlsl", "out", "vs", "6_0", "--debug", "--debug"},
		{"--", "s.hlsl", "out", "vs", "6_0", "--debug"},
	}
	for _, args := range cases {
		inv, err := ParseInvocation(args)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", args, err)
		}
		if !inv.Spec.Debug {
			t.Errorf("%q: debug not set", args)
		}
		if inv.Spec.InputFile != base[0] || inv.Spec.OutputStem != base[1] || inv.Spec.ShaderModel != base[3] {
			t.Errorf("%q: positional args shifted: %#v", args, inv.Spec)
		}
	}

	inv, err := ParseInvocation(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Spec.Debug {
		t.Errorf("debug set without --debug")
	}
}

func TestParseInvocation_Options(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--compiler", "/opt/dxc/bin/dxc",
		"s.hlsl", "out", "cs", "6_6",
		"--trace=logs/trace.json",
		"-n",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Compiler != "/opt/dxc/bin/dxc" {
		t.Errorf("compiler = %q", inv.Compiler)
	}
	if inv.TracePath != "logs/trace.json" {
		t.Errorf("trace = %q", inv.TracePath)
	}
	if !inv.DryRun {
		t.Errorf("dry run not set")
	}
}

func TestParseInvocation_CompilerFromEnvironment(t *testing.T) {
	t.Setenv("DXC", "/sdk/dxc")
	inv, err := ParseInvocation([]string{"s.hlsl", "out", "vs", "6_0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Compiler != "/sdk/dxc" {
		t.Fatalf("compiler = %q", inv.Compiler)
	}
}

func TestParseInvocation_Invalid(t *testing.T) {
	cases := map[string][]string{
		"no args":        {},
		"too few":        {"s.hlsl", "out", "vs"},
		"too many":       {"s.hlsl", "out", "vs", "6_0", "extra"},
		"unknown flag":   {"s.hlsl", "out", "vs", "6_0", "--fast"},
		"empty targets":  {"s.hlsl", "out", ",,", "6_0"},
		"empty input":    {"", "out", "vs", "6_0"},
		"empty compiler": {"--compiler", " ", "s.hlsl", "out", "vs", "6_0"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInvocation(args)
			if err == nil {
				t.Fatalf("expected error")
			}
			var invErr *InvocationError
			if !errors.As(err, &invErr) {
				t.Fatalf("expected InvocationError, got %T", err)
			}
			if ExitCode(err) != ExitInvalidInvocation {
				t.Fatalf("exit code = %d", ExitCode(err))
			}
		})
	}
}

func TestParseInvocation_UnknownStageIsAccepted(t *testing.T) {
	inv, err := ParseInvocation([]string{"s.hlsl", "out", "vs,xx", "9_9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(inv.Spec.Targets, []shader.Stage{"vs", "xx"}) {
		t.Fatalf("targets = %v", inv.Spec.Targets)
	}
}

func TestParseInvocation_Help(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		_, err := ParseInvocation([]string{flag})
		if !errors.Is(err, ErrHelp) {
			t.Fatalf("%s: expected ErrHelp, got %v", flag, err)
		}
		if ExitCode(err) != ExitSuccess {
			t.Fatalf("%s: exit code = %d", flag, ExitCode(err))
		}
	}
}

func TestRun_HelpListsFlags(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		var stdout bytes.Buffer
		res, err := Run(context.Background(), []string{flag}, &stdout, &bytes.Buffer{})
		if err != nil || res.ExitCode != ExitSuccess {
			t.Fatalf("%s: res = %+v, err = %v", flag, res, err)
		}
		for _, want := range []string{"<targets>", "Flags:", "--debug", "--compiler", "--trace", "-n, --dry-run"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("%s: help missing %q:\n%s", flag, want, stdout.String())
			}
		}
	}
}

func TestParseInvocation_ExtraPositionalRejected(t *testing.T) {
	_, err := ParseInvocation([]string{"s.hlsl", "out", "vs", "6_0", "--debug", "extra"})
	if ExitCode(err) != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation, got %v", err)
	}
}

func TestParseInvocation_DashPathNeedsTerminator(t *testing.T) {
	if _, err := ParseInvocation([]string{"s.hlsl", "-out", "vs", "6_0"}); ExitCode(err) != ExitInvalidInvocation {
		t.Fatalf("expected -out to be read as a flag, got %v", err)
	}

	inv, err := ParseInvocation([]string{"--compiler", "dxc", "--", "s.hlsl", "-out", "vs", "6_0", "--debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Spec.OutputStem != "-out" || !inv.Spec.Debug {
		t.Fatalf("spec = %#v", inv.Spec)
	}
}

func TestSplitDebug(t *testing.T) {
	debug, rest := SplitDebug([]string{"a", "--debug", "b", "--debugger"})
	if !debug {
		t.Fatalf("debug not detected")
	}
	if !reflect.DeepEqual(rest, []string{"a", "b", "--debugger"}) {
		t.Fatalf("rest = %q", rest)
	}
	if debug, _ := SplitDebug([]string{"--debug=true"}); debug {
		t.Fatalf("only the literal token counts")
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != ExitSuccess {
		t.Errorf("nil -> %d", got)
	}
	if got := ExitCode(&InvocationError{}); got != ExitInvalidInvocation {
		t.Errorf("zero InvocationError -> %d", got)
	}
	if got := ExitCode(errors.New("x")); got != ExitInternalError {
		t.Errorf("plain error -> %d", got)
	}
}

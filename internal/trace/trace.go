package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// BuildTrace is the record of one shaderweaver run.
//
// Invariants:
//   - Events are kept in execution order. Target order is observable, so
//     unlike a graph trace nothing is re-sorted.
//   - No timestamps or durations; two identical runs produce identical bytes.
//
// JSON serialization uses a custom marshaler to fix field order and omit
// absent optional fields.
type BuildTrace struct {
	Compiler string
	Input    string
	Model    string
	Debug    bool
	Events   []TargetEvent
}

// EventKind is the stable discriminator for TargetEvent.
// The string values are part of the trace bytes; do not rename.
type EventKind string

const (
	EventTargetPlanned  EventKind = "TargetPlanned"
	EventTargetCompiled EventKind = "TargetCompiled"
	EventTargetFailed   EventKind = "TargetFailed"
	EventTargetSkipped  EventKind = "TargetSkipped"
)

// Reasons attached to TargetSkipped events.
const (
	ReasonPreviousTargetFailed = "PreviousTargetFailed"
	ReasonCancelled            = "Cancelled"
	ReasonCompilerUnavailable  = "CompilerUnavailable"
)

// TargetEvent is what happened to a single target.
type TargetEvent struct {
	Kind EventKind

	// Target is the stage code, e.g. "vs".
	Target string

	// ExitCode is only meaningful for TargetCompiled and TargetFailed.
	ExitCode int

	// Args is the compiler argument list. Empty for skipped targets.
	Args []string

	// Reason is a stable reason code for TargetSkipped.
	Reason string

	// CauseTarget names the target whose failure caused a skip.
	CauseTarget string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *BuildTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.Compiler == "" {
		return errors.New("compiler is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Target == "" {
			return fmt.Errorf("events[%d].target is required", i)
		}
		if e.Kind == EventTargetFailed && e.ExitCode == 0 {
			return fmt.Errorf("events[%d] is %s with exit code 0", i, e.Kind)
		}
	}
	return nil
}

// Canonicalize normalizes empty slices to nil. Event order is preserved.
func (t *BuildTrace) Canonicalize() {
	if t == nil {
		return
	}
	for i := range t.Events {
		if len(t.Events[i].Args) == 0 {
			t.Events[i].Args = nil
			continue
		}
		args := make([]string, len(t.Events[i].Args))
		copy(args, t.Events[i].Args)
		t.Events[i].Args = args
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slices.
func (t BuildTrace) CanonicalJSON() ([]byte, error) {
	cp := t
	cp.Events = make([]TargetEvent, len(t.Events))
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// MarshalJSON writes fields in a fixed order.
func (t BuildTrace) MarshalJSON() ([]byte, error) {
	if t.Compiler == "" {
		return nil, errors.New("compiler is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField(&buf, "compiler", t.Compiler, false)
	writeField(&buf, "input", t.Input, true)
	writeField(&buf, "model", t.Model, true)
	if t.Debug {
		buf.WriteString(`,"debug":true`)
	}

	buf.WriteString(`,"events":[`)
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes fields in a fixed order and omits empty optional fields.
func (e TargetEvent) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	// kind (always first)
	writeField(&buf, "kind", string(e.Kind), false)
	writeField(&buf, "target", e.Target, true)

	if e.Kind == EventTargetCompiled || e.Kind == EventTargetFailed {
		fmt.Fprintf(&buf, `,"exitCode":%d`, e.ExitCode)
	}

	if len(e.Args) > 0 {
		buf.WriteString(`,"args":`)
		ab, err := json.Marshal(e.Args)
		if err != nil {
			return nil, err
		}
		buf.Write(ab)
	}

	writeField(&buf, "reason", e.Reason, true)
	writeField(&buf, "causeTarget", e.CauseTarget, true)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeField appends "name":value. With lead set it is preceded by a comma
// and skipped entirely when value is empty.
func writeField(buf *bytes.Buffer, name, value string, lead bool) {
	if lead {
		if value == "" {
			return
		}
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(name)
	buf.WriteString(`":`)
	vb, _ := json.Marshal(value)
	buf.Write(vb)
}

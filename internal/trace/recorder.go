package trace

import "sync"

// Sink receives one event per target as the invoker moves through a run.
// Implementations keep quiet about their own problems: a broken sink must
// never change which targets compile or the exit code.
type Sink interface {
	Record(event TargetEvent)
}

// SafeRecord hands event to s. A nil sink drops it and a panicking sink is
// contained, so trace bugs cannot abort a build.
func SafeRecord(s Sink, event TargetEvent) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder keeps target events in memory, in the order they arrive.
type Recorder struct {
	mu     sync.Mutex
	events []TargetEvent
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event TargetEvent) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot copies the events recorded so far.
func (r *Recorder) Snapshot() []TargetEvent {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TargetEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Trace returns base with the recorded events attached. Later Record calls
// do not affect the returned trace.
func (r *Recorder) Trace(base BuildTrace) BuildTrace {
	base.Events = r.Snapshot()
	base.Canonicalize()
	return base
}

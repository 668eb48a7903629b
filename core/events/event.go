package events

import (
	"context"
	"log/slog"
	"sync"

	"tokenledger/core/types"
)

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Renderable is implemented by events that can be flattened into the generic
// types.Event record consumed by log sinks and indexers.
type Renderable interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// OrNoop returns e, or a NoopEmitter when e is nil.
func OrNoop(e Emitter) Emitter {
	if e == nil {
		return NoopEmitter{}
	}
	return e
}

// Recorder keeps every emitted event in memory in emission order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// LogEmitter writes every event as a structured log line.
type LogEmitter struct {
	Logger *slog.Logger
}

func (l LogEmitter) Emit(e Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{slog.String("event", e.EventType())}
	if r, ok := e.(Renderable); ok {
		if rendered := r.Event(); rendered != nil {
			args := make([]any, 0, len(rendered.Attributes))
			for _, key := range rendered.SortedKeys() {
				args = append(args, slog.String(key, rendered.Attributes[key]))
			}
			attrs = append(attrs, slog.Group("attributes", args...))
		}
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "ledger event", attrs...)
}

// Fanout forwards each event to every non-nil emitter in order.
type Fanout []Emitter

func (f Fanout) Emit(e Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(e)
		}
	}
}

package events

import (
	"context"

	"github.com/nathoo/statuscore/types"
)

// Recorder keeps every published event in memory.
type Recorder struct {
	events []types.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event types.Event) {
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []types.Event {
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// OfType returns recorded events of one type.
func (r *Recorder) OfType(kind string) []types.Event {
	var out []types.Event
	for _, ev := range r.events {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Drain returns the recorded events and resets the recorder.
func (r *Recorder) Drain() []types.Event {
	out := r.events
	r.events = nil
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.events = nil
}

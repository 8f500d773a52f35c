// Package input abstracts the event source a running experiment polls:
// keyboard and mouse events with timestamps. The SDL backend covers live
// sessions; the Script source feeds recorded or synthetic events to tests
// and replays.
package input

import (
	"sync"
	"time"
)

// Kind tags an event.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	MouseDown
	MouseUp
	MouseMove
	Quit
)

// Event is one input occurrence. Key holds the key name for keyboard
// events ("y", "space", ...); X and Y hold coordinates for mouse events.
type Event struct {
	Kind Kind
	Key  string
	X, Y int32
	Time time.Time
}

// Source delivers pending events without blocking.
type Source interface {
	// Poll returns the events that arrived since the previous call, oldest
	// first.
	Poll() ([]Event, error)

	Close() error
}

// KeyPress returns a predicate accepting a key-down of the named key;
// the common response predicate.
func KeyPress(key string) func(Event) bool {
	return func(ev Event) bool {
		return ev.Kind == KeyDown && ev.Key == key
	}
}

// Script is an in-memory Source: events pushed from anywhere are handed
// out on the next Poll. Safe for concurrent use.
type Script struct {
	mu      sync.Mutex
	pending []Event
}

// NewScript creates an empty scripted source.
func NewScript() *Script { return &Script{} }

// Push appends events to the pending queue.
func (s *Script) Push(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, events...)
}

// Poll drains and returns the pending events.
func (s *Script) Poll() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.pending
	s.pending = nil
	return events, nil
}

// Close discards any pending events.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one diagnostic record emitted by the focus engine.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

const defaultMax = 512

// Store is a bounded in-memory event log. Appends past the cap drop the
// oldest entries and leave a single events_truncated marker behind.
type Store struct {
	mu    sync.RWMutex
	max   int
	items []Event
	sinks []func(Event)
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = defaultMax
	}
	return &Store{max: max}
}

// Notify registers a sink invoked for every appended event, after the event
// is stored. Sinks run on the appending goroutine and should not block.
func (s *Store) Notify(fn func(Event)) {
	s.mu.Lock()
	s.sinks = append(s.sinks, fn)
	s.mu.Unlock()
}

func (s *Store) Append(channel, typ string, payload map[string]any) Event {
	evt := Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Channel:   channel,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	s.mu.Lock()
	s.items = append(s.items, evt)
	if l := len(s.items); l > s.max {
		// Keep room for the truncation marker so the total stays at max. An
		// earlier marker is replaced by the new one rather than kept.
		real := make([]Event, 0, l)
		for _, e := range s.items {
			if e.Type != "events_truncated" {
				real = append(real, e)
			}
		}
		keep := s.max - 1
		dropped := len(real) - keep
		s.items = append([]Event(nil), real[len(real)-keep:]...)
		s.items = append(s.items, Event{
			ID:        uuid.NewString(),
			Type:      "events_truncated",
			Timestamp: time.Now().UTC(),
			Payload:   map[string]any{"dropped": dropped, "kept": keep},
		})
	}
	sinks := s.sinks
	s.mu.Unlock()

	for _, fn := range sinks {
		fn(evt)
	}
	return evt
}

// List returns a copy of the stored events, oldest first.
func (s *Store) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.items))
	copy(out, s.items)
	return out
}

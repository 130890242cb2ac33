/*
events.go - Domain events emitted by the tracker and the scheduler

PURPOSE:
  Decouples side effects (notifications, downstream sync) from recording
  entries. Producers hand an Event to a Publisher; publishing is best effort
  and never fails the operation that triggered it.

EVENT TYPES:
  entry.recorded  A new session was added
  entry.deleted   A session was removed
  period.closed   The wall clock moved past a pay period's end

SEE ALSO:
  - events/amqp/publisher.go: RabbitMQ publisher
  - timesheet/tracker.go: Emits entry events
  - api/scheduler.go: Emits period.closed
*/
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Type identifies what happened.
type Type string

const (
	EntryRecorded Type = "entry.recorded"
	EntryDeleted  Type = "entry.deleted"
	PeriodClosed  Type = "period.closed"
)

// Event is the JSON message body. Optional fields are omitted when empty.
type Event struct {
	Type         Type      `json:"type"`
	EntryID      string    `json:"entryId,omitempty"`
	Date         string    `json:"date,omitempty"`
	Location     string    `json:"location,omitempty"`
	Period       string    `json:"period,omitempty"`
	PeriodLabel  string    `json:"periodLabel,omitempty"`
	TotalMinutes int       `json:"totalMinutes,omitempty"`
	GrandTotal   string    `json:"grandTotal,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event from JSON bytes
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// =============================================================================
// NOP / RECORDER
// =============================================================================

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

// FailWith makes Publish return err from now on.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the types of recorded events in publish order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

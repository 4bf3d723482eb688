// Package notify publishes domain events after a write commits. Publication
// is best-effort: failures are logged and never returned to the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"courtbook/pkg/model"
)

const (
	BookingConfirmed   = "booking.confirmed"
	BookingReleased    = "booking.released"
	SnapshotPropagated = "snapshot.propagated"
	TicketAdvanced     = "ticket.advanced"
)

// Event is one domain event. Key routes related events to the same partition.
type Event struct {
	Type          string
	Key           string
	CorrelationID string
	Payload       any
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

type BookingPayload struct {
	BookingID   string                `json:"booking_id"`
	RequesterID string                `json:"requester_id"`
	GymnasiumID int                   `json:"gymnasium_id"`
	CourtNumber int                   `json:"court_number"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Status      model.BookingStatus   `json:"status"`
	Equipment   []model.EquipmentLine `json:"equipment,omitempty"`
}

func NewBookingEvent(eventType string, b *model.Booking) Event {
	return Event{
		Type:          eventType,
		Key:           b.Court().Key(),
		CorrelationID: b.ID,
		Payload: BookingPayload{
			BookingID:   b.ID,
			RequesterID: b.RequesterID,
			GymnasiumID: b.GymnasiumID,
			CourtNumber: b.CourtNumber,
			Start:       b.Start,
			End:         b.End,
			Status:      b.Status,
			Equipment:   b.Equipment,
		},
	}
}

type TicketPayload struct {
	TicketID    string             `json:"ticket_id"`
	GymnasiumID int                `json:"gymnasium_id"`
	CourtNumber int                `json:"court_number"`
	From        model.TicketStatus `json:"from"`
	To          model.TicketStatus `json:"to"`
}

func NewTicketEvent(t *model.Ticket, from model.TicketStatus) Event {
	return Event{
		Type:          TicketAdvanced,
		Key:           t.Court().Key(),
		CorrelationID: t.ID,
		Payload: TicketPayload{
			TicketID:    t.ID,
			GymnasiumID: t.GymnasiumID,
			CourtNumber: t.CourtNumber,
			From:        from,
			To:          t.Status,
		},
	}
}

// PropagationPayload reports how many documents a cascade touched per
// collection.
type PropagationPayload struct {
	Source  string           `json:"source"`
	Key     string           `json:"key"`
	Tasks   []string         `json:"tasks"`
	Touched map[string]int64 `json:"touched"`
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
func (Nop) Close() error                   { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

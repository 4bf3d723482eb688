package model

import "time"

type EventType string

const (
	EventOneOff    EventType = "one_off"
	EventRecurring EventType = "recurring"
)

// Recurrence is a weekly window: every Weekday from StartTime to EndTime
// (HH:MM, local to the store's time zone) until the Until day, inclusive.
type Recurrence struct {
	Weekday   time.Weekday `json:"weekday" bson:"weekday" validate:"min=0,max=6"`
	StartTime string       `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime   string       `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	Until     time.Time    `json:"until" bson:"until" validate:"required"`
}

type Event struct {
	ID            string       `json:"id" bson:"_id" validate:"required,uuid"`
	Name          string       `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Description   string       `json:"description" bson:"description" validate:"max=1000"`
	OrganizerID   string       `json:"organizer_id" bson:"organizer_id" validate:"required,national_id"`
	OrganizerInfo UserSnapshot `json:"organizer_info" bson:"organizer_info"`
	Type          EventType    `json:"type" bson:"type" validate:"required,oneof=one_off recurring"`
	Start         *time.Time   `json:"start,omitempty" bson:"start,omitempty"`
	End           *time.Time   `json:"end,omitempty" bson:"end,omitempty"`
	Recurrence    *Recurrence  `json:"recurrence,omitempty" bson:"recurrence,omitempty" validate:"omitempty"`
	BlockedCourts []CourtRef   `json:"blocked_courts" bson:"blocked_courts" validate:"required,min=1,dive"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// Blocks reports whether the event lists court among its blocked courts.
func (e *Event) Blocks(court CourtRef) bool {
	for _, c := range e.BlockedCourts {
		if c == court {
			return true
		}
	}
	return false
}

// EventUpdate patches an event. Setting Start, End, Recurrence or
// BlockedCourts reschedules it and re-runs the court checks.
type EventUpdate struct {
	Name          *string     `json:"name,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Start         *time.Time  `json:"start,omitempty"`
	End           *time.Time  `json:"end,omitempty"`
	Recurrence    *Recurrence `json:"recurrence,omitempty"`
	BlockedCourts []CourtRef  `json:"blocked_courts,omitempty"`
}

func (u *EventUpdate) Reschedules() bool {
	return u.Start != nil || u.End != nil || u.Recurrence != nil || u.BlockedCourts != nil
}

type EventFilter struct {
	Type   EventType
	Court  *CourtRef
	Limit  int
	Offset int64
}

package model

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

// Next returns the only status a ticket may move to from s.
func (s TicketStatus) Next() (TicketStatus, bool) {
	switch s {
	case TicketOpen:
		return TicketInProgress, true
	case TicketInProgress:
		return TicketResolved, true
	}
	return "", false
}

type Ticket struct {
	ID           string        `json:"id" bson:"_id" validate:"required,uuid"`
	ReporterID   string        `json:"reporter_id" bson:"reporter_id" validate:"required,national_id"`
	ReporterInfo UserSnapshot  `json:"reporter_info" bson:"reporter_info"`
	GymnasiumID  int           `json:"gymnasium_id" bson:"gymnasium_id" validate:"required,min=1"`
	CourtNumber  int           `json:"court_number" bson:"court_number" validate:"required,min=1"`
	LocationInfo VenueSnapshot `json:"location_info" bson:"location_info"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at" validate:"required"`
	Description  string        `json:"description" bson:"description" validate:"required,min=3,max=1000"`
	Status       TicketStatus  `json:"status" bson:"status" validate:"required,oneof=open in_progress resolved"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

func (t *Ticket) Court() CourtRef {
	return CourtRef{GymnasiumID: t.GymnasiumID, CourtNumber: t.CourtNumber}
}

type TicketUpdate struct {
	Description *string `json:"description,omitempty"`
}

type TicketFilter struct {
	ReporterID  string
	GymnasiumID int
	Status      TicketStatus
	Limit       int
	Offset      int64
}

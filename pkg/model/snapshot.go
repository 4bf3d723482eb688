package model

import "fmt"

// UserSnapshot is the point-in-time copy of a user's name embedded in
// bookings, events and tickets. Only propagation rewrites it.
type UserSnapshot struct {
	Name string `json:"name" bson:"name"`
}

// VenueSnapshot is the embedded copy of the gymnasium name (and, for
// bookings, the court status at the last propagation).
type VenueSnapshot struct {
	GymnasiumName string      `json:"gymnasium_name" bson:"gymnasium_name"`
	CourtStatus   CourtStatus `json:"court_status,omitempty" bson:"court_status,omitempty"`
}

// CourtRef addresses a court inside a gymnasium.
type CourtRef struct {
	GymnasiumID int `json:"gymnasium_id" bson:"gymnasium_id" validate:"required,min=1"`
	CourtNumber int `json:"court_number" bson:"court_number" validate:"required,min=1"`
}

// Key renders the court as "court:<gymnasium>:<number>".
func (c CourtRef) Key() string {
	return fmt.Sprintf("court:%d:%d", c.GymnasiumID, c.CourtNumber)
}

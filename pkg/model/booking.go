package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted, BookingNoShow},
}

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active is true for bookings that still occupy (or may occupy) the court.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID            string          `json:"id" bson:"_id" validate:"required,uuid"`
	RequesterID   string          `json:"requester_id" bson:"requester_id" validate:"required,national_id"`
	RequesterInfo UserSnapshot    `json:"requester_info" bson:"requester_info"`
	GymnasiumID   int             `json:"gymnasium_id" bson:"gymnasium_id" validate:"required,min=1"`
	CourtNumber   int             `json:"court_number" bson:"court_number" validate:"required,min=1"`
	LocationInfo  VenueSnapshot   `json:"location_info" bson:"location_info"`
	RequestedAt   time.Time       `json:"requested_at" bson:"requested_at" validate:"required"`
	Start         time.Time       `json:"start" bson:"start" validate:"required"`
	End           time.Time       `json:"end" bson:"end" validate:"required"`
	Reason        string          `json:"reason" bson:"reason" validate:"max=300"`
	Status        BookingStatus   `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed no_show"`
	OperatorID    string          `json:"operator_id,omitempty" bson:"operator_id,omitempty" validate:"omitempty,national_id"`
	Equipment     []EquipmentLine `json:"equipment" bson:"equipment" validate:"dive"`
	EquipmentHeld bool            `json:"equipment_held" bson:"equipment_held"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

type EquipmentLine struct {
	EquipmentID int    `json:"equipment_id" bson:"equipment_id" validate:"required,min=1"`
	Name        string `json:"name" bson:"name"`
	Quantity    int    `json:"quantity" bson:"quantity" validate:"required,min=1"`
}

func (b *Booking) Court() CourtRef {
	return CourtRef{GymnasiumID: b.GymnasiumID, CourtNumber: b.CourtNumber}
}

// BookingUpdate carries the fields a caller may edit in place. Status moves
// go through the lifecycle operations instead.
type BookingUpdate struct {
	Reason     *string `json:"reason,omitempty"`
	OperatorID *string `json:"operator_id,omitempty"`
}

type BookingFilter struct {
	RequesterID string
	GymnasiumID int
	CourtNumber int
	Statuses    []BookingStatus
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int64
}

// AgendaEntry is one occupied window of a court: a booking or an event block.
type AgendaEntry struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Requester string    `json:"requester,omitempty"`
}

const (
	AgendaBooking = "booking"
	AgendaEvent   = "event"
)

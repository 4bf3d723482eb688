// Package conflict decides whether a booking request can be confirmed. It is
// pure: callers load the court state and pass it in.
package conflict

import (
	"time"

	"courtbook/pkg/model"
)

type Reason string

const (
	None                  Reason = ""
	CourtUnavailable      Reason = "court_unavailable"
	BlockedByEvent        Reason = "blocked_by_event"
	OverlappingBooking    Reason = "overlapping_booking"
	InsufficientEquipment Reason = "insufficient_equipment"
)

func (r Reason) Message() string {
	switch r {
	case CourtUnavailable:
		return "court is not available for booking"
	case BlockedByEvent:
		return "court is blocked by an event during the requested window"
	case OverlappingBooking:
		return "court already has a confirmed booking overlapping the requested window"
	case InsufficientEquipment:
		return "not enough equipment available for the request"
	}
	return ""
}

// Candidate is the booking being checked. ExcludeID skips the candidate's own
// document when a stored pending booking is confirmed.
type Candidate struct {
	Court     model.CourtRef
	Start     time.Time
	End       time.Time
	Equipment []model.EquipmentLine
	ExcludeID string
}

// State is what the checker needs to know about the court.
type State struct {
	Gymnasium *model.Gymnasium
	Events    []*model.Event
	Bookings  []*model.Booking
}

type Checker struct {
	loc *time.Location
}

// NewChecker evaluates recurring events in loc. A nil loc means UTC.
func NewChecker(loc *time.Location) *Checker {
	if loc == nil {
		loc = time.UTC
	}
	return &Checker{loc: loc}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Check runs the four checks in order and returns the first failing reason,
// or None when the candidate can be confirmed.
func (c *Checker) Check(cand Candidate, st State) Reason {
	var court *model.Court
	if st.Gymnasium != nil {
		court, _ = st.Gymnasium.FindCourt(cand.Court.CourtNumber)
	}
	if court == nil || court.Status != model.CourtAvailable {
		return CourtUnavailable
	}

	for _, e := range st.Events {
		if e.Blocks(cand.Court) && len(c.Occurrences(e, cand.Start, cand.End)) > 0 {
			return BlockedByEvent
		}
	}

	for _, b := range st.Bookings {
		if b.ID == cand.ExcludeID || b.Status != model.BookingConfirmed || b.Court() != cand.Court {
			continue
		}
		if Overlaps(cand.Start, cand.End, b.Start, b.End) {
			return OverlappingBooking
		}
	}

	requested := make(map[int]int, len(cand.Equipment))
	for _, line := range cand.Equipment {
		requested[line.EquipmentID] += line.Quantity
	}
	for id, qty := range requested {
		item, _ := st.Gymnasium.FindEquipment(id)
		if item == nil || item.AvailableQuantity < qty {
			return InsufficientEquipment
		}
	}

	return None
}

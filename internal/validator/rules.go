package validator

import (
	"fmt"

	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
)

func userRules(u *model.User) []apperrors.Violation {
	var violations []apperrors.Violation

	if !u.HasCapability(u.Role) {
		violations = append(violations, apperrors.Violation{
			Field:  fmt.Sprintf("%s_details", u.Role),
			Reason: fmt.Sprintf("role %q requires %s_details", u.Role, u.Role),
		})
	}

	if sd := u.StudentDetails; sd != nil && sd.Category == model.Scholarship {
		start, errStart := model.ClockMinutes(sd.ShiftStart)
		end, errEnd := model.ClockMinutes(sd.ShiftEnd)
		if errStart == nil && errEnd == nil && end <= start {
			violations = append(violations, apperrors.Violation{
				Field:  "student_details.shift_end",
				Reason: "must be after shift_start",
			})
		}
	}

	return violations
}

func gymnasiumRules(g *model.Gymnasium) []apperrors.Violation {
	var violations []apperrors.Violation

	courts := make(map[int]struct{}, len(g.Courts))
	for i, c := range g.Courts {
		if _, dup := courts[c.Number]; dup {
			violations = append(violations, apperrors.Violation{
				Field:  fmt.Sprintf("courts[%d].number", i),
				Reason: fmt.Sprintf("court number %d is repeated", c.Number),
			})
		}
		courts[c.Number] = struct{}{}

		sports := make(map[int]struct{}, len(c.AllowedSports))
		for _, s := range c.AllowedSports {
			if _, dup := sports[s]; dup {
				violations = append(violations, apperrors.Violation{
					Field:  fmt.Sprintf("courts[%d].allowed_sports", i),
					Reason: fmt.Sprintf("sport %d is repeated", s),
				})
				break
			}
			sports[s] = struct{}{}
		}
	}

	equipment := make(map[int]struct{}, len(g.Equipment))
	for i, e := range g.Equipment {
		if _, dup := equipment[e.ID]; dup {
			violations = append(violations, apperrors.Violation{
				Field:  fmt.Sprintf("equipment[%d].equipment_id", i),
				Reason: fmt.Sprintf("equipment id %d is repeated", e.ID),
			})
		}
		equipment[e.ID] = struct{}{}

		if e.AvailableQuantity > e.TotalQuantity {
			violations = append(violations, apperrors.Violation{
				Field:  fmt.Sprintf("equipment[%d].available_quantity", i),
				Reason: fmt.Sprintf("available quantity (%d) exceeds total quantity (%d)", e.AvailableQuantity, e.TotalQuantity),
			})
		}
	}

	return violations
}

func bookingRules(b *model.Booking) []apperrors.Violation {
	var violations []apperrors.Violation

	if !b.End.After(b.Start) {
		violations = append(violations, apperrors.Violation{Field: "end", Reason: "must be after start"})
	}

	lines := make(map[int]struct{}, len(b.Equipment))
	for i, l := range b.Equipment {
		if _, dup := lines[l.EquipmentID]; dup {
			violations = append(violations, apperrors.Violation{
				Field:  fmt.Sprintf("equipment[%d].equipment_id", i),
				Reason: fmt.Sprintf("equipment id %d is requested twice", l.EquipmentID),
			})
		}
		lines[l.EquipmentID] = struct{}{}
	}

	return violations
}

func eventRules(e *model.Event) []apperrors.Violation {
	var violations []apperrors.Violation

	switch e.Type {
	case model.EventOneOff:
		if e.Start == nil || e.End == nil {
			violations = append(violations, apperrors.Violation{Field: "start", Reason: "one-off events require start and end"})
		} else if !e.End.After(*e.Start) {
			violations = append(violations, apperrors.Violation{Field: "end", Reason: "must be after start"})
		}
		if e.Recurrence != nil {
			violations = append(violations, apperrors.Violation{Field: "recurrence", Reason: "one-off events cannot carry a recurrence"})
		}
	case model.EventRecurring:
		if e.Recurrence == nil {
			violations = append(violations, apperrors.Violation{Field: "recurrence", Reason: "recurring events require a recurrence"})
			break
		}
		start, errStart := model.ClockMinutes(e.Recurrence.StartTime)
		end, errEnd := model.ClockMinutes(e.Recurrence.EndTime)
		if errStart == nil && errEnd == nil && end <= start {
			violations = append(violations, apperrors.Violation{Field: "recurrence.end_time", Reason: "must be after start_time"})
		}
		if e.Start != nil || e.End != nil {
			violations = append(violations, apperrors.Violation{Field: "start", Reason: "recurring events keep their window in recurrence"})
		}
	}

	blocked := make(map[model.CourtRef]struct{}, len(e.BlockedCourts))
	for i, c := range e.BlockedCourts {
		if _, dup := blocked[c]; dup {
			violations = append(violations, apperrors.Violation{
				Field:  fmt.Sprintf("blocked_courts[%d]", i),
				Reason: fmt.Sprintf("court %d of gymnasium %d is listed twice", c.CourtNumber, c.GymnasiumID),
			})
		}
		blocked[c] = struct{}{}
	}

	return violations
}

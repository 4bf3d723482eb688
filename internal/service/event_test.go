package service

import (
	"testing"
	"time"

	"courtbook/internal/conflict"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneOffEvent(start, end time.Time, courts ...model.CourtRef) *model.Event {
	return &model.Event{
		Name:          "Campeonato Intercursos",
		OrganizerID:   adminID,
		Type:          model.EventOneOff,
		Start:         &start,
		End:           &end,
		BlockedCourts: courts,
	}
}

func weeklyEvent(weekday time.Weekday, from, to string, courts ...model.CourtRef) *model.Event {
	return &model.Event{
		Name:        "Treino da Seleção",
		OrganizerID: adminID,
		Type:        model.EventRecurring,
		Recurrence: &model.Recurrence{
			Weekday:   weekday,
			StartTime: from,
			EndTime:   to,
			Until:     tomorrowAt(0, 0).AddDate(0, 0, 30),
		},
		BlockedCourts: courts,
	}
}

func TestEventService_Create(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	ev, err := f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1), court(1, 2)))
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Administrador Geral", ev.OrganizerInfo.Name)

	tests := []struct {
		name  string
		event func() *model.Event
		code  string
	}{
		{"nil document", func() *model.Event { return nil }, apperrors.CodeSchemaViolation},
		{"organizer without admin capability", func() *model.Event {
			e := oneOffEvent(tomorrowAt(8, 0), tomorrowAt(9, 0), court(2, 1))
			e.OrganizerID = joseID
			return e
		}, apperrors.CodeInvalidInput},
		{"unknown organizer", func() *model.Event {
			e := oneOffEvent(tomorrowAt(8, 0), tomorrowAt(9, 0), court(2, 1))
			e.OrganizerID = "99988877766"
			return e
		}, apperrors.CodeNotFound},
		{"unknown court", func() *model.Event {
			return oneOffEvent(tomorrowAt(8, 0), tomorrowAt(9, 0), court(2, 7))
		}, apperrors.CodeNotFound},
		{"end before start", func() *model.Event {
			return oneOffEvent(tomorrowAt(9, 0), tomorrowAt(8, 0), court(2, 1))
		}, apperrors.CodeSchemaViolation},
		{"no blocked courts", func() *model.Event {
			return oneOffEvent(tomorrowAt(8, 0), tomorrowAt(9, 0))
		}, apperrors.CodeSchemaViolation},
		{"recurring without recurrence", func() *model.Event {
			e := weeklyEvent(time.Monday, "08:00", "09:00", court(2, 1))
			e.Recurrence = nil
			return e
		}, apperrors.CodeSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(f.ctx, tt.event())
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestEventService_RejectsConfirmedOverlap(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(15, 0), tomorrowAt(16, 0)))
	require.NoError(t, err)

	_, err = f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflictDetected))
	assert.Equal(t, string(conflict.OverlappingBooking), apperrors.Reason(err))

	// Touching the booking's end is not an overlap.
	_, err = f.events.Create(f.ctx, oneOffEvent(tomorrowAt(16, 0), tomorrowAt(18, 0), court(1, 1)))
	assert.NoError(t, err)
}

func TestEventService_PendingBookingDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	req := bookingRequest(court(1, 1), tomorrowAt(15, 0), tomorrowAt(16, 0))
	req.Status = model.BookingPending
	b, err := f.bookings.Create(f.ctx, req)
	require.NoError(t, err)

	_, err = f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)))
	require.NoError(t, err)

	_, err = f.bookings.Confirm(f.ctx, b.ID, adminID)
	require.Error(t, err)
	assert.Equal(t, string(conflict.BlockedByEvent), apperrors.Reason(err))
}

func TestEventService_RecurringBlocksMatchingWeekday(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	day := tomorrowAt(0, 0)
	_, err := f.events.Create(f.ctx, weeklyEvent(day.Weekday(), "18:00", "20:00", court(1, 1)))
	require.NoError(t, err)

	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(19, 0), tomorrowAt(21, 0)))
	require.Error(t, err)
	assert.Equal(t, string(conflict.BlockedByEvent), apperrors.Reason(err))

	// Same hours one day later fall on another weekday.
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(19, 0).AddDate(0, 0, 1), tomorrowAt(21, 0).AddDate(0, 0, 1)))
	assert.NoError(t, err)

	// Outside the weekly window on the blocked day.
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(16, 0), tomorrowAt(18, 0)))
	assert.NoError(t, err)
}

func TestEventService_RecurringRejectsConfirmedBookingOnLaterWeek(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	nextWeek := tomorrowAt(19, 0).AddDate(0, 0, 7)
	_, err := f.bookings.Create(f.ctx, bookingRequest(court(1, 1), nextWeek, nextWeek.Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.events.Create(f.ctx, weeklyEvent(nextWeek.Weekday(), "18:00", "20:00", court(1, 1)))
	require.Error(t, err)
	assert.Equal(t, string(conflict.OverlappingBooking), apperrors.Reason(err))
}

func TestEventService_RejectsOverlappingEvent(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)))
	require.NoError(t, err)

	weekday := tomorrowAt(0, 0).Weekday()
	tests := []struct {
		name   string
		event  *model.Event
		reject bool
	}{
		{"same window same court", oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)), true},
		{"partial overlap among several courts", oneOffEvent(tomorrowAt(17, 0), tomorrowAt(19, 0), court(2, 1), court(1, 1)), true},
		{"same window other court", oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(2, 1)), false},
		{"recurring over the one-off", weeklyEvent(weekday, "17:30", "19:00", court(1, 1)), true},
		{"back to back one-off", oneOffEvent(tomorrowAt(18, 0), tomorrowAt(20, 0), court(1, 1)), false},
		{"recurring over the second one-off", weeklyEvent(weekday, "19:00", "21:00", court(1, 1)), true},
		{"recurring later hours", weeklyEvent(weekday, "21:00", "23:00", court(1, 2)), false},
		{"recurring overlapping recurring", weeklyEvent(weekday, "22:00", "23:30", court(1, 2)), true},
		{"recurring other weekday", weeklyEvent((weekday+1)%7, "21:00", "23:00", court(1, 2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(f.ctx, tt.event)
			if !tt.reject {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflictDetected), "got %v", err)
			assert.Equal(t, string(conflict.BlockedByEvent), apperrors.Reason(err))
		})
	}
}

func TestEventService_RecurringIgnoresPastBookings(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	past := tomorrowAt(19, 0).AddDate(0, 0, -14)
	require.NoError(t, f.repos.Bookings.Create(f.ctx, &model.Booking{
		ID:          "7d1c5a52-4b8e-4a55-9a43-0f3c2e6b9d10",
		RequesterID: joseID,
		GymnasiumID: 1,
		CourtNumber: 1,
		Start:       past,
		End:         past.Add(time.Hour),
		Status:      model.BookingConfirmed,
	}))

	_, err := f.events.Create(f.ctx, weeklyEvent(past.Weekday(), "18:00", "20:00", court(1, 1)))
	assert.NoError(t, err)
}

func TestEventService_Occurrences(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	day := tomorrowAt(0, 0)
	ev, err := f.events.Create(f.ctx, weeklyEvent(day.Weekday(), "18:00", "20:00", court(2, 1)))
	require.NoError(t, err)

	windows, err := f.events.Occurrences(f.ctx, ev.ID, day, day.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, tomorrowAt(18, 0), windows[0].Start)
	assert.Equal(t, tomorrowAt(20, 0).AddDate(0, 0, 7), windows[1].End)

	_, err = f.events.Occurrences(f.ctx, ev.ID, day, day)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	ev, err := f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)))
	require.NoError(t, err)

	name := "Final do Campeonato"
	updated, err := f.events.Update(f.ctx, ev.ID, &model.EventUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, ev.BlockedCourts, updated.BlockedCourts)

	events, total, err := f.events.List(f.ctx, model.EventFilter{Court: &model.CourtRef{GymnasiumID: 1, CourtNumber: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)

	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(15, 0), tomorrowAt(16, 0)))
	require.Error(t, err)

	require.NoError(t, f.events.Delete(f.ctx, ev.ID))
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(15, 0), tomorrowAt(16, 0)))
	assert.NoError(t, err)

	assert.True(t, apperrors.HasCode(f.events.Delete(f.ctx, ev.ID), apperrors.CodeNotFound))
}

func TestEventService_Reschedule(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	ev, err := f.events.Create(f.ctx, oneOffEvent(tomorrowAt(14, 0), tomorrowAt(18, 0), court(1, 1)))
	require.NoError(t, err)
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(2, 1), tomorrowAt(15, 0), tomorrowAt(16, 0)))
	require.NoError(t, err)

	_, err = f.events.Update(f.ctx, ev.ID, &model.EventUpdate{BlockedCourts: []model.CourtRef{court(2, 1)}})
	require.Error(t, err)
	assert.Equal(t, string(conflict.OverlappingBooking), apperrors.Reason(err))

	stored, err := f.events.GetByKey(f.ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.CourtRef{court(1, 1)}, stored.BlockedCourts)

	start, end := tomorrowAt(19, 0), tomorrowAt(21, 0)
	moved, err := f.events.Update(f.ctx, ev.ID, &model.EventUpdate{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, start, *moved.Start)
	assert.Equal(t, "Administrador Geral", moved.OrganizerInfo.Name)

	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(15, 0), tomorrowAt(16, 0)))
	require.NoError(t, err)
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(20, 0), tomorrowAt(21, 0)))
	assert.Equal(t, string(conflict.BlockedByEvent), apperrors.Reason(err))

	other, err := f.events.Create(f.ctx, oneOffEvent(tomorrowAt(21, 0), tomorrowAt(22, 0), court(1, 1)))
	require.NoError(t, err)
	later, laterEnd := tomorrowAt(21, 30), tomorrowAt(22, 30)
	_, err = f.events.Update(f.ctx, ev.ID, &model.EventUpdate{Start: &later, End: &laterEnd})
	require.Error(t, err)
	assert.Equal(t, string(conflict.BlockedByEvent), apperrors.Reason(err))

	// Moving an event onto its own current window is not a conflict with itself.
	_, err = f.events.Update(f.ctx, other.ID, &model.EventUpdate{BlockedCourts: []model.CourtRef{court(1, 1)}})
	assert.NoError(t, err)

	_, err = f.events.Update(f.ctx, ev.ID, &model.EventUpdate{End: &start})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSchemaViolation))
}

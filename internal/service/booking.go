package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"courtbook/internal/conflict"
	"courtbook/internal/notify"
	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"

	"github.com/google/uuid"
)

type BookingService interface {
	// Create stores a booking. A confirmed request (the default) runs the
	// conflict check and holds its equipment; a pending one holds nothing
	// until Confirm.
	Create(ctx context.Context, b *model.Booking) (*model.Booking, error)
	GetByKey(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, patch *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error

	Confirm(ctx context.Context, id, operatorID string) (*model.Booking, error)
	Cancel(ctx context.Context, id, operatorID string) (*model.Booking, error)
	Complete(ctx context.Context, id, operatorID string) (*model.Booking, error)
	MarkNoShow(ctx context.Context, id, operatorID string) (*model.Booking, error)

	// CourtAgenda merges the non-cancelled bookings and event blocks of one
	// court that intersect [from, to), ordered by start.
	CourtAgenda(ctx context.Context, court model.CourtRef, from, to time.Time) ([]model.AgendaEntry, error)
}

type bookingService struct {
	base
}

func NewBookingService(d Deps) BookingService {
	return &bookingService{base: newBase(d, "bookings")}
}

func (s *bookingService) Create(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b == nil {
		return nil, missingDocument()
	}

	s.prepareNew(b)
	if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
		return nil, apperrors.InvalidInput(fmt.Sprintf("a new booking must be %q or %q", model.BookingPending, model.BookingConfirmed))
	}
	if err := s.Validator.ValidateBooking(b); err != nil {
		return nil, s.fail("Booking validation failed", err, "requester_id", b.RequesterID)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	release, err := s.lockKeys(ctx, "court", b.Court().Key())
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.inTx(ctx, "create booking", func(ctx context.Context) error {
		requester, err := s.activeUser(ctx, b.RequesterID)
		if err != nil {
			return err
		}
		if err := s.checkOperator(ctx, b.OperatorID); err != nil {
			return err
		}
		gym, court, err := s.loadCourt(ctx, b.Court())
		if err != nil {
			return err
		}
		if err := fillEquipmentNames(b, gym); err != nil {
			return err
		}

		b.RequesterInfo = requester.Snapshot()
		b.LocationInfo = gym.Snapshot(court)

		switch {
		case b.Status == model.BookingConfirmed:
			if err := s.hold(ctx, b, gym); err != nil {
				return err
			}
		case court.Status != model.CourtAvailable:
			return apperrors.ConflictDetected(string(conflict.CourtUnavailable), conflict.CourtUnavailable.Message())
		}

		if err := s.Repos.Bookings.Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperrors.DuplicateKey(repository.BookingsCollection, b.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to create booking", err,
			"court", b.Court().Key(),
			"start", b.Start,
			"end", b.End,
			"reason", apperrors.Reason(err),
		)
	}

	s.log.Info("Booking created successfully",
		"id", b.ID,
		"court", b.Court().Key(),
		"status", b.Status,
		"start", b.Start,
		"end", b.End,
	)
	if b.Status == model.BookingConfirmed {
		s.Publisher.Publish(ctx, notify.NewBookingEvent(notify.BookingConfirmed, b))
	}
	return b, nil
}

func (s *bookingService) GetByKey(ctx context.Context, id string) (*model.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	b, err := s.Repos.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "booking", id), "get booking")
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, int64, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)
	filter.RequesterID = sanitizer.NormalizeNationalID(filter.RequesterID)

	return listWithCount(ctx, &s.base, "bookings",
		func(ctx context.Context) ([]*model.Booking, error) { return s.Repos.Bookings.FindAll(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.Repos.Bookings.Count(ctx, filter) },
	)
}

func (s *bookingService) Update(ctx context.Context, id string, patch *model.BookingUpdate) (*model.Booking, error) {
	if patch == nil {
		return nil, missingPatch()
	}
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var updated *model.Booking
	err := s.inTx(ctx, "update booking", func(ctx context.Context) error {
		b, err := s.Repos.Bookings.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "booking", id)
		}

		if patch.Reason != nil {
			b.Reason = sanitizer.NormalizeText(*patch.Reason)
		}
		if patch.OperatorID != nil {
			b.OperatorID = sanitizer.NormalizeNationalID(*patch.OperatorID)
			if err := s.checkOperator(ctx, b.OperatorID); err != nil {
				return err
			}
		}
		b.UpdatedAt = now()

		if err := s.Validator.ValidateBooking(b); err != nil {
			return err
		}
		if err := s.Repos.Bookings.Update(ctx, b); err != nil {
			return lookupError(err, "booking", id)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to update booking", err, "id", id)
	}

	s.log.Info("Booking updated successfully", "id", id)
	return updated, nil
}

// Delete removes a booking, giving back any equipment it still holds.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var deleted *model.Booking
	err := s.underCourtLock(ctx, "delete booking", id, func(ctx context.Context, b *model.Booking) error {
		if err := s.releaseHold(ctx, b); err != nil {
			return err
		}
		if err := s.Repos.Bookings.Delete(ctx, id); err != nil {
			return lookupError(err, "booking", id)
		}
		deleted = b
		return nil
	})
	if err != nil {
		return s.fail("Failed to delete booking", err, "id", id)
	}

	s.log.Info("Booking deleted successfully", "id", id)
	if deleted.Status == model.BookingConfirmed {
		s.Publisher.Publish(ctx, notify.NewBookingEvent(notify.BookingReleased, deleted))
	}
	return nil
}

func (s *bookingService) Confirm(ctx context.Context, id, operatorID string) (*model.Booking, error) {
	return s.transition(ctx, id, operatorID, model.BookingConfirmed)
}

func (s *bookingService) Cancel(ctx context.Context, id, operatorID string) (*model.Booking, error) {
	return s.transition(ctx, id, operatorID, model.BookingCancelled)
}

func (s *bookingService) Complete(ctx context.Context, id, operatorID string) (*model.Booking, error) {
	return s.transition(ctx, id, operatorID, model.BookingCompleted)
}

func (s *bookingService) MarkNoShow(ctx context.Context, id, operatorID string) (*model.Booking, error) {
	return s.transition(ctx, id, operatorID, model.BookingNoShow)
}

func (s *bookingService) transition(ctx context.Context, id, operatorID string, to model.BookingStatus) (*model.Booking, error) {
	id = strings.TrimSpace(id)
	operatorID = sanitizer.NormalizeNationalID(operatorID)
	op := fmt.Sprintf("move booking to %s", to)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var (
		updated *model.Booking
		from    model.BookingStatus
	)
	err := s.underCourtLock(ctx, op, id, func(ctx context.Context, b *model.Booking) error {
		from = b.Status
		if !b.Status.CanTransition(to) {
			return apperrors.InvalidTransition("booking", string(b.Status), string(to))
		}
		if operatorID != "" {
			if err := s.checkOperator(ctx, operatorID); err != nil {
				return err
			}
			b.OperatorID = operatorID
		}

		if to == model.BookingConfirmed {
			gym, err := s.Repos.Gymnasiums.FindByID(ctx, b.GymnasiumID)
			if err != nil {
				return lookupError(err, "gymnasium", b.GymnasiumID)
			}
			if err := s.hold(ctx, b, gym); err != nil {
				return err
			}
		} else if err := s.releaseHold(ctx, b); err != nil {
			return err
		}

		b.Status = to
		b.UpdatedAt = now()
		if err := s.Validator.ValidateBooking(b); err != nil {
			return err
		}
		if err := s.Repos.Bookings.Update(ctx, b); err != nil {
			return lookupError(err, "booking", id)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to "+op, err, "id", id, "reason", apperrors.Reason(err))
	}

	s.log.Info("Booking status changed", "id", id, "from", from, "to", to)
	if to == model.BookingConfirmed {
		s.Publisher.Publish(ctx, notify.NewBookingEvent(notify.BookingConfirmed, updated))
	} else if from == model.BookingConfirmed {
		s.Publisher.Publish(ctx, notify.NewBookingEvent(notify.BookingReleased, updated))
	}
	return updated, nil
}

// underCourtLock locks the court of booking id and runs fn in a transaction
// with the booking reloaded under the lock.
func (s *bookingService) underCourtLock(ctx context.Context, op, id string, fn func(ctx context.Context, b *model.Booking) error) error {
	current, err := s.Repos.Bookings.FindByID(ctx, id)
	if err != nil {
		return s.mapError(lookupError(err, "booking", id), op)
	}

	release, err := s.lockKeys(ctx, "court", current.Court().Key())
	if err != nil {
		return err
	}
	defer release()

	return s.inTx(ctx, op, func(ctx context.Context) error {
		b, err := s.Repos.Bookings.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "booking", id)
		}
		if b.Court() != current.Court() {
			// Renumbered between the read and the lock.
			return apperrors.LockUnavailable("court")
		}
		return fn(ctx, b)
	})
}

// hold runs the conflict check for b and reserves its equipment. It must run
// under the court lock and inside the write's transaction.
func (s *bookingService) hold(ctx context.Context, b *model.Booking, gym *model.Gymnasium) error {
	st, err := s.courtState(ctx, gym, b.Court(), b.Start, b.End)
	if err != nil {
		return err
	}

	reason := s.Checker.Check(conflict.Candidate{
		Court:     b.Court(),
		Start:     b.Start,
		End:       b.End,
		Equipment: b.Equipment,
		ExcludeID: b.ID,
	}, st)
	if reason != conflict.None {
		return apperrors.ConflictDetected(string(reason), reason.Message())
	}

	// Equipment is shared by every court of the gymnasium, so the reservation
	// is a conditional decrement rather than a trust in the check above.
	for _, line := range aggregateLines(b.Equipment) {
		if err := s.Repos.Gymnasiums.ReserveEquipment(ctx, b.GymnasiumID, line.EquipmentID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientQuantity) || errors.Is(err, repository.ErrNotFound) {
				return apperrors.ConflictDetected(string(conflict.InsufficientEquipment), conflict.InsufficientEquipment.Message())
			}
			return err
		}
	}

	b.Status = model.BookingConfirmed
	b.EquipmentHeld = len(b.Equipment) > 0
	return nil
}

func (s *bookingService) releaseHold(ctx context.Context, b *model.Booking) error {
	if !b.EquipmentHeld {
		return nil
	}
	for _, line := range aggregateLines(b.Equipment) {
		if err := s.Repos.Gymnasiums.ReleaseEquipment(ctx, b.GymnasiumID, line.EquipmentID, line.Quantity); err != nil {
			return fmt.Errorf("failed to release equipment %d: %w", line.EquipmentID, err)
		}
	}
	b.EquipmentHeld = false
	return nil
}

func (s *bookingService) courtState(ctx context.Context, gym *model.Gymnasium, court model.CourtRef, start, end time.Time) (conflict.State, error) {
	events, err := s.Repos.Events.FindByCourt(ctx, court)
	if err != nil {
		return conflict.State{}, err
	}
	bookings, err := s.Repos.Bookings.FindConfirmedOverlapping(ctx, court, start, end)
	if err != nil {
		return conflict.State{}, err
	}
	return conflict.State{Gymnasium: gym, Events: events, Bookings: bookings}, nil
}

func (s *bookingService) CourtAgenda(ctx context.Context, court model.CourtRef, from, to time.Time) ([]model.AgendaEntry, error) {
	if !from.Before(to) {
		return nil, apperrors.InvalidInput("agenda window must end after it starts")
	}

	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	if _, _, err := s.loadCourt(ctx, court); err != nil {
		return nil, s.mapError(err, "load court agenda")
	}

	bookings, err := s.Repos.Bookings.FindAll(ctx, model.BookingFilter{
		GymnasiumID: court.GymnasiumID,
		CourtNumber: court.CourtNumber,
		Statuses:    []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingCompleted, model.BookingNoShow},
		From:        &from,
		To:          &to,
	})
	if err != nil {
		return nil, s.mapError(err, "load court agenda")
	}
	events, err := s.Repos.Events.FindByCourt(ctx, court)
	if err != nil {
		return nil, s.mapError(err, "load court agenda")
	}

	entries := make([]model.AgendaEntry, 0, len(bookings)+len(events))
	for _, b := range bookings {
		entries = append(entries, model.AgendaEntry{
			Kind:      model.AgendaBooking,
			ID:        b.ID,
			Title:     b.Reason,
			Start:     b.Start,
			End:       b.End,
			Status:    string(b.Status),
			Requester: b.RequesterInfo.Name,
		})
	}
	for _, e := range events {
		for _, w := range s.Checker.Occurrences(e, from, to) {
			entries = append(entries, model.AgendaEntry{
				Kind:      model.AgendaEvent,
				ID:        e.ID,
				Title:     e.Name,
				Start:     w.Start,
				End:       w.End,
				Status:    string(e.Type),
				Requester: e.OrganizerInfo.Name,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		return entries[i].End.Before(entries[j].End)
	})

	s.log.Debug("Court agenda loaded", "court", court.Key(), "entries", len(entries))
	return entries, nil
}

func (s *bookingService) prepareNew(b *model.Booking) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
	b.RequesterID = sanitizer.NormalizeNationalID(b.RequesterID)
	b.OperatorID = sanitizer.NormalizeNationalID(b.OperatorID)
	b.Reason = sanitizer.NormalizeText(b.Reason)

	ts := now()
	if b.RequestedAt.IsZero() {
		b.RequestedAt = ts
	}
	b.UpdatedAt = ts

	// Snapshots and the hold flag are derived, never taken from the caller.
	b.RequesterInfo = model.UserSnapshot{}
	b.LocationInfo = model.VenueSnapshot{}
	b.EquipmentHeld = false
	if b.Equipment == nil {
		b.Equipment = []model.EquipmentLine{}
	}
}

func (s *bookingService) activeUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.Repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", id)
	}
	if u.Status != model.UserActive {
		return nil, apperrors.InvalidInput(fmt.Sprintf("user %s is inactive", id))
	}
	return u, nil
}

func (s *bookingService) checkOperator(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.Repos.Users.FindByID(ctx, id); err != nil {
		return lookupError(err, "user", id)
	}
	return nil
}

func (s *bookingService) loadCourt(ctx context.Context, ref model.CourtRef) (*model.Gymnasium, *model.Court, error) {
	return loadCourt(ctx, s.Repos.Gymnasiums, ref)
}

func loadCourt(ctx context.Context, gyms repository.GymnasiumRepository, ref model.CourtRef) (*model.Gymnasium, *model.Court, error) {
	gym, err := gyms.FindByID(ctx, ref.GymnasiumID)
	if err != nil {
		return nil, nil, lookupError(err, "gymnasium", ref.GymnasiumID)
	}
	court, _ := gym.FindCourt(ref.CourtNumber)
	if court == nil {
		return nil, nil, apperrors.NotFoundWithKey("court", ref.Key())
	}
	return gym, court, nil
}

// fillEquipmentNames copies the catalogue name onto each requested line.
func fillEquipmentNames(b *model.Booking, gym *model.Gymnasium) error {
	for i := range b.Equipment {
		item, _ := gym.FindEquipment(b.Equipment[i].EquipmentID)
		if item == nil {
			return apperrors.SchemaViolation(apperrors.Violation{
				Field:  fmt.Sprintf("equipment[%d].equipment_id", i),
				Reason: fmt.Sprintf("gymnasium %d has no equipment %d", gym.ID, b.Equipment[i].EquipmentID),
			})
		}
		b.Equipment[i].Name = item.Name
	}
	return nil
}

// aggregateLines sums quantities per equipment id, ordered by id.
func aggregateLines(lines []model.EquipmentLine) []model.EquipmentLine {
	sums := map[int]int{}
	for _, l := range lines {
		sums[l.EquipmentID] += l.Quantity
	}
	ids := make([]int, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]model.EquipmentLine, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.EquipmentLine{EquipmentID: id, Quantity: sums[id]})
	}
	return out
}

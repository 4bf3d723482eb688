package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"courtbook/internal/conflict"
	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"

	"github.com/google/uuid"
)

type EventService interface {
	// Create stores an event after checking that none of its blocked courts
	// already carries another event or a confirmed booking inside the
	// event's windows.
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	GetByKey(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]*model.Event, int64, error)
	Update(ctx context.Context, id string, patch *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, id string) error

	// Occurrences expands the event into its concrete windows inside [from, to).
	Occurrences(ctx context.Context, id string, from, to time.Time) ([]conflict.Window, error)
}

type eventService struct {
	base
}

func NewEventService(d Deps) EventService {
	return &eventService{base: newBase(d, "events")}
}

func (s *eventService) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	if e == nil {
		return nil, missingDocument()
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Name = sanitizer.NormalizeName(e.Name)
	e.Description = sanitizer.NormalizeText(e.Description)
	e.OrganizerID = sanitizer.NormalizeNationalID(e.OrganizerID)
	e.OrganizerInfo = model.UserSnapshot{}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	if err := s.Validator.ValidateEvent(e); err != nil {
		return nil, s.fail("Event validation failed", err, "name", e.Name)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	keys := make([]string, 0, len(e.BlockedCourts))
	for _, c := range e.BlockedCourts {
		keys = append(keys, c.Key())
	}
	release, err := s.lockKeys(ctx, "court", keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.inTx(ctx, "create event", func(ctx context.Context) error {
		organizer, err := s.Repos.Users.FindByID(ctx, e.OrganizerID)
		if err != nil {
			return lookupError(err, "user", e.OrganizerID)
		}
		if !organizer.HasCapability(model.RoleAdmin) {
			return apperrors.InvalidInput(fmt.Sprintf("user %s cannot organize events without admin capability", e.OrganizerID))
		}
		if organizer.Status != model.UserActive {
			return apperrors.InvalidInput(fmt.Sprintf("user %s is inactive", e.OrganizerID))
		}
		e.OrganizerInfo = organizer.Snapshot()

		for _, court := range e.BlockedCourts {
			if _, _, err := loadCourt(ctx, s.Repos.Gymnasiums, court); err != nil {
				return err
			}
			if err := s.checkOtherEvents(ctx, e, court); err != nil {
				return err
			}
			if err := s.checkConfirmedBookings(ctx, e, court); err != nil {
				return err
			}
		}

		if err := s.Repos.Events.Create(ctx, e); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperrors.DuplicateKey(repository.EventsCollection, e.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to create event", err, "name", e.Name, "reason", apperrors.Reason(err))
	}

	s.log.Info("Event created successfully",
		"id", e.ID,
		"name", e.Name,
		"type", e.Type,
		"blocked_courts", len(e.BlockedCourts),
	)
	return e, nil
}

// checkOtherEvents rejects the event when another event blocking court has
// an occurrence intersecting one of its windows.
func (s *eventService) checkOtherEvents(ctx context.Context, e *model.Event, court model.CourtRef) error {
	others, err := s.Repos.Events.FindByCourt(ctx, court)
	if err != nil {
		return err
	}
	at := now()
	for _, other := range others {
		if other.ID == e.ID {
			continue
		}
		if s.Checker.EventsOverlap(e, other, at) {
			return apperrors.ConflictDetected(
				string(conflict.BlockedByEvent),
				fmt.Sprintf("court %s is already blocked by event %s inside the event window", court.Key(), other.ID),
			)
		}
	}
	return nil
}

// checkConfirmedBookings rejects the event when a confirmed booking on court
// intersects any of its windows. Bookings before the current week are ignored.
func (s *eventService) checkConfirmedBookings(ctx context.Context, e *model.Event, court model.CourtRef) error {
	span, ok := s.Checker.Span(e, now())
	if !ok {
		return nil
	}
	filter := model.BookingFilter{
		GymnasiumID: court.GymnasiumID,
		CourtNumber: court.CourtNumber,
		Statuses:    []model.BookingStatus{model.BookingConfirmed},
		From:        &span.Start,
		To:          &span.End,
	}

	bookings, err := s.Repos.Bookings.FindAll(ctx, filter)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if len(s.Checker.Occurrences(e, b.Start, b.End)) > 0 {
			return apperrors.ConflictDetected(
				string(conflict.OverlappingBooking),
				fmt.Sprintf("court %s has confirmed booking %s inside the event window", court.Key(), b.ID),
			)
		}
	}
	return nil
}

func (s *eventService) GetByKey(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	e, err := s.Repos.Events.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "event", id), "get event")
	}
	return e, nil
}

func (s *eventService) List(ctx context.Context, filter model.EventFilter) ([]*model.Event, int64, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	return listWithCount(ctx, &s.base, "events",
		func(ctx context.Context) ([]*model.Event, error) { return s.Repos.Events.FindAll(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.Repos.Events.Count(ctx, filter) },
	)
}

func (s *eventService) Update(ctx context.Context, id string, patch *model.EventUpdate) (*model.Event, error) {
	if patch == nil {
		return nil, missingPatch()
	}
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	rescheduled := patch.Reschedules()
	if rescheduled {
		// Lock the courts the event blocks now and the ones it will block.
		current, err := s.Repos.Events.FindByID(ctx, id)
		if err != nil {
			return nil, s.fail("Failed to update event", s.mapError(lookupError(err, "event", id), "update event"), "id", id)
		}
		keys := make([]string, 0, len(current.BlockedCourts)+len(patch.BlockedCourts))
		for _, c := range append(slices.Clone(current.BlockedCourts), patch.BlockedCourts...) {
			keys = append(keys, c.Key())
		}
		release, err := s.lockKeys(ctx, "court", keys...)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var updated *model.Event
	err := s.inTx(ctx, "update event", func(ctx context.Context) error {
		e, err := s.Repos.Events.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "event", id)
		}
		if patch.Name != nil {
			e.Name = sanitizer.NormalizeName(*patch.Name)
		}
		if patch.Description != nil {
			e.Description = sanitizer.NormalizeText(*patch.Description)
		}
		if patch.Start != nil {
			start := *patch.Start
			e.Start = &start
		}
		if patch.End != nil {
			end := *patch.End
			e.End = &end
		}
		if patch.Recurrence != nil {
			r := *patch.Recurrence
			e.Recurrence = &r
		}
		if patch.BlockedCourts != nil {
			e.BlockedCourts = slices.Clone(patch.BlockedCourts)
		}
		e.UpdatedAt = now()

		if err := s.Validator.ValidateEvent(e); err != nil {
			return err
		}
		if rescheduled {
			for _, court := range e.BlockedCourts {
				if _, _, err := loadCourt(ctx, s.Repos.Gymnasiums, court); err != nil {
					return err
				}
				if err := s.checkOtherEvents(ctx, e, court); err != nil {
					return err
				}
				if err := s.checkConfirmedBookings(ctx, e, court); err != nil {
					return err
				}
			}
		}
		if err := s.Repos.Events.Update(ctx, e); err != nil {
			return lookupError(err, "event", id)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to update event", err, "id", id, "reason", apperrors.Reason(err))
	}

	s.log.Info("Event updated successfully", "id", id, "rescheduled", rescheduled)
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if err := s.Repos.Events.Delete(ctx, id); err != nil {
		return s.fail("Failed to delete event", s.mapError(lookupError(err, "event", id), "delete event"), "id", id)
	}

	s.log.Info("Event deleted successfully", "id", id)
	return nil
}

func (s *eventService) Occurrences(ctx context.Context, id string, from, to time.Time) ([]conflict.Window, error) {
	if !from.Before(to) {
		return nil, apperrors.InvalidInput("window must end after it starts")
	}
	e, err := s.GetByKey(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Checker.Occurrences(e, from, to), nil
}

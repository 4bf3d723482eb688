package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"courtbook/internal/notify"
	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"

	"github.com/google/uuid"
)

type TicketService interface {
	Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error)
	GetByKey(ctx context.Context, id string) (*model.Ticket, error)
	List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, int64, error)
	Update(ctx context.Context, id string, patch *model.TicketUpdate) (*model.Ticket, error)
	Delete(ctx context.Context, id string) error

	// Advance moves a ticket one step along open -> in_progress -> resolved.
	Advance(ctx context.Context, id string, to model.TicketStatus) (*model.Ticket, error)
}

type ticketService struct {
	base
}

func NewTicketService(d Deps) TicketService {
	return &ticketService{base: newBase(d, "tickets")}
}

func (s *ticketService) Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	if t == nil {
		return nil, missingDocument()
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TicketOpen
	}
	if t.Status != model.TicketOpen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("a new ticket must be %q", model.TicketOpen))
	}
	t.ReporterID = sanitizer.NormalizeNationalID(t.ReporterID)
	t.Description = sanitizer.NormalizeText(t.Description)
	t.ReporterInfo = model.UserSnapshot{}
	t.LocationInfo = model.VenueSnapshot{}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	if err := s.Validator.ValidateTicket(t); err != nil {
		return nil, s.fail("Ticket validation failed", err, "reporter_id", t.ReporterID)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, "create ticket", func(ctx context.Context) error {
		reporter, err := s.Repos.Users.FindByID(ctx, t.ReporterID)
		if err != nil {
			return lookupError(err, "user", t.ReporterID)
		}
		if reporter.Status != model.UserActive {
			return apperrors.InvalidInput(fmt.Sprintf("user %s is inactive", t.ReporterID))
		}
		gym, _, err := loadCourt(ctx, s.Repos.Gymnasiums, t.Court())
		if err != nil {
			return err
		}

		t.ReporterInfo = reporter.Snapshot()
		t.LocationInfo = model.VenueSnapshot{GymnasiumName: gym.Name}

		if err := s.Repos.Tickets.Create(ctx, t); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperrors.DuplicateKey(repository.TicketsCollection, t.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to create ticket", err, "court", t.Court().Key())
	}

	s.log.Info("Ticket created successfully", "id", t.ID, "court", t.Court().Key())
	return t, nil
}

func (s *ticketService) GetByKey(ctx context.Context, id string) (*model.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Ticket ID cannot be empty")
	}

	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	t, err := s.Repos.Tickets.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "ticket", id), "get ticket")
	}
	return t, nil
}

func (s *ticketService) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, int64, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)
	filter.ReporterID = sanitizer.NormalizeNationalID(filter.ReporterID)

	return listWithCount(ctx, &s.base, "tickets",
		func(ctx context.Context) ([]*model.Ticket, error) { return s.Repos.Tickets.FindAll(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.Repos.Tickets.Count(ctx, filter) },
	)
}

func (s *ticketService) Update(ctx context.Context, id string, patch *model.TicketUpdate) (*model.Ticket, error) {
	if patch == nil {
		return nil, missingPatch()
	}
	return s.modify(ctx, "update ticket", id, func(t *model.Ticket) error {
		if patch.Description != nil {
			t.Description = sanitizer.NormalizeText(*patch.Description)
		}
		return nil
	})
}

func (s *ticketService) Advance(ctx context.Context, id string, to model.TicketStatus) (*model.Ticket, error) {
	var from model.TicketStatus
	t, err := s.modify(ctx, "advance ticket", id, func(t *model.Ticket) error {
		from = t.Status
		next, ok := t.Status.Next()
		if !ok || next != to {
			return apperrors.InvalidTransition("ticket", string(t.Status), string(to))
		}
		t.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Ticket advanced", "id", t.ID, "from", from, "to", to)
	s.Publisher.Publish(ctx, notify.NewTicketEvent(t, from))
	return t, nil
}

func (s *ticketService) modify(ctx context.Context, op, id string, edit func(t *model.Ticket) error) (*model.Ticket, error) {
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var updated *model.Ticket
	err := s.inTx(ctx, op, func(ctx context.Context) error {
		t, err := s.Repos.Tickets.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "ticket", id)
		}
		if err := edit(t); err != nil {
			return err
		}
		t.UpdatedAt = now()

		if err := s.Validator.ValidateTicket(t); err != nil {
			return err
		}
		if err := s.Repos.Tickets.Update(ctx, t); err != nil {
			return lookupError(err, "ticket", id)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to "+op, err, "id", id)
	}
	return updated, nil
}

func (s *ticketService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if err := s.Repos.Tickets.Delete(ctx, id); err != nil {
		return s.fail("Failed to delete ticket", s.mapError(lookupError(err, "ticket", id), "delete ticket"), "id", id)
	}

	s.log.Info("Ticket deleted successfully", "id", id)
	return nil
}

package memory

import (
	"context"
	"slices"
	"strings"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type ticketRepository struct {
	db *DB
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.tickets[ticket.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.db.data.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, ok := r.db.data.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *ticketRepository) FindAll(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tickets := []*model.Ticket{}
	for _, t := range r.db.data.tickets {
		if matchTicket(&t, filter) {
			c := t
			tickets = append(tickets, &c)
		}
	}
	slices.SortFunc(tickets, func(a, b *model.Ticket) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return page(tickets, filter.Limit, filter.Offset), nil
}

func (r *ticketRepository) Count(ctx context.Context, filter model.TicketFilter) (int64, error) {
	return r.count(ctx, func(t *model.Ticket) bool { return matchTicket(t, filter) })
}

func (r *ticketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	stored, ok := r.db.data.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Description = ticket.Description
	stored.Status = ticket.Status
	stored.UpdatedAt = ticket.UpdatedAt
	r.db.data.tickets[ticket.ID] = stored
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.tickets[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.tickets, id)
	return nil
}

func (r *ticketRepository) CountByReporter(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, func(t *model.Ticket) bool { return t.ReporterID == userID })
}

func (r *ticketRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return r.count(ctx, func(t *model.Ticket) bool { return t.GymnasiumID == gymID })
}

func (r *ticketRepository) CountOpenByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	return r.count(ctx, func(t *model.Ticket) bool { return t.Court() == court && t.Status != model.TicketResolved })
}

func (r *ticketRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return r.rewrite(ctx, func(t *model.Ticket) bool {
		if t.ReporterID != userID {
			return false
		}
		t.ReporterInfo = snap
		return true
	})
}

func (r *ticketRepository) RenameGymnasium(ctx context.Context, gymID int, name string) (int64, error) {
	return r.rewrite(ctx, func(t *model.Ticket) bool {
		if t.GymnasiumID != gymID {
			return false
		}
		t.LocationInfo.GymnasiumName = name
		return true
	})
}

func (r *ticketRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	return r.rewrite(ctx, func(t *model.Ticket) bool {
		if t.GymnasiumID != gymID || t.CourtNumber != from {
			return false
		}
		t.CourtNumber = to
		return true
	})
}

func (r *ticketRepository) SetCourtStatus(context.Context, model.CourtRef, model.CourtStatus) (int64, error) {
	return 0, nil
}

func (r *ticketRepository) count(ctx context.Context, keep func(t *model.Ticket) bool) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for _, t := range r.db.data.tickets {
		if keep(&t) {
			n++
		}
	}
	return n, nil
}

func (r *ticketRepository) rewrite(ctx context.Context, fn func(t *model.Ticket) bool) (int64, error) {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for id, t := range r.db.data.tickets {
		if fn(&t) {
			r.db.data.tickets[id] = t
			n++
		}
	}
	return n, nil
}

func matchTicket(t *model.Ticket, f model.TicketFilter) bool {
	if f.ReporterID != "" && t.ReporterID != f.ReporterID {
		return false
	}
	if f.GymnasiumID > 0 && t.GymnasiumID != f.GymnasiumID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

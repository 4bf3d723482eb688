package memory

import (
	"context"
	"slices"
	"strings"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type eventRepository struct {
	db *DB
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.events[event.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.db.data.events[event.ID] = cloneEvent(*event)
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, ok := r.db.data.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneEvent(e)
	return &c, nil
}

func (r *eventRepository) FindAll(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return page(r.match(func(e *model.Event) bool { return matchEvent(e, filter) }), filter.Limit, filter.Offset), nil
}

func (r *eventRepository) Count(ctx context.Context, filter model.EventFilter) (int64, error) {
	return r.count(ctx, func(e *model.Event) bool { return matchEvent(e, filter) })
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	stored, ok := r.db.data.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	organizer := stored.OrganizerInfo
	stored = cloneEvent(*event)
	stored.OrganizerInfo = organizer
	r.db.data.events[event.ID] = stored
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.events[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.events, id)
	return nil
}

func (r *eventRepository) FindByCourt(ctx context.Context, court model.CourtRef) ([]*model.Event, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.match(func(e *model.Event) bool { return e.Blocks(court) }), nil
}

func (r *eventRepository) CountByOrganizer(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, func(e *model.Event) bool { return e.OrganizerID == userID })
}

func (r *eventRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return r.count(ctx, func(e *model.Event) bool {
		return slices.ContainsFunc(e.BlockedCourts, func(c model.CourtRef) bool { return c.GymnasiumID == gymID })
	})
}

func (r *eventRepository) CountByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	return r.count(ctx, func(e *model.Event) bool { return e.Blocks(court) })
}

func (r *eventRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return r.rewrite(ctx, func(e *model.Event) bool {
		if e.OrganizerID != userID {
			return false
		}
		e.OrganizerInfo = snap
		return true
	})
}

func (r *eventRepository) RenameGymnasium(context.Context, int, string) (int64, error) {
	return 0, nil
}

func (r *eventRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	old := model.CourtRef{GymnasiumID: gymID, CourtNumber: from}
	return r.rewrite(ctx, func(e *model.Event) bool {
		changed := false
		for i := range e.BlockedCourts {
			if e.BlockedCourts[i] == old {
				e.BlockedCourts[i].CourtNumber = to
				changed = true
			}
		}
		return changed
	})
}

func (r *eventRepository) SetCourtStatus(context.Context, model.CourtRef, model.CourtStatus) (int64, error) {
	return 0, nil
}

func (r *eventRepository) match(keep func(e *model.Event) bool) []*model.Event {
	events := []*model.Event{}
	for _, e := range r.db.data.events {
		if !keep(&e) {
			continue
		}
		c := cloneEvent(e)
		events = append(events, &c)
	}
	slices.SortFunc(events, func(a, b *model.Event) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return events
}

func (r *eventRepository) count(ctx context.Context, keep func(e *model.Event) bool) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for _, e := range r.db.data.events {
		if keep(&e) {
			n++
		}
	}
	return n, nil
}

func (r *eventRepository) rewrite(ctx context.Context, fn func(e *model.Event) bool) (int64, error) {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for id, e := range r.db.data.events {
		c := cloneEvent(e)
		if fn(&c) {
			r.db.data.events[id] = c
			n++
		}
	}
	return n, nil
}

func matchEvent(e *model.Event, f model.EventFilter) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Court != nil && !e.Blocks(*f.Court) {
		return false
	}
	return true
}

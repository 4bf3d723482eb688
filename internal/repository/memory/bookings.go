package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type bookingRepository struct {
	db *DB
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.bookings[booking.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.db.data.bookings[booking.ID] = cloneBooking(*booking)
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, ok := r.db.data.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneBooking(b)
	return &c, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return page(r.match(func(b *model.Booking) bool { return matchBooking(b, filter) }), filter.Limit, filter.Offset), nil
}

func (r *bookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	return r.count(ctx, func(b *model.Booking) bool { return matchBooking(b, filter) })
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	stored, ok := r.db.data.bookings[booking.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = booking.Status
	stored.Reason = booking.Reason
	stored.OperatorID = booking.OperatorID
	stored.EquipmentHeld = booking.EquipmentHeld
	stored.UpdatedAt = booking.UpdatedAt
	r.db.data.bookings[booking.ID] = stored
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.bookings[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.bookings, id)
	return nil
}

func (r *bookingRepository) FindConfirmedOverlapping(ctx context.Context, court model.CourtRef, start, end time.Time) ([]*model.Booking, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.match(func(b *model.Booking) bool {
		return b.Court() == court &&
			b.Status == model.BookingConfirmed &&
			b.Start.Before(end) && b.End.After(start)
	}), nil
}

func (r *bookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, func(b *model.Booking) bool {
		return b.RequesterID == userID || b.OperatorID == userID
	})
}

func (r *bookingRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return r.count(ctx, func(b *model.Booking) bool { return b.GymnasiumID == gymID })
}

func (r *bookingRepository) CountActiveByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	return r.count(ctx, func(b *model.Booking) bool { return b.Court() == court && b.Status.Active() })
}

func (r *bookingRepository) CountHoldingEquipment(ctx context.Context, gymID, equipmentID int) (int64, error) {
	return r.count(ctx, func(b *model.Booking) bool {
		return b.GymnasiumID == gymID && b.EquipmentHeld &&
			slices.ContainsFunc(b.Equipment, func(l model.EquipmentLine) bool { return l.EquipmentID == equipmentID })
	})
}

func (r *bookingRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return r.rewrite(ctx, func(b *model.Booking) bool {
		if b.RequesterID != userID {
			return false
		}
		b.RequesterInfo = snap
		return true
	})
}

func (r *bookingRepository) RenameGymnasium(ctx context.Context, gymID int, name string) (int64, error) {
	return r.rewrite(ctx, func(b *model.Booking) bool {
		if b.GymnasiumID != gymID {
			return false
		}
		b.LocationInfo.GymnasiumName = name
		return true
	})
}

func (r *bookingRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	return r.rewrite(ctx, func(b *model.Booking) bool {
		if b.GymnasiumID != gymID || b.CourtNumber != from {
			return false
		}
		b.CourtNumber = to
		return true
	})
}

func (r *bookingRepository) SetCourtStatus(ctx context.Context, court model.CourtRef, status model.CourtStatus) (int64, error) {
	return r.rewrite(ctx, func(b *model.Booking) bool {
		if b.Court() != court || !b.Status.Active() {
			return false
		}
		b.LocationInfo.CourtStatus = status
		return true
	})
}

// match returns sorted copies of the bookings accepted by keep. Callers hold
// the read lock.
func (r *bookingRepository) match(keep func(b *model.Booking) bool) []*model.Booking {
	bookings := []*model.Booking{}
	for _, b := range r.db.data.bookings {
		if !keep(&b) {
			continue
		}
		c := cloneBooking(b)
		bookings = append(bookings, &c)
	}
	slices.SortFunc(bookings, func(a, b *model.Booking) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return bookings
}

func (r *bookingRepository) count(ctx context.Context, keep func(b *model.Booking) bool) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for _, b := range r.db.data.bookings {
		if keep(&b) {
			n++
		}
	}
	return n, nil
}

// rewrite applies fn to every booking and stores the ones it reports as
// changed.
func (r *bookingRepository) rewrite(ctx context.Context, fn func(b *model.Booking) bool) (int64, error) {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for id, b := range r.db.data.bookings {
		if fn(&b) {
			r.db.data.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func matchBooking(b *model.Booking, f model.BookingFilter) bool {
	if f.RequesterID != "" && b.RequesterID != f.RequesterID {
		return false
	}
	if f.GymnasiumID > 0 && b.GymnasiumID != f.GymnasiumID {
		return false
	}
	if f.CourtNumber > 0 && b.CourtNumber != f.CourtNumber {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
		return false
	}
	if f.To != nil && !b.Start.Before(*f.To) {
		return false
	}
	if f.From != nil && !b.End.After(*f.From) {
		return false
	}
	return true
}

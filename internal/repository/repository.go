// Package repository defines the storage contracts of every collection and
// their MongoDB implementation. The memory subpackage implements the same
// contracts in process.
package repository

import (
	"context"
	"time"

	mongotx "courtbook/pkg/db/mongo"
	"courtbook/pkg/model"
)

const (
	UsersCollection      = "users"
	GymnasiumsCollection = "gymnasiums"
	SportsCollection     = "sports"
	BookingsCollection   = "bookings"
	EventsCollection     = "events"
	TicketsCollection    = "tickets"
)

// Collections lists every collection in seed order.
var Collections = []string{
	UsersCollection,
	GymnasiumsCollection,
	SportsCollection,
	BookingsCollection,
	EventsCollection,
	TicketsCollection,
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByStaffID(ctx context.Context, staffID string) (*model.User, error)
	FindAll(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	Count(ctx context.Context, filter model.UserFilter) (int64, error)
	Replace(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	CountSupervisedBy(ctx context.Context, staffID string) (int64, error)
}

type GymnasiumRepository interface {
	Create(ctx context.Context, gym *model.Gymnasium) error
	FindByID(ctx context.Context, id int) (*model.Gymnasium, error)
	FindAll(ctx context.Context, page model.Page) ([]*model.Gymnasium, error)
	Count(ctx context.Context) (int64, error)
	Replace(ctx context.Context, gym *model.Gymnasium) error
	Delete(ctx context.Context, id int) error
	CountBySport(ctx context.Context, sportID int) (int64, error)

	// ReserveEquipment decrements available_quantity only when at least qty
	// units are available; otherwise it returns ErrInsufficientQuantity.
	ReserveEquipment(ctx context.Context, gymID, equipmentID, qty int) error
	// ReleaseEquipment gives qty units back, never above total_quantity.
	ReleaseEquipment(ctx context.Context, gymID, equipmentID, qty int) error
}

type SportRepository interface {
	Create(ctx context.Context, sport *model.Sport) error
	FindByID(ctx context.Context, id int) (*model.Sport, error)
	FindAll(ctx context.Context, page model.Page) ([]*model.Sport, error)
	Count(ctx context.Context) (int64, error)
	Replace(ctx context.Context, sport *model.Sport) error
	Delete(ctx context.Context, id int) error
}

// SnapshotWriter rewrites the denormalized copies held by a collection. Each
// method touches only snapshot sub-fields (or the court reference when a court
// is renumbered) and returns the number of matched documents.
type SnapshotWriter interface {
	RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error)
	RenameGymnasium(ctx context.Context, gymID int, name string) (int64, error)
	RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error)
	SetCourtStatus(ctx context.Context, court model.CourtRef, status model.CourtStatus) (int64, error)
}

type BookingRepository interface {
	SnapshotWriter

	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	// Update writes the mutable booking fields: status, reason, operator,
	// equipment hold flag and updated_at.
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error

	FindConfirmedOverlapping(ctx context.Context, court model.CourtRef, start, end time.Time) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByGymnasium(ctx context.Context, gymID int) (int64, error)
	CountActiveByCourt(ctx context.Context, court model.CourtRef) (int64, error)
	CountHoldingEquipment(ctx context.Context, gymID, equipmentID int) (int64, error)
}

type EventRepository interface {
	SnapshotWriter

	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindAll(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)
	Count(ctx context.Context, filter model.EventFilter) (int64, error)
	// Update writes name, description and updated_at.
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error

	FindByCourt(ctx context.Context, court model.CourtRef) ([]*model.Event, error)
	CountByOrganizer(ctx context.Context, userID string) (int64, error)
	CountByGymnasium(ctx context.Context, gymID int) (int64, error)
	CountByCourt(ctx context.Context, court model.CourtRef) (int64, error)
}

type TicketRepository interface {
	SnapshotWriter

	Create(ctx context.Context, ticket *model.Ticket) error
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	FindAll(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
	Count(ctx context.Context, filter model.TicketFilter) (int64, error)
	// Update writes description, status and updated_at.
	Update(ctx context.Context, ticket *model.Ticket) error
	Delete(ctx context.Context, id string) error

	CountByReporter(ctx context.Context, userID string) (int64, error)
	CountByGymnasium(ctx context.Context, gymID int) (int64, error)
	CountOpenByCourt(ctx context.Context, court model.CourtRef) (int64, error)
}

// Dropper empties every collection. Only the seed job uses it.
type Dropper interface {
	DropAll(ctx context.Context) error
}

// Repositories bundles one backend. Tx runs multi-document writes atomically;
// repository calls made with the context it hands out join the transaction.
type Repositories struct {
	Users      UserRepository
	Gymnasiums GymnasiumRepository
	Sports     SportRepository
	Bookings   BookingRepository
	Events     EventRepository
	Tickets    TicketRepository
	Tx         mongotx.TransactionManager
	Dropper    Dropper
}

// SnapshotTarget names a collection holding snapshot copies.
type SnapshotTarget struct {
	Collection string
	Writer     SnapshotWriter
}

// SnapshotTargets returns the collections propagation must visit, in order.
func (r *Repositories) SnapshotTargets() []SnapshotTarget {
	return []SnapshotTarget{
		{Collection: BookingsCollection, Writer: r.Bookings},
		{Collection: EventsCollection, Writer: r.Events},
		{Collection: TicketsCollection, Writer: r.Tickets},
	}
}

// Package memory keeps every collection in process. Writes are serialized;
// ExecuteTransaction snapshots the data and restores it when the callback
// fails, so a failed multi-document write leaves nothing behind. Reads made
// outside a transaction wait for any open transaction to finish, so they
// never see uncommitted writes.
package memory

import (
	"context"
	"sync"

	"courtbook/internal/repository"
	mongotx "courtbook/pkg/db/mongo"
	"courtbook/pkg/model"
)

type txKey struct{}

type data struct {
	users      map[string]model.User
	gymnasiums map[int]model.Gymnasium
	sports     map[int]model.Sport
	bookings   map[string]model.Booking
	events     map[string]model.Event
	tickets    map[string]model.Ticket
}

func newData() data {
	return data{
		users:      map[string]model.User{},
		gymnasiums: map[int]model.Gymnasium{},
		sports:     map[int]model.Sport{},
		bookings:   map[string]model.Booking{},
		events:     map[string]model.Event{},
		tickets:    map[string]model.Ticket{},
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range d.gymnasiums {
		c.gymnasiums[k] = cloneGymnasium(v)
	}
	for k, v := range d.sports {
		c.sports[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = cloneBooking(v)
	}
	for k, v := range d.events {
		c.events[k] = cloneEvent(v)
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	return c
}

// DB is the shared state behind all in-memory repositories.
type DB struct {
	// txMu serializes writers: a transaction holds it for its whole callback,
	// a standalone write for the single operation. Standalone reads share it.
	txMu sync.RWMutex
	mu   sync.RWMutex
	data data
}

func NewDB() *DB {
	return &DB{data: newData()}
}

// NewRepositories returns every collection backed by one fresh DB.
func NewRepositories() *repository.Repositories {
	return NewDB().Repositories()
}

func (db *DB) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:      &userRepository{db: db},
		Gymnasiums: &gymnasiumRepository{db: db},
		Sports:     &sportRepository{db: db},
		Bookings:   &bookingRepository{db: db},
		Events:     &eventRepository{db: db},
		Tickets:    &ticketRepository{db: db},
		Tx:         db,
		Dropper:    db,
	}
}

var _ mongotx.TransactionManager = (*DB)(nil)

func (db *DB) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	saved := db.data.clone()
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.data = saved
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) DropAll(ctx context.Context) error {
	unlock, err := db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	db.data = newData()
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write takes the writer locks appropriate for ctx and returns the release
// function.
func (db *DB) write(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inTx(ctx) {
		db.mu.Lock()
		return db.mu.Unlock, nil
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}, nil
}

func (db *DB) read(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inTx(ctx) {
		db.mu.RLock()
		return db.mu.RUnlock, nil
	}
	db.txMu.RLock()
	db.mu.RLock()
	return func() {
		db.mu.RUnlock()
		db.txMu.RUnlock()
	}, nil
}

// page applies offset and limit to an already sorted slice.
func page[T any](items []T, limit int, offset int64) []T {
	if offset > 0 {
		if offset >= int64(len(items)) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

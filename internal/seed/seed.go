// Package seed resets a database to the reference data set.
package seed

import (
	"context"
	"errors"
	"fmt"

	"courtbook/internal/repository"
	"courtbook/internal/validator"
	"courtbook/pkg/config"
	"courtbook/pkg/logger"
	"courtbook/pkg/secret"
)

type Seeder struct {
	repos     *repository.Repositories
	validator *validator.Validator
	cfg       *config.Config
	log       *logger.Logger
}

func New(repos *repository.Repositories, v *validator.Validator, cfg *config.Config) *Seeder {
	return &Seeder{
		repos:     repos,
		validator: v,
		cfg:       cfg,
		log:       cfg.Log.Component("seed"),
	}
}

// Summary counts the inserted documents per collection.
type Summary map[string]int

// Run drops every collection and inserts data in the order users,
// gymnasiums, sports, bookings, events, tickets. Every document is validated
// before the first insert, and the inserts share one transaction, so a
// failure leaves the collections empty.
func (s *Seeder) Run(ctx context.Context, data *Data) (Summary, error) {
	if s.repos.Dropper == nil {
		return nil, errors.New("backend cannot drop collections")
	}

	if err := s.prepare(data); err != nil {
		return nil, err
	}

	if err := s.repos.Dropper.DropAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to drop collections: %w", err)
	}
	s.log.Info("Collections dropped", "collections", repository.Collections)

	summary := Summary{}
	err := s.repos.Tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		for _, u := range data.Users {
			if err := s.repos.Users.Create(ctx, u); err != nil {
				return insertError(repository.UsersCollection, u.NationalID, err)
			}
			summary[repository.UsersCollection]++
		}
		for _, g := range data.Gymnasiums {
			if err := s.repos.Gymnasiums.Create(ctx, g); err != nil {
				return insertError(repository.GymnasiumsCollection, g.ID, err)
			}
			summary[repository.GymnasiumsCollection]++
		}
		for _, sp := range data.Sports {
			if err := s.repos.Sports.Create(ctx, sp); err != nil {
				return insertError(repository.SportsCollection, sp.ID, err)
			}
			summary[repository.SportsCollection]++
		}
		for _, b := range data.Bookings {
			if err := s.repos.Bookings.Create(ctx, b); err != nil {
				return insertError(repository.BookingsCollection, b.ID, err)
			}
			summary[repository.BookingsCollection]++
		}
		for _, e := range data.Events {
			if err := s.repos.Events.Create(ctx, e); err != nil {
				return insertError(repository.EventsCollection, e.ID, err)
			}
			summary[repository.EventsCollection]++
		}
		for _, t := range data.Tickets {
			if err := s.repos.Tickets.Create(ctx, t); err != nil {
				return insertError(repository.TicketsCollection, t.ID, err)
			}
			summary[repository.TicketsCollection]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range repository.Collections {
		s.log.Info("Collection seeded", "collection", name, "documents", summary[name])
	}
	return summary, nil
}

// prepare hashes credentials and validates every document.
func (s *Seeder) prepare(data *Data) error {
	for _, u := range data.Users {
		if u.Password != "" {
			hash, err := secret.Hash(u.Password, s.cfg.BcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash credential of user %s: %w", u.NationalID, err)
			}
			u.PasswordHash = hash
			u.Password = ""
		}
		if err := s.validator.ValidateUser(u); err != nil {
			return invalid(repository.UsersCollection, u.NationalID, err)
		}
	}
	for _, g := range data.Gymnasiums {
		if err := s.validator.ValidateGymnasium(g); err != nil {
			return invalid(repository.GymnasiumsCollection, g.ID, err)
		}
	}
	for _, sp := range data.Sports {
		if err := s.validator.ValidateSport(sp); err != nil {
			return invalid(repository.SportsCollection, sp.ID, err)
		}
	}
	for _, b := range data.Bookings {
		if err := s.validator.ValidateBooking(b); err != nil {
			return invalid(repository.BookingsCollection, b.ID, err)
		}
	}
	for _, e := range data.Events {
		if err := s.validator.ValidateEvent(e); err != nil {
			return invalid(repository.EventsCollection, e.ID, err)
		}
	}
	for _, t := range data.Tickets {
		if err := s.validator.ValidateTicket(t); err != nil {
			return invalid(repository.TicketsCollection, t.ID, err)
		}
	}
	return nil
}

func invalid(collection string, key any, err error) error {
	return fmt.Errorf("invalid %s document %v: %w", collection, key, err)
}

func insertError(collection string, key any, err error) error {
	return fmt.Errorf("failed to insert %s document %v: %w", collection, key, err)
}

// Package store assembles the services of one backend behind a single value.
package store

import (
	"fmt"

	"courtbook/internal/lock"
	"courtbook/internal/notify"
	"courtbook/internal/repository"
	"courtbook/internal/repository/memory"
	"courtbook/internal/service"
	"courtbook/internal/validator"
	"courtbook/pkg/config"
	kafka_config "courtbook/pkg/kafka/config"
)

type Store struct {
	Users      service.UserService
	Sports     service.SportService
	Gymnasiums service.GymnasiumService
	Bookings   service.BookingService
	Events     service.EventService
	Tickets    service.TicketService

	Repos *repository.Repositories

	cfg       *config.Config
	publisher notify.Publisher
}

// New connects the backends named by cfg and builds every service on top of
// them. Connection failures are fatal, as in the rest of the configuration
// layer; wiring failures are returned.
func New(cfg *config.Config) (*Store, error) {
	var repos *repository.Repositories
	switch cfg.StoreBackend {
	case config.BackendMongo:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		repos = repository.NewMongoRepositories(cfg)
	case config.BackendMemory:
		repos = memory.NewRepositories()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	locker, err := newLocker(cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}

	cfg.Log.Info("Store initialized",
		"store_backend", cfg.StoreBackend,
		"lock_backend", cfg.LockBackend,
		"kafka_enabled", cfg.KafkaEnabled,
	)
	return NewWithRepositories(cfg, repos, locker, publisher), nil
}

// NewWithRepositories builds the services over already constructed
// repositories. A nil publisher drops every event.
func NewWithRepositories(cfg *config.Config, repos *repository.Repositories, locker lock.Locker, publisher notify.Publisher) *Store {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	d := service.Deps{
		Repos:     repos,
		Validator: validator.New(cfg.Log),
		Locker:    locker,
		Publisher: publisher,
		Cfg:       cfg,
	}

	return &Store{
		Users:      service.NewUserService(d),
		Sports:     service.NewSportService(d),
		Gymnasiums: service.NewGymnasiumService(d),
		Bookings:   service.NewBookingService(d),
		Events:     service.NewEventService(d),
		Tickets:    service.NewTicketService(d),
		Repos:      repos,
		cfg:        cfg,
		publisher:  publisher,
	}
}

func newLocker(cfg *config.Config) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.LockLocal:
		return lock.NewLocal(cfg.LockWait), nil
	case config.LockMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("mongo lock backend requires a mongo connection")
		}
		db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
		return lock.NewMongo(db, cfg.LockTTL, cfg.LockWait, cfg.Log.Component("lock")), nil
	case config.LockRedis:
		if cfg.Client.Redis == nil {
			cfg.SetRedis()
		}
		return lock.NewRedis(cfg.Client.Redis, cfg.LockTTL, cfg.LockWait, cfg.Log.Component("lock")), nil
	}
	return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
}

func newPublisher(cfg *config.Config) (notify.Publisher, error) {
	if !cfg.KafkaEnabled {
		return notify.Nop{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	return notify.NewKafka(kafkaCfg, cfg.KafkaTopic, cfg.KafkaDLQTopic, cfg.Log.Component("notify"))
}

// Close flushes the event publisher and disconnects every client.
func (s *Store) Close() error {
	err := s.publisher.Close()
	if err != nil {
		s.cfg.Log.Error("Failed to close event publisher", "error", err)
	}
	s.cfg.GracefulShutdown()
	return err
}

package main

import (
	"context"
	"time"

	"courtbook/internal/seed"
	"courtbook/internal/store"
	"courtbook/internal/validator"
	"courtbook/pkg/config"
)

const JobName = "seed"

func main() {
	cfg := config.Load(JobName)
	cfg.Log.Info("Starting seed job", "database", cfg.MongoDatabaseName)

	s, err := store.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize store", "error", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seeder := seed.New(s.Repos, validator.New(cfg.Log), cfg)
	summary, err := seeder.Run(ctx, seed.Documents(time.Now()))
	if err != nil {
		cfg.Log.Fatal("Seed failed", "error", err)
	}

	cfg.Log.Info("Seed completed successfully", "documents", summary)
}

// Package persistence selects the storage backend for the exercise tracker.
package persistence

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
	"example.com/exercisetracker/internal/persistence/mongo"
	"example.com/exercisetracker/internal/persistence/postgres"
)

// Store is the union of repository operations plus lifecycle hooks.
type Store interface {
	domain.UserRepository
	domain.ExerciseRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open builds the store named by cfg.StoreDriver. An unreachable database is
// logged rather than returned so the HTTP surface can still come up; requests
// then fail until the store recovers.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Store, error) {
	log = log.WithField("driver", cfg.StoreDriver)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Info("using in-memory store")
		return memory.NewRepository(), nil

	case config.DriverMongo:
		repo, err := mongo.Connect(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := withTimeout(ctx, cfg, repo.Ping); err != nil {
			log.WithError(err).Error("error connecting to mongodb")
			return repo, nil
		}
		if err := withTimeout(ctx, cfg, repo.EnsureIndexes); err != nil {
			log.WithError(err).Warn("could not ensure mongodb indexes")
		}
		log.Info("connected to mongodb")
		return repo, nil

	case config.DriverPostgres:
		repo, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := withTimeout(ctx, cfg, repo.Ping); err != nil {
			log.WithError(err).Error("error connecting to postgres")
			return repo, nil
		}
		if err := withTimeout(ctx, cfg, repo.EnsureSchema); err != nil {
			log.WithError(err).Warn("could not ensure postgres schema")
		}
		log.Info("connected to postgres")
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func withTimeout(ctx context.Context, cfg config.Config, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	return fn(ctx)
}

package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"conference-booking/config"
	"conference-booking/model"
)

// Open builds the store selected by cfg.StoreDriver and wraps it with the
// redis bookings cache when REDIS_ADDR is configured.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.StoreDriver {
	case config.StoreLocal:
		store, err = NewLocalStore(cfg.LocalDBPath)
	case config.StoreMongo:
		connString, secretErr := config.GetSecret("MONGODB_CONNSTRING")
		if secretErr != nil {
			return nil, fmt.Errorf("cannot find connection string for DB in the environment: %w", secretErr)
		}
		store, err = NewMongoStore(ctx, connString, cfg.MongoDatabase)
	case config.StorePostgres:
		store, err = NewPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.StoreDriver).Info("store opened")

	if cfg.RedisAddr == "" {
		return store, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis is not reachable, bookings cache will fall through to the store")
	}
	return NewCachedStore(store, rdb, cfg.CacheTTL, log), nil
}

// Seed makes sure the configured conference exists and, when an admin
// password is configured, stores the admin account with a bcrypt hash.
func Seed(ctx context.Context, store Store, cfg *config.Config, log *logrus.Logger) (model.Conference, error) {
	conf, created, err := store.EnsureConference(ctx, cfg.ConferenceName, cfg.ConferenceTickets)
	if err != nil {
		return model.Conference{}, fmt.Errorf("error creating/finding conference: %w", err)
	}

	fields := logrus.Fields{"conference": conf.Name, "conference_id": conf.ID}
	if created {
		log.WithFields(fields).Info("created new conference")
	} else {
		log.WithFields(fields).Info("found existing conference")
	}

	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD is not set, admin endpoints are unreachable")
		return conf, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return model.Conference{}, fmt.Errorf("cannot hash admin password: %w", err)
	}
	err = store.SaveUserData(ctx, model.UserData{
		Login:          cfg.AdminLogin,
		HashedPassword: string(hash),
		Role:           model.RoleAdmin,
	})
	if err != nil {
		return model.Conference{}, err
	}

	return conf, nil
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"conference-booking/model"
)

const CacheKeyBookingsList = "booking:bookings:list"

// CachedStore serves ListBookings from redis and drops the cached list on
// every write that can change it. Redis failures are logged and the wrapped
// store is used directly.
type CachedStore struct {
	Store
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

func NewCachedStore(store Store, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedStore {
	return &CachedStore{Store: store, rdb: rdb, ttl: ttl, log: log}
}

func (s *CachedStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	cached, err := s.rdb.Get(ctx, CacheKeyBookingsList).Bytes()
	switch {
	case err == nil:
		var bookings []model.Booking
		if jsonErr := json.Unmarshal(cached, &bookings); jsonErr == nil {
			return bookings, nil
		}
		s.log.WithField("key", CacheKeyBookingsList).Warn("dropping undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		s.log.WithError(err).Warn("bookings cache read failed")
	}

	bookings, err := s.Store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(bookings); jsonErr == nil {
		if setErr := s.rdb.Set(ctx, CacheKeyBookingsList, payload, s.ttl).Err(); setErr != nil {
			s.log.WithError(setErr).Warn("bookings cache write failed")
		}
	}
	return bookings, nil
}

func (s *CachedStore) BookTickets(ctx context.Context, conferenceID uint, req model.BookingRequest) (model.Booking, error) {
	booking, err := s.Store.BookTickets(ctx, conferenceID, req)
	if err != nil {
		return model.Booking{}, err
	}
	s.invalidate(ctx)
	return booking, nil
}

func (s *CachedStore) UpdateTotalTickets(ctx context.Context, id uint, totalTickets uint) (model.Conference, error) {
	conf, err := s.Store.UpdateTotalTickets(ctx, id, totalTickets)
	if err != nil {
		return model.Conference{}, err
	}
	s.invalidate(ctx)
	return conf, nil
}

func (s *CachedStore) Close(ctx context.Context) error {
	cacheErr := s.rdb.Close()
	if err := s.Store.Close(ctx); err != nil {
		return err
	}
	return cacheErr
}

func (s *CachedStore) invalidate(ctx context.Context) {
	if err := s.rdb.Del(ctx, CacheKeyBookingsList).Err(); err != nil {
		s.log.WithError(err).Warn("bookings cache invalidation failed")
	}
}

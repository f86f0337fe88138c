package database

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-booking/config"
	"conference-booking/model"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// unreachableRedis points at a port nothing listens on, so every command fails fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedStoreFallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	store := NewCachedStore(newLocalStore(t), unreachableRedis(), time.Minute, quietLogger())
	t.Cleanup(func() { _ = store.Close(ctx) })

	conf, _, err := store.EnsureConference(ctx, "Go Conference", 50)
	require.NoError(t, err)

	_, err = store.BookTickets(ctx, conf.ID, model.BookingRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Tickets: 1,
	})
	require.NoError(t, err)

	bookings, err := store.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Ada", bookings[0].FirstName)

	conf, err = store.UpdateTotalTickets(ctx, conf.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, uint(59), conf.RemainingTickets)
}

func TestCachedStoreWithRedis(t *testing.T) {
	addr := testRedisAddr(t)
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Del(ctx, CacheKeyBookingsList).Err())

	inner := newLocalStore(t)
	store := NewCachedStore(inner, rdb, time.Minute, quietLogger())
	t.Cleanup(func() { _ = store.Close(ctx) })

	conf, _, err := store.EnsureConference(ctx, "Go Conference", 50)
	require.NoError(t, err)

	bookings, err := store.ListBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	cached, err := rdb.Exists(ctx, CacheKeyBookingsList).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached)

	_, err = store.BookTickets(ctx, conf.ID, model.BookingRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Tickets: 1,
	})
	require.NoError(t, err)

	cached, err = rdb.Exists(ctx, CacheKeyBookingsList).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), cached, "booking must drop the cached list")

	bookings, err = store.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func testRedisAddr(t *testing.T) string {
	t.Helper()
	addr, err := config.GetSecret("TEST_REDIS_ADDR")
	if err != nil {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	return addr
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)
	cfg := &config.Config{
		ConferenceName:    "Go Conference",
		ConferenceTickets: 50,
		AdminLogin:        "admin",
		AdminPassword:     "admin123",
	}

	conf, err := Seed(ctx, store, cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Go Conference", conf.Name)
	assert.Equal(t, uint(50), conf.RemainingTickets)

	user, err := store.GetUserData(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.NotEqual(t, "admin123", user.HashedPassword)

	again, err := Seed(ctx, store, cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, conf.ID, again.ID)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "cassandra"}, quietLogger())
	assert.EqualError(t, err, `unknown store driver "cassandra"`)
}

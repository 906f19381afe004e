package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/estimate"
	"hotel-capacity/internal/errors"
)

func sampleEstimate(rooms int) *estimate.Estimate {
	levels := 5
	return &estimate.Estimate{
		Variant:        estimate.VariantSite,
		SiteName:       "Lot 7",
		LandAreaSource: estimate.LandAreaFromDataset,
		Input: capacity.Input{
			LandAreaSqm:      1200,
			PlotRatio:        2.5,
			EfficiencyFactor: 0.8,
			AvgRoomSizeSqm:   23,
			HeightLimitM:     capacity.Float(28),
		},
		Result: capacity.Result{
			GrossFloorAreaSqm: decimal.NewFromInt(3000),
			NetFloorAreaSqm:   decimal.NewFromInt(2400),
			MaxLevels:         &levels,
			EstimatedMaxRooms: rooms,
		},
		StoreyHeightM: 3.5,
		CalculatedAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func setupRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown session has no estimate")

	require.NoError(t, store.Put(ctx, "abc", sampleEstimate(104)))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 104, got.Result.EstimatedMaxRooms)

	// a recalculation replaces the previous estimate
	require.NoError(t, store.Put(ctx, "abc", sampleEstimate(90)))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Result.EstimatedMaxRooms)

	// sessions are independent
	other, err := store.Get(ctx, "xyz")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.Drop(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "abc", sampleEstimate(104)))

	now = now.Add(59 * time.Minute)
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got, "expired session should be gone")
}

func TestValidateID(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for _, id := range []string{"", "   ", strings.Repeat("x", 129)} {
		err := store.Put(ctx, id, sampleEstimate(1))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.TypeValidation))

		_, err = store.Get(ctx, id)
		assert.Error(t, err)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedis(t, time.Hour)

	require.NoError(t, store.Ping(ctx))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleEstimate(104)
	require.NoError(t, store.Put(ctx, "abc", want))
	assert.True(t, mr.Exists("hotelcap:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("hotelcap:session:abc"))

	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.SiteName, got.SiteName)
	assert.Equal(t, want.Variant, got.Variant)
	assert.Equal(t, 104, got.Result.EstimatedMaxRooms)
	assert.Equal(t, "3000.00", got.Result.GrossFloorAreaSqm.StringFixed(2))
	require.NotNil(t, got.Result.MaxLevels)
	assert.Equal(t, 5, *got.Result.MaxLevels)
	require.NotNil(t, got.Input.HeightLimitM)
	assert.Equal(t, 28.0, *got.Input.HeightLimitM)
	assert.True(t, want.CalculatedAt.Equal(got.CalculatedAt))
}

func TestRedisStoreExpiryAndDrop(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedis(t, time.Minute)

	require.NoError(t, store.Put(ctx, "abc", sampleEstimate(104)))
	require.NoError(t, store.Put(ctx, "xyz", sampleEstimate(50)))

	mr.FastForward(2 * time.Minute)
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(ctx, "xyz", sampleEstimate(50)))
	require.NoError(t, store.Drop(ctx, "xyz"))
	assert.False(t, mr.Exists("hotelcap:session:xyz"))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedis(t, 0)

	require.NoError(t, mr.Set("hotelcap:session:bad", "{not json"))
	_, err := store.Get(ctx, "bad")
	assert.Error(t, err)
}

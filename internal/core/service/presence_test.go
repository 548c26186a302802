package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMarkerTTL  = time.Minute
	testSweepEvery = 5 * time.Millisecond
)

func newPresence(cache *memCache) *service.PresenceService {
	return service.NewPresenceService(cache, testMarkerTTL, testSweepEvery)
}

func TestPresenceService_Touch(t *testing.T) {
	t.Run("FirstTouchIncrementsOnce", func(t *testing.T) {
		cache := newMemCache()
		p := newPresence(cache)

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c1"))

		n, err := p.Count(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("CountsDistinctCustomers", func(t *testing.T) {
		p := newPresence(newMemCache())

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c2"))

		n, err := p.Count(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("RenewsMarkerTTL", func(t *testing.T) {
		cache := newMemCache()
		p := newPresence(cache)

		require.NoError(t, p.Touch(t.Context(), "c1"))
		assert.Equal(t, testMarkerTTL, cache.ttl("presence:active:c1"))
	})
}

func TestPresenceService_Leave(t *testing.T) {
	t.Run("DecrementsOnDeparture", func(t *testing.T) {
		p := newPresence(newMemCache())

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c2"))
		require.NoError(t, p.Leave(t.Context(), "c1"))

		n, err := p.Count(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("UnknownCustomerIsNoop", func(t *testing.T) {
		p := newPresence(newMemCache())

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Leave(t.Context(), "ghost"))

		n, err := p.Count(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestPresenceService_Sweep(t *testing.T) {
	t.Run("ConvergesAfterMarkerExpiry", func(t *testing.T) {
		cache := newMemCache()
		p := newPresence(cache)

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c2"))

		// a crashed session stops renewing and its marker expires
		cache.drop("presence:active:c1")

		var wg sync.WaitGroup
		wg.Add(1)
		go p.Run(t.Context(), &wg)

		require.Eventually(t, func() bool {
			n, err := p.Count(t.Context())
			return err == nil && n == 1
		}, time.Second, testSweepEvery)
	})
}

func TestPresenceService_Subscribe(t *testing.T) {
	t.Run("PushesEveryChange", func(t *testing.T) {
		p := newPresence(newMemCache())

		counts, err := p.Subscribe(t.Context())
		require.NoError(t, err)

		require.NoError(t, p.Touch(t.Context(), "c1"))
		require.NoError(t, p.Touch(t.Context(), "c2"))

		assert.EqualValues(t, 1, <-counts)
		assert.EqualValues(t, 2, <-counts)
	})
}

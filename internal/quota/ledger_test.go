package quota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/store/memory"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
}

func newLedger(t *testing.T) *quota.Ledger {
	t.Helper()
	st := memory.New(quota.DefaultLimits())
	return quota.NewLedger(st, zerolog.Nop()).WithClock(fixedNow)
}

func TestConcurrentConsumeNeverOverConsumes(t *testing.T) {
	ledger := newLedger(t)

	const k = 20
	decisions := make([]model.QuotaDecision, k)

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dec, err := ledger.Consume(context.Background(), "user-1")
			assert.NoError(t, err)
			decisions[i] = dec
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, dec := range decisions {
		if dec.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed, "exactly the free limit may succeed")

	rec, err := ledger.Inspect(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.PeriodCount, "counter never exceeds the limit")
}

func TestConsumeIsolatesUsers(t *testing.T) {
	ledger := newLedger(t)

	for i := 0; i < 3; i++ {
		dec, err := ledger.Consume(context.Background(), "user-a")
		require.NoError(t, err)
		require.True(t, dec.Allowed)
	}

	dec, err := ledger.Consume(context.Background(), "user-b")
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "another user's exhaustion is irrelevant")
	assert.Equal(t, 2, dec.Remaining)
}

func TestDenialCarriesResetMetadata(t *testing.T) {
	ledger := newLedger(t)

	for i := 0; i < 3; i++ {
		_, err := ledger.Consume(context.Background(), "u")
		require.NoError(t, err)
	}

	dec, err := ledger.Consume(context.Background(), "u")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 0, dec.Remaining)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), dec.ResetsAt)
	assert.Equal(t, model.TierFree, dec.Tier)
}

func TestProTierBypassesCounting(t *testing.T) {
	st := memory.New(quota.DefaultLimits())
	ledger := quota.NewLedger(st, zerolog.Nop()).WithClock(fixedNow)
	require.NoError(t, ledger.SetTier(context.Background(), "pro-user", model.TierPro))

	for i := 0; i < 10; i++ {
		dec, err := ledger.Consume(context.Background(), "pro-user")
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		assert.Equal(t, quota.Unlimited, dec.Remaining)
	}
}

func TestViewForUnknownUser(t *testing.T) {
	ledger := newLedger(t)

	view, err := ledger.ViewFor(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, view.Tier)
	assert.Equal(t, 0, view.Used)
	assert.Equal(t, 3, view.Remaining)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), view.ResetsAt)
}

func TestViewForNeverConsumes(t *testing.T) {
	ledger := newLedger(t)

	_, err := ledger.Consume(context.Background(), "u")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		view, err := ledger.ViewFor(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, 1, view.Used)
		assert.Equal(t, 2, view.Remaining)
	}
}

func TestViewForTreatsLapsedPeriodAsFresh(t *testing.T) {
	st := memory.New(quota.DefaultLimits())
	ledger := quota.NewLedger(st, zerolog.Nop()).WithClock(fixedNow)

	for i := 0; i < 3; i++ {
		_, err := ledger.Consume(context.Background(), "u")
		require.NoError(t, err)
	}

	// Advance past the recorded reset instant.
	ledger.WithClock(func() time.Time {
		return time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	})

	view, err := ledger.ViewFor(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Used)
	assert.Equal(t, 3, view.Remaining)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), view.ResetsAt)
}

func TestSetTierValidates(t *testing.T) {
	ledger := newLedger(t)
	err := ledger.SetTier(context.Background(), "u", model.Tier("platinum"))
	assert.ErrorIs(t, err, model.ErrValidation)
}

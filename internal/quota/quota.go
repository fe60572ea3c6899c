// Package quota holds the monthly-allowance decision logic. The pure
// decision lives here; atomicity comes from the store implementation
// that calls Apply inside its transaction.
package quota

import (
	"time"

	"github.com/repofit/repofit-backend/internal/model"
)

// Unlimited marks a tier without a monthly bound.
const Unlimited = -1

// Limits configures per-tier monthly allowances.
type Limits struct {
	Free int
}

// DefaultLimits is the production free-tier allowance.
func DefaultLimits() Limits { return Limits{Free: 3} }

// ForTier resolves the monthly limit for a tier. Unknown tiers are
// treated as free.
func (l Limits) ForTier(t model.Tier) int {
	if t == model.TierPro {
		return Unlimited
	}
	return l.Free
}

// NextPeriodReset returns the first instant of the next calendar month
// in UTC. Computed in UTC to avoid timezone drift between client and
// server.
func NextPeriodReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// Apply runs check-and-consume against rec and reports whether rec was
// mutated and must be persisted. The caller must hold the record
// exclusively, inside the store's transaction, so two concurrent
// consumers can never both observe room below the limit.
func Apply(rec *model.QuotaRecord, now time.Time, limits Limits) (model.QuotaDecision, bool) {
	limit := limits.ForTier(rec.Tier)
	if limit == Unlimited {
		return model.QuotaDecision{
			Allowed:   true,
			Remaining: Unlimited,
			ResetsAt:  rec.PeriodResetAt,
			Tier:      rec.Tier,
		}, false
	}

	dirty := false
	if rec.PeriodResetAt.IsZero() || !now.Before(rec.PeriodResetAt) {
		rec.PeriodCount = 0
		rec.PeriodResetAt = NextPeriodReset(now)
		dirty = true
	}

	if rec.PeriodCount >= limit {
		return model.QuotaDecision{
			Allowed:   false,
			Remaining: 0,
			ResetsAt:  rec.PeriodResetAt,
			Tier:      rec.Tier,
		}, dirty
	}

	rec.PeriodCount++
	return model.QuotaDecision{
		Allowed:   true,
		Remaining: limit - rec.PeriodCount,
		ResetsAt:  rec.PeriodResetAt,
		Tier:      rec.Tier,
	}, true
}

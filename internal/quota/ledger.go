package quota

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/store"
)

// Ledger is the application-facing quota service. Atomic semantics
// come from the store; the ledger adds clock injection and logging.
type Ledger struct {
	store  store.Store
	limits Limits
	now    func() time.Time
	log    zerolog.Logger
}

func NewLedger(s store.Store, log zerolog.Logger) *Ledger {
	return &Ledger{store: s, limits: DefaultLimits(), now: time.Now, log: log}
}

// WithClock overrides the ledger clock, for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// WithLimits overrides the per-tier allowances used by View.
func (l *Ledger) WithLimits(limits Limits) *Ledger {
	l.limits = limits
	return l
}

// Consume atomically checks and consumes one unit of the user's
// monthly allowance. Denial is a decision, not an error.
func (l *Ledger) Consume(ctx context.Context, userID string) (model.QuotaDecision, error) {
	dec, err := l.store.Quotas().Consume(ctx, userID, l.now())
	if err != nil {
		return model.QuotaDecision{}, err
	}
	if !dec.Allowed {
		l.log.Info().
			Str("user_id", userID).
			Time("resets_at", dec.ResetsAt).
			Msg("quota denied")
	}
	return *dec, nil
}

// Inspect reports the user's current quota state without consuming.
func (l *Ledger) Inspect(ctx context.Context, userID string) (*model.QuotaRecord, error) {
	return l.store.Quotas().Get(ctx, userID)
}

// View is a read-only snapshot shaped like a consume decision. A user
// with no ledger row, or whose period has lapsed, sees a full allowance.
type View struct {
	Tier      model.Tier `json:"tier"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetsAt  time.Time  `json:"resetsAt"`
}

func (l *Ledger) ViewFor(ctx context.Context, userID string) (*View, error) {
	now := l.now()

	rec, err := l.store.Quotas().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		rec = &model.QuotaRecord{
			UserID:        userID,
			Tier:          model.TierFree,
			PeriodResetAt: NextPeriodReset(now),
		}
	} else if err != nil {
		return nil, err
	}

	used := rec.PeriodCount
	resetsAt := rec.PeriodResetAt
	if !now.Before(rec.PeriodResetAt) {
		used = 0
		resetsAt = NextPeriodReset(now)
	}

	limit := l.limits.ForTier(rec.Tier)
	remaining := Unlimited
	if limit != Unlimited {
		remaining = limit - used
		if remaining < 0 {
			remaining = 0
		}
	}
	return &View{Tier: rec.Tier, Used: used, Remaining: remaining, ResetsAt: resetsAt}, nil
}

// SetTier updates the user's subscription tier.
func (l *Ledger) SetTier(ctx context.Context, userID string, tier model.Tier) error {
	if tier != model.TierFree && tier != model.TierPro {
		return model.ErrValidation
	}
	return l.store.Quotas().SetTier(ctx, userID, tier)
}

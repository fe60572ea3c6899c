// Package store defines the persistence contract for quota records and
// generation history. Implementations live under internal/store/<driver>.
package store

import (
	"context"
	"time"

	"github.com/repofit/repofit-backend/internal/model"
)

// Store exposes persistence operations required by services.
type Store interface {
	Quotas() Quotas
	Histories() Histories
	// HealthPing verifies backing-store connectivity.
	HealthPing(ctx context.Context) error
	Close() error
}

// Quotas manages per-user monthly allowances. Consume must run as a
// single atomic read-modify-write in the backing store; concurrent
// calls for the same user serialize there, never in application code.
type Quotas interface {
	Consume(ctx context.Context, userID string, now time.Time) (*model.QuotaDecision, error)
	Get(ctx context.Context, userID string) (*model.QuotaRecord, error)
	SetTier(ctx context.Context, userID string, tier model.Tier) error
}

// Histories manages generated-description records.
type Histories interface {
	Create(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error)
	List(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error)
	GetByID(ctx context.Context, userID, recordID string) (*model.HistoryRecord, error)
	Delete(ctx context.Context, userID, recordID string) error
}

// Package memory is an in-process store used by unit tests and local
// experimentation. A single mutex stands in for the database's
// transaction primitive, so Consume keeps the same serialization
// guarantee as the real drivers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/store"
)

// New constructs an empty in-memory store.
func New(limits quota.Limits) store.Store {
	s := &memStore{
		limits:  limits,
		quotas:  make(map[string]*model.QuotaRecord),
		history: make(map[string]*model.HistoryRecord),
	}
	return s
}

type memStore struct {
	mu      sync.Mutex
	limits  quota.Limits
	quotas  map[string]*model.QuotaRecord
	history map[string]*model.HistoryRecord
}

func (s *memStore) Quotas() store.Quotas                 { return (*memQuotas)(s) }
func (s *memStore) Histories() store.Histories           { return (*memHistories)(s) }
func (s *memStore) HealthPing(ctx context.Context) error { return nil }
func (s *memStore) Close() error                         { return nil }

type memQuotas memStore

func (q *memQuotas) Consume(ctx context.Context, userID string, now time.Time) (*model.QuotaDecision, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.quotas[userID]
	if !ok {
		rec = &model.QuotaRecord{UserID: userID, Tier: model.TierFree}
		q.quotas[userID] = rec
	}
	dec, _ := quota.Apply(rec, now, q.limits)
	rec.UpdateTime = now
	return &dec, nil
}

func (q *memQuotas) Get(ctx context.Context, userID string) (*model.QuotaRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.quotas[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (q *memQuotas) SetTier(ctx context.Context, userID string, tier model.Tier) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.quotas[userID]
	if !ok {
		rec = &model.QuotaRecord{UserID: userID}
		q.quotas[userID] = rec
	}
	rec.Tier = tier
	return nil
}

type memHistories memStore

func (h *memHistories) Create(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := *rec
	if out.RecordID == "" {
		out.RecordID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	h.history[out.RecordID] = &out
	cp := out
	return &cp, nil
}

func (h *memHistories) List(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []*model.HistoryRecord
	for _, rec := range h.history {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreationTime.After(out[j].CreationTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (h *memHistories) GetByID(ctx context.Context, userID, recordID string) (*model.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.history[recordID]
	if !ok || rec.UserID != userID {
		return nil, model.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (h *memHistories) Delete(ctx context.Context, userID, recordID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.history[recordID]
	if !ok || rec.UserID != userID {
		return model.ErrNotFound
	}
	delete(h.history, recordID)
	return nil
}

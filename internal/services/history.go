package services

import (
	"context"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/store"
)

// HistoryService exposes a user's generated-description records.
type HistoryService struct {
	store store.Store
}

func NewHistoryService(s store.Store) *HistoryService { return &HistoryService{store: s} }

func (s *HistoryService) List(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	return s.store.Histories().List(ctx, userID, limit)
}

func (s *HistoryService) Get(ctx context.Context, userID, recordID string) (*model.HistoryRecord, error) {
	return s.store.Histories().GetByID(ctx, userID, recordID)
}

func (s *HistoryService) Delete(ctx context.Context, userID, recordID string) error {
	return s.store.Histories().Delete(ctx, userID, recordID)
}

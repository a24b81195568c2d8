package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/codesheets-backend/internal/domain"
)

// AdvisoryStore caches per-viewer sheet progress for listing pages.
// Implementations are best effort: a miss or error falls back to recomputation.
type AdvisoryStore interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, sheetID, userID uuid.UUID) (*types.AdvisoryProgress, error)
	Put(ctx context.Context, sheetID, userID uuid.UUID, p types.AdvisoryProgress) error
	InvalidateSheet(ctx context.Context, sheetID uuid.UUID) error
}

type noopAdvisoryStore struct{}

func NewNoopAdvisoryStore() AdvisoryStore { return noopAdvisoryStore{} }

func (noopAdvisoryStore) Get(context.Context, uuid.UUID, uuid.UUID) (*types.AdvisoryProgress, error) {
	return nil, nil
}
func (noopAdvisoryStore) Put(context.Context, uuid.UUID, uuid.UUID, types.AdvisoryProgress) error {
	return nil
}
func (noopAdvisoryStore) InvalidateSheet(context.Context, uuid.UUID) error { return nil }

package repositories

import (
	"context"

	"github.com/upb/rental-portal/models"
)

// AccessEventRepository handles access audit data operations
type AccessEventRepository interface {
	// Insert inserts a new access event
	Insert(ctx context.Context, event *models.AccessEvent) error

	// ListRecent returns the newest events matching filter
	ListRecent(ctx context.Context, filter models.AccessEventFilter) ([]*models.AccessEvent, error)
}

// Package orders persists per-user order records.
package orders

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type Repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
}

// Package baskets persists per-user shopping basket entries.
package baskets

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type Repository interface {
	Add(ctx context.Context, basket *models.Basket) (*models.Basket, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Basket, error)
	Remove(ctx context.Context, userID, productID int64) error
}

// Package wishlists persists per-user wishlist entries.
package wishlists

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type Repository interface {
	Add(ctx context.Context, userID, productID int64) (*models.Wishlist, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Wishlist, error)
	Remove(ctx context.Context, userID, productID int64) error
}

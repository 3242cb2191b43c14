// Package media persists uploaded product image references.
package media

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type Repository interface {
	CreateBatch(ctx context.Context, productID int64, urls []string) ([]models.ProductMedia, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.ProductMedia, error)
}

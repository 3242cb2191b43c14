package products

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/models"
)

// UpdateParams carries the partial-update fields; nil means keep the stored
// value.
type UpdateParams struct {
	Name        *string
	Description *string
	Price       *float64
	IsActive    *bool
}

type Repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, offset, limit int) ([]*models.Product, error)
	Update(ctx context.Context, id int64, params UpdateParams, updatedByID *int64) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

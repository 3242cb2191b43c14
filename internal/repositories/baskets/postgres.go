package baskets

import (
	"context"
	"fmt"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add upserts on (user_id, product_id), accumulating quantity for repeat adds.
func (r *PostgresRepository) Add(ctx context.Context, basket *models.Basket) (*models.Basket, error) {
	query := `
		INSERT INTO baskets (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = baskets.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, quantity, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, basket.UserID, basket.ProductID, basket.Quantity).
		Scan(&basket.ID, &basket.Quantity, &basket.CreatedAt, &basket.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return basket, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Basket, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM baskets
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Basket
	for rows.Next() {
		basket := &models.Basket{}
		if err := rows.Scan(&basket.ID, &basket.UserID, &basket.ProductID,
			&basket.Quantity, &basket.CreatedAt, &basket.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, basket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM baskets WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

package orders

import (
	"context"
	"fmt"

	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (user_id, product_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, order.UserID, order.ProductID, order.Amount).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, product_id, amount, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.ProductID,
			&order.Amount, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

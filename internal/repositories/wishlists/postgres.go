package wishlists

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

// Add is idempotent - re-adding an already wished product returns the
// existing row.
func (r *PostgresRepository) Add(ctx context.Context, userID, productID int64) (*models.Wishlist, error) {
	query := `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET updated_at = now()
		RETURNING id, created_at, updated_at
	`
	entry := &models.Wishlist{UserID: userID, ProductID: productID}
	err := r.db.QueryRowContext(ctx, query, userID, productID).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Wishlist, error) {
	query := `
		SELECT id, user_id, product_id, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Wishlist
	for rows.Next() {
		entry := &models.Wishlist{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ProductID,
			&entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`, userID, productID)
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

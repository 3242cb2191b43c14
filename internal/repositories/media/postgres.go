package media

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

func (r *PostgresRepository) CreateBatch(ctx context.Context, productID int64, urls []string) ([]models.ProductMedia, error) {
	query := `
		INSERT INTO product_media (product_id, s3_url)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	result := make([]models.ProductMedia, 0, len(urls))
	for _, url := range urls {
		m := models.ProductMedia{ProductID: productID, S3URL: url}
		err := r.db.QueryRowContext(ctx, query, productID, url).
			Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID int64) ([]models.ProductMedia, error) {
	query := `
		SELECT id, product_id, s3_url, created_at, updated_at
		FROM product_media
		WHERE product_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.ProductMedia
	for rows.Next() {
		m := models.ProductMedia{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.S3URL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Package products provides the PostgreSQL-backed product catalog.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/models"
)

const productColumns = `id, name, description, price, is_active,
		        created_by_id, updated_by_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, is_active, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.IsActive, product.CreatedByID).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return product, nil
}

// GetByID loads the product together with its media rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price, &product.IsActive,
		&product.CreatedByID, &product.UpdatedByID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	media, err := r.mediaForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Media = media
	return product, nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Description,
			&product.Price, &product.IsActive,
			&product.CreatedByID, &product.UpdatedByID,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, params UpdateParams, updatedByID *int64) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    is_active = COALESCE($5, is_active),
		    updated_by_id = COALESCE($6, updated_by_id),
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id,
		params.Name, params.Description, params.Price, params.IsActive, updatedByID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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

func (r *PostgresRepository) mediaForProduct(ctx context.Context, productID int64) ([]models.ProductMedia, error) {
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

	var media []models.ProductMedia
	for rows.Next() {
		m := models.ProductMedia{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.S3URL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return media, nil
}

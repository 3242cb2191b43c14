// Package users provides the PostgreSQL-backed user directory.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/models"
)

const userColumns = `id, email, name, picture, is_active, is_superuser,
		        refresh_token, refresh_token_expires_at, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, picture, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.Picture, user.IsActive, user.IsSuperuser).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, picture = $3, is_active = $4, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Picture, user.IsActive); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Picture,
			&user.IsActive, &user.IsSuperuser,
			&user.RefreshToken, &user.RefreshTokenExpiresAt,
			&user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE refresh_token = $1 AND refresh_token_expires_at > now()`
	return r.scanUser(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.IsActive, &user.IsSuperuser,
		&user.RefreshToken, &user.RefreshTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

package users

import (
	"context"
	"time"

	"github.com/shopworks/go-commerce-server/internal/models"
)

// Repository is the user directory. Identity is keyed solely on email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)

	// UpdateRefreshToken overwrites the stored refresh token for the user.
	// This is the rotation point: the previous value becomes invalid.
	UpdateRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// GetByRefreshToken resolves a refresh token to its user, only when the
	// stored expiry is in the future.
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

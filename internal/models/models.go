// Package models defines the persisted entities shared by the repositories
// and the HTTP layer.
package models

import "time"

// User is an identity record created on first successful OAuth callback.
// Email is the identity key; name and picture are refreshed on every login.
// At most one live refresh token exists per user - a new issuance overwrites
// the previous one.
type User struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Picture               string     `json:"picture"`
	IsActive              bool       `json:"is_active"`
	IsSuperuser           bool       `json:"is_superuser"`
	RefreshToken          *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type Product struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	IsActive    bool           `json:"is_active"`
	CreatedByID *int64         `json:"created_by_id,omitempty"`
	UpdatedByID *int64         `json:"updated_by_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Media       []ProductMedia `json:"media"`
}

// ProductMedia records one uploaded image for a product. S3URL is the public
// blob-store URL the object was written to.
type ProductMedia struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	S3URL     string    `json:"s3_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Basket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Wishlist struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Package repofake provides an in-memory wishlist repository for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/models"
)

type FakeWishlistRepo struct {
	mu      sync.Mutex
	entries []*models.Wishlist
	nextID  int64
}

func NewFakeWishlistRepo() *FakeWishlistRepo {
	return &FakeWishlistRepo{nextID: 1}
}

func (f *FakeWishlistRepo) Add(_ context.Context, userID, productID int64) (*models.Wishlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.ProductID == productID {
			entry.UpdatedAt = now
			out := *entry
			return &out, nil
		}
	}

	stored := &models.Wishlist{
		ID:        f.nextID,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.nextID++
	f.entries = append(f.entries, stored)

	out := *stored
	return &out, nil
}

func (f *FakeWishlistRepo) ListByUser(_ context.Context, userID int64) ([]*models.Wishlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*models.Wishlist
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out := *entry
			result = append(result, &out)
		}
	}
	return result, nil
}

func (f *FakeWishlistRepo) Remove(_ context.Context, userID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, entry := range f.entries {
		if entry.UserID == userID && entry.ProductID == productID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

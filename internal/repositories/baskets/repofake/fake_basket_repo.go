// Package repofake provides an in-memory basket repository for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/models"
)

type FakeBasketRepo struct {
	mu      sync.Mutex
	entries []*models.Basket
	nextID  int64
}

func NewFakeBasketRepo() *FakeBasketRepo {
	return &FakeBasketRepo{nextID: 1}
}

func (f *FakeBasketRepo) Add(_ context.Context, basket *models.Basket) (*models.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, entry := range f.entries {
		if entry.UserID == basket.UserID && entry.ProductID == basket.ProductID {
			entry.Quantity += basket.Quantity
			entry.UpdatedAt = now
			out := *entry
			return &out, nil
		}
	}

	stored := *basket
	stored.ID = f.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.nextID++
	f.entries = append(f.entries, &stored)

	out := stored
	return &out, nil
}

func (f *FakeBasketRepo) ListByUser(_ context.Context, userID int64) ([]*models.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*models.Basket
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out := *entry
			result = append(result, &out)
		}
	}
	return result, nil
}

func (f *FakeBasketRepo) Remove(_ context.Context, userID, productID int64) error {
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

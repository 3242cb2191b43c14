// Package repofake provides an in-memory order repository for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type FakeOrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order
	nextID int64
}

func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{nextID: 1}
}

func (f *FakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	stored := *order
	stored.ID = f.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.nextID++
	f.orders = append(f.orders, &stored)

	out := stored
	return &out, nil
}

func (f *FakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out := *order
			result = append(result, &out)
		}
	}
	return result, nil
}

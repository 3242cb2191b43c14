// Package repofake provides an in-memory product repository for tests.
package repofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/models"
	"github.com/shopworks/go-commerce-server/internal/repositories/products"
)

type FakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*models.Product
	nextID   int64
}

func NewFakeProductRepo() *FakeProductRepo {
	return &FakeProductRepo{products: make(map[int64]*models.Product), nextID: 1}
}

func (f *FakeProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	stored := *product
	stored.ID = f.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.nextID++
	f.products[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *FakeProductRepo) GetByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (f *FakeProductRepo) List(_ context.Context, offset, limit int) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*models.Product
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(result) >= limit {
			break
		}
		out := *f.products[id]
		result = append(result, &out)
	}
	return result, nil
}

func (f *FakeProductRepo) Update(_ context.Context, id int64, params products.UpdateParams, updatedByID *int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if params.Name != nil {
		stored.Name = *params.Name
	}
	if params.Description != nil {
		stored.Description = *params.Description
	}
	if params.Price != nil {
		stored.Price = *params.Price
	}
	if params.IsActive != nil {
		stored.IsActive = *params.IsActive
	}
	if updatedByID != nil {
		stored.UpdatedByID = updatedByID
	}
	stored.UpdatedAt = time.Now()

	out := *stored
	return &out, nil
}

func (f *FakeProductRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

// AttachMedia mirrors what the media repository would persist, so server
// tests can observe uploads through GetByID.
func (f *FakeProductRepo) AttachMedia(productID int64, media models.ProductMedia) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if stored, ok := f.products[productID]; ok {
		stored.Media = append(stored.Media, media)
	}
}

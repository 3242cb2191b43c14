// Package repofake provides an in-memory media repository for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/models"
)

type FakeMediaRepo struct {
	mu     sync.Mutex
	media  map[int64][]models.ProductMedia
	nextID int64
}

func NewFakeMediaRepo() *FakeMediaRepo {
	return &FakeMediaRepo{media: make(map[int64][]models.ProductMedia), nextID: 1}
}

func (f *FakeMediaRepo) CreateBatch(_ context.Context, productID int64, urls []string) ([]models.ProductMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	result := make([]models.ProductMedia, 0, len(urls))
	for _, url := range urls {
		m := models.ProductMedia{
			ID:        f.nextID,
			ProductID: productID,
			S3URL:     url,
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.nextID++
		f.media[productID] = append(f.media[productID], m)
		result = append(result, m)
	}
	return result, nil
}

func (f *FakeMediaRepo) ListByProduct(_ context.Context, productID int64) ([]models.ProductMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.media[productID]
	out := make([]models.ProductMedia, len(stored))
	copy(out, stored)
	return out, nil
}

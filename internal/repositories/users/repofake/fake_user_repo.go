// Package repofake provides an in-memory users.Repository for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/models"
)

type FakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (f *FakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	u := *user
	u.ID = f.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	f.nextID++
	f.users[u.ID] = &u

	copied := u
	return &copied, nil
}

func (f *FakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Name = user.Name
	existing.Picture = user.Picture
	existing.IsActive = user.IsActive
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *FakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *FakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.User
	for id := int64(1); id < f.nextID; id++ {
		if user, ok := f.users[id]; ok {
			copied := *user
			all = append(all, &copied)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *FakeUserRepo) UpdateRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	user.RefreshToken = &token
	user.RefreshTokenExpiresAt = &expiresAt
	user.UpdatedAt = time.Now()
	return nil
}

func (f *FakeUserRepo) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.RefreshToken != nil && *user.RefreshToken == token {
			if user.RefreshTokenExpiresAt == nil || !user.RefreshTokenExpiresAt.After(time.Now()) {
				break
			}
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// SetRefreshTokenExpiry rewrites the stored expiry directly, for tests that
// need an already-expired token.
func (f *FakeUserRepo) SetRefreshTokenExpiry(userID int64, expiresAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user, ok := f.users[userID]; ok {
		user.RefreshTokenExpiresAt = &expiresAt
	}
}

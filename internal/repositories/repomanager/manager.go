package repomanager

import (
	"context"

	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/repositories/baskets"
	"github.com/shopworks/go-commerce-server/internal/repositories/media"
	"github.com/shopworks/go-commerce-server/internal/repositories/orders"
	"github.com/shopworks/go-commerce-server/internal/repositories/products"
	"github.com/shopworks/go-commerce-server/internal/repositories/users"
	"github.com/shopworks/go-commerce-server/internal/repositories/wishlists"
)

// Repos bundles the repositories bound to a single database handle, either
// the shared pool or one transaction.
type Repos struct {
	Users     users.Repository
	Products  products.Repository
	Media     media.Repository
	Orders    orders.Repository
	Baskets   baskets.Repository
	Wishlists wishlists.Repository
}

// Manager vends repository bundles and runs work inside a transaction.
type Manager interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(repos Repos) error) error
	Close() error
}

func reposFor(db dbx.DBTX) Repos {
	return Repos{
		Users:     users.NewPostgresRepository(db),
		Products:  products.NewPostgresRepository(db),
		Media:     media.NewPostgresRepository(db),
		Orders:    orders.NewPostgresRepository(db),
		Baskets:   baskets.NewPostgresRepository(db),
		Wishlists: wishlists.NewPostgresRepository(db),
	}
}

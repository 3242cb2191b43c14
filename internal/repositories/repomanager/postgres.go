// Package repomanager provides a PostgreSQL-backed repository bundle, wiring
// together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopworks/go-commerce-server/internal/dbx"
	"github.com/shopworks/go-commerce-server/internal/migrations"
)

type PostgresManager struct {
	db    *sql.DB
	repos Repos
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresManager opens the connection pool, applies pending migrations
// and binds the repositories to the pool.
func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{db: db, repos: reposFor(db)}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}

func (m *PostgresManager) Repos() Repos {
	return m.repos
}

// WithTx runs fn with a repository bundle bound to one transaction,
// committing on success and rolling back on error.
func (m *PostgresManager) WithTx(ctx context.Context, fn func(repos Repos) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(_ context.Context, tx dbx.DBTX) error {
		return fn(reposFor(tx))
	})
}

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}

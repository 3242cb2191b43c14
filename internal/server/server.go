// Package server exposes the HTTP API: the Google login flow, the user
// directory, the product catalog with image uploads, and the per-user
// wishlist, order and basket resources.
package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopworks/go-commerce-server/internal/auth"
	"github.com/shopworks/go-commerce-server/internal/config"
	"github.com/shopworks/go-commerce-server/internal/repositories/repomanager"
	"github.com/shopworks/go-commerce-server/internal/storage"
)

// TxRunner runs fn with a repository bundle bound to one transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos repomanager.Repos) error) error
}

// BlobStore uploads image files and returns their public URLs.
type BlobStore interface {
	Upload(ctx context.Context, productID int64, files []storage.ImageFile) ([]string, error)
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.AuthService
	repos  repomanager.Repos
	tx     TxRunner
	blobs  BlobStore
	logger zerolog.Logger
}

func New(cfg config.Config, authService *auth.AuthService, repos repomanager.Repos, tx TxRunner, blobs BlobStore, logger zerolog.Logger) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if tx == nil {
		return nil, errors.New("[Server New] tx runner is required")
	}
	if blobs == nil {
		return nil, errors.New("[Server New] blob store is required")
	}

	s := &Server{
		env:    cfg.Env,
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		repos:  repos,
		tx:     tx,
		blobs:  blobs,
		logger: logger,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		s.logger.Debug().Str("route", route).Msg("registered")
	}
}

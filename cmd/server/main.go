package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/shopworks/go-commerce-server/internal/auth"
	"github.com/shopworks/go-commerce-server/internal/authstate"
	"github.com/shopworks/go-commerce-server/internal/config"
	"github.com/shopworks/go-commerce-server/internal/provider"
	"github.com/shopworks/go-commerce-server/internal/repositories/repomanager"
	"github.com/shopworks/go-commerce-server/internal/server"
	"github.com/shopworks/go-commerce-server/internal/storage"
	"github.com/shopworks/go-commerce-server/internal/token"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppname(cfg.AppName)

	signer, err := token.NewHMACSigner(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		return fmt.Errorf("token.NewHMACSigner: %w", err)
	}
	issuer := token.NewIssuer(signer, cfg.AccessTokenTTL)

	ctx := context.Background()
	manager, err := repomanager.NewPostgresManager(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("repomanager.NewPostgresManager: %w", err)
	}
	defer manager.Close()

	var providerOpts []provider.Option
	if cfg.GoogleAuthURL != "" || cfg.GoogleTokenURL != "" || cfg.GoogleUserInfoURL != "" {
		providerOpts = append(providerOpts,
			provider.WithEndpoints(cfg.GoogleAuthURL, cfg.GoogleTokenURL, cfg.GoogleUserInfoURL))
	}
	google := provider.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, providerOpts...)

	states := authstate.NewStore(authstate.WithTTL(cfg.OAuthStateTTL))
	defer states.Close()

	authService, err := auth.NewAuthService(states, google, issuer, manager.Repos().Users,
		auth.WithRefreshTokenTTL(cfg.RefreshTokenTTL))
	if err != nil {
		return fmt.Errorf("auth.NewAuthService: %w", err)
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.Config{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		BaseURL:         cfg.S3BaseURL,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		return fmt.Errorf("storage.NewS3Uploader: %w", err)
	}

	srv, err := server.New(*cfg, authService, manager.Repos(), manager, uploader, logger)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

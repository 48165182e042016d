// Package app wires the storefront client together: configuration, the
// local state database, the API client, and the cart.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Chichimokers/storefront/internal/storefront/cart"
	"github.com/Chichimokers/storefront/internal/storefront/localstore"
	"github.com/Chichimokers/storefront/pkg/slogx"
	"github.com/Chichimokers/storefront/pkg/storesdk"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application holds the wired client dependencies. Commands reach the
// API through Client and local state through Cart.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     *localstore.Store
	Client *storesdk.Client
	Cart   *cart.Store
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "storefront",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := localstore.Open(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state database: %w", err)
	}
	app.db = db

	httpc := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: &slogx.Transport{Logger: app.logger},
	}

	opts := []storesdk.Option{
		storesdk.WithHTTPClient(httpc),
		storesdk.WithLogger(app.logger),
		storesdk.WithTokenStore(localstore.NewTokens(db, app.logger)),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, storesdk.WithRateLimit(cfg.RateLimit, int(cfg.RateLimit)+1))
	}
	app.Client = storesdk.New(cfg.APIBase, opts...)

	app.Client.OnSessionExpired(func() {
		app.logger.Warn("session expired, sign in again")
	})

	app.Cart = cart.New(
		localstore.NewSnapshot(db, localstore.KeyCart),
		app.logger,
	)

	return app, nil
}

// Logger exposes the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Config exposes the loaded configuration.
func (app *Application) Config() Config { return app.cfg }

// Close releases the local state database.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing local state database", "error", err)
		return err
	}
	return nil
}

// Package server wires the development backend together: repositories,
// object storage, services and the HTTP API, and runs it until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/httpapi"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/dmitrijs2005/gophstore/internal/server/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       *services.UserService
	products    *services.ProductService
	server      *httpapi.Server
}

// NewApp connects storage, applies migrations and seeds the configured user.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "Using in-memory storage, data is lost on exit")
		app.repomanager = repomanager.NewMemoryRepositoryManager()
	} else {
		db, err := openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repomanager = repomanager.NewPostgresRepositoryManager()
	}

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store := storage.NewS3Store(storage.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	app.users = services.NewUserService(app.db, app.repomanager, c)
	app.products = services.NewProductService(app.db, app.repomanager, store, c, logger.With("module", "products"))

	if err := app.seed(ctx); err != nil {
		app.close()
		return nil, err
	}

	app.server = httpapi.NewServer(app.users, app.products, httpapi.Options{
		Address:     c.Addr,
		SecretKey:   c.SecretKey,
		CORSOrigins: c.CORSOrigins,
		Logger:      logger,
	})
	return app, nil
}

func (app *App) seed(ctx context.Context) error {
	c := app.config
	if c.SeedEmail == "" {
		return nil
	}

	_, created, err := app.users.EnsureUser(ctx, c.SeedCompanyID, c.SeedEmail, []byte(c.SeedPassword))
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		app.logger.Info(ctx, "Seed user created", "company", c.SeedCompanyID, "email", c.SeedEmail)
	}

	seeded, err := app.products.EnsureCatalog(ctx, c.SeedCompanyID)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		app.logger.Info(ctx, "Seed catalog created", "company", c.SeedCompanyID)
	}
	return nil
}

// Run serves the API until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer app.close()

	return app.server.Run(ctx)
}

func (app *App) close() {
	if app.db != nil {
		_ = app.db.Close()
	}
}

package routes

import (
	"context"
	"fmt"

	"catalog-admin/clients"
	"catalog-admin/config"
	"catalog-admin/events"
	"catalog-admin/libs"
	"catalog-admin/repositories"
	"catalog-admin/services"
	"catalog-admin/utils"

	"github.com/sirupsen/logrus"
)

// App holds the wired services behind the HTTP routes.
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Catalog  *services.CatalogService
	Sessions *services.SessionManager
	Auth     *services.AuthService

	closers []func()
}

// NewApp connects the optional infrastructure and builds the services.
// Redis, Postgres and NATS are optional; when unreachable the in-memory
// implementations are used.
func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	catalog := clients.NewCatalogClient(clients.CatalogClientConfig{
		BaseURL:    cfg.CatalogURL,
		Timeout:    cfg.CatalogTimeout,
		MaxRetries: cfg.CatalogMaxRetries,
		Logger:     logger,
	})

	var cache repositories.CollectionCache = repositories.NewMemoryCollectionCache(cfg.CacheTTL)
	if cfg.HasRedis() {
		rdb, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, continuing with in-memory cache")
		} else {
			cache = repositories.NewRedisCollectionCache(rdb, cfg.CacheTTL)
			app.closers = append(app.closers, func() { rdb.Close() })
			logger.Info("Redis connected")
		}
	}

	var drafts repositories.DraftRepository = repositories.NewMemoryDraftRepository()
	if cfg.HasDatabase() {
		pool, err := config.ConnectDB(ctx, cfg)
		if err != nil {
			logger.WithError(err).Warn("Database unavailable, drafts are kept in memory")
		} else {
			drafts = repositories.NewPostgresDraftRepository(pool)
			app.closers = append(app.closers, pool.Close)
			logger.Info("Database connected")
		}
	}

	var publisher services.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, continuing without catalog events")
		} else {
			publisher = p
			app.closers = append(app.closers, p.Close)
			logger.Info("NATS connected")
		}
	}

	staging, err := utils.NewStagingStore(cfg.StagingDir)
	if err != nil {
		app.Close()
		return nil, err
	}

	uploader, err := libs.NewUploader(ctx, cfg, catalog)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create uploader: %w", err)
	}

	app.Catalog = services.NewCatalogService(catalog, cache, cfg.PageSize, publisher, logger)
	app.Sessions = services.NewSessionManager(services.SessionManagerConfig{
		API:      catalog,
		Catalog:  app.Catalog,
		Drafts:   drafts,
		Staging:  staging,
		Uploader: uploader,
		RegionID: cfg.RegionID,
		MaxSize:  cfg.MaxUploadSize,
		Policy:   cfg.MediaPolicy,
		Logger:   logger,
	})
	app.Auth = services.NewAuthService(catalog, cfg.JWTSecret, cfg.CookieTTL)

	return app, nil
}

// Close releases staged media and shuts down infrastructure connections.
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Shutdown()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

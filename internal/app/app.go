package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "floral_essence/internal/app/http"
	"floral_essence/internal/config"
	"floral_essence/internal/lib/filename"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/repository"
	"floral_essence/internal/services/auth"
	catalogsvc "floral_essence/internal/services/catalog_service"
	databasesvc "floral_essence/internal/services/database_service"
	mediasvc "floral_essence/internal/services/media_service"
	filestorage "floral_essence/internal/storage/filestorage"
	"floral_essence/internal/storage/jsonfile"
	"floral_essence/internal/storage/postgresql"
	redisapp "floral_essence/internal/storage/redis"
	httprouters "floral_essence/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	log     *slog.Logger
	closers []func() error
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{log: log}

	store, err := a.documentStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cache, err := a.documentCache(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo := repository.NewRepository(log, store, cache)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names, err := filename.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService, err := auth.New(log, cfg.Admin.Username, cfg.Admin.Password, []byte(cfg.Admin.TokenSecret), cfg.TokenTTL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	databaseService := databasesvc.NewDatabaseService(log, repo)
	mediaService := mediasvc.NewMediaService(log, fileStorage, names, cfg.FileStorage.MaxSize, cfg.FileStorage.MaxFiles)
	catalogService := catalogsvc.NewCatalogService(log, databaseService)

	routers := httprouters.NewRouter(log, databaseService, mediaService, authService, catalogService, fileStorage.BaseURL())

	a.HTTPServer = httpapp.New(log, cfg, routers)
	a.HTTPServer.BuildRouters()

	return a, nil
}

func (a *App) documentStore(ctx context.Context, cfg config.DatabaseConfig) (repository.DocumentStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgresql.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			s.Stop()
			return nil
		})
		a.log.Info("document store", slog.String("driver", cfg.Driver))
		return s, nil

	case config.DriverFile, "":
		s, err := jsonfile.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.log.Info("document store", slog.String("driver", config.DriverFile), slog.String("path", s.Path()))
		return s, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// documentCache falls back to the in-memory cache when redis is unreachable.
func (a *App) documentCache(ctx context.Context, cfg *config.Config) (repository.DocumentCache, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err := client.HealthCheck(ctx); err != nil {
			a.log.Warn("redis unavailable, using memory cache", sl.Err(err))
			_ = client.Close()
			return repository.NewMemoryCache(cfg.Cache.TTL), nil
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisCache(client, cfg.Cache.TTL), nil

	case config.CacheMemory, "":
		return repository.NewMemoryCache(cfg.Cache.TTL), nil

	case config.CacheNone:
		return repository.NopCache{}, nil

	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// Stop shuts the HTTP server down and releases the storage connections.
func (a *App) Stop(ctx context.Context) error {
	const op = "app.Stop"

	var err error
	if a.HTTPServer != nil {
		err = a.HTTPServer.Stop(ctx)
	}
	a.Close()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}

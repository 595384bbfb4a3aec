package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/axellelanca/urlalias/internal/api"
	"github.com/axellelanca/urlalias/internal/config"
	"github.com/axellelanca/urlalias/internal/generator"
	"github.com/axellelanca/urlalias/internal/monitor"
	"github.com/axellelanca/urlalias/internal/repository"
	"github.com/axellelanca/urlalias/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App wires config, storage, services, the expiry monitor and the HTTP router.
type App struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Redis    *redis.Client // nil when the cache is disabled
	Aliases  *services.AliasService
	Resolver *services.Resolver
	Stats    *services.StatsService
	Auth     *services.AuthService
	Monitor  *monitor.ExpiryMonitor
	Router   *gin.Engine
}

// New builds a fully-wired application instance. The schema is migrated before
// anything else touches the database.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.InitDB(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db, cfg.Database.URL); err != nil {
		closeDB(db)
		return nil, err
	}

	a := &App{Cfg: cfg, DB: db}

	var cache services.AliasCache
	if cfg.Redis.Addr != "" {
		rdb, err := repository.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, alias cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			a.Redis = rdb
			cache = repository.NewRedisAliasCache(rdb, logger)
			logger.Info("alias cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	store := repository.NewStore(db)
	gen := generator.New(
		generator.WithCodeLength(cfg.Alias.CodeLength),
		generator.WithMaxAttempts(cfg.Alias.MaxAttempts),
	)

	a.Aliases = services.NewAliasService(store, gen, cache, cfg.Server.BaseURL, cfg.Alias.TTL)
	a.Resolver = services.NewResolver(store, cache, cfg.Redis.TTL)
	a.Stats = services.NewStatsService(repository.NewClickRepository(db))
	a.Auth = services.NewAuthService(repository.NewUserRepository(db))
	a.Monitor = monitor.NewExpiryMonitor(
		repository.NewAliasRepository(db),
		time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute,
		logger,
	)
	a.Router = api.NewRouter(api.Dependencies{
		Aliases:  a.Aliases,
		Resolver: a.Resolver,
		Stats:    a.Stats,
		Auth:     a.Auth,
		Logger:   logger,
	})
	return a, nil
}

// Addr returns the HTTP listen address, e.g. ":8080".
func (a *App) Addr() string {
	return fmt.Sprintf(":%d", a.Cfg.Server.Port)
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

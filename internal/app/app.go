// Package app 组装两个入口共用的依赖：数据库、缓存、仓储、服务与 HTTP 模块
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/core/cache"
	"sweet-shop/internal/core/config"
	"sweet-shop/internal/core/database"
	"sweet-shop/internal/core/logger"
	"sweet-shop/internal/core/storage"
	"sweet-shop/internal/repo"
	"sweet-shop/internal/seed"
	"sweet-shop/internal/service/catalog"
	"sweet-shop/internal/service/identity"
	"sweet-shop/internal/service/ledger"
	"sweet-shop/internal/transport/http/handler"
	"sweet-shop/internal/transport/http/router"
	"sweet-shop/pkg/utils"
)

type App struct {
	Deps router.Deps

	closers []func() error
}

// Build 打开数据库（可选迁移与种子数据），按配置接入 Redis 与 S3
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, logger.ToStdLogger(l.Named("gorm"), zapcore.InfoLevel))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(ctx, db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	st := repo.NewStore(db, time.Duration(cfg.DB.AcquireTimeoutSec)*time.Second)
	users, sweets, purchases := repo.NewUserRepo(st), repo.NewSweetRepo(st), repo.NewPurchaseRepo(st)
	hasher := utils.NewHasher(cfg.Auth.BcryptCost)

	if cfg.DB.Seed {
		if err := seed.Run(ctx, l, users, sweets, hasher, seed.Admin{Email: cfg.Admin.Email, Password: cfg.Admin.Password}); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	cat := catalog.NewService(l.Named("catalog"), sweets, a.openCache(ctx, cfg.Redis, l))
	led := ledger.NewService(l.Named("ledger"), sweets, purchases, st, cat)
	ids := identity.NewService(l.Named("identity"), users, hasher, jwter,
		identity.Options{EnableRegistration: cfg.Auth.EnableRegistration})

	var images handler.ImageStore
	s3, err := storage.New(ctx, cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		l.Info("image storage disabled")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	default:
		images = s3
	}

	a.Deps = router.Deps{
		Log:    l,
		Config: cfg,
		DB:     db,
		JWT:    jwter,
		Users:  users,
		Registry: router.NewRegistry(
			handler.NewAuthHandler(ids),
			handler.NewSweetHandler(cat, led),
			handler.NewPurchaseHandler(led),
			handler.NewUserHandler(ids),
			handler.NewImageHandler(cat, images, cfg.Storage.MaxUploadMB),
		),
	}
	return a, nil
}

// openCache redis.addr 为空或不可达时不启用缓存
func (a *App) openCache(ctx context.Context, c config.Redis, l *zap.Logger) *cache.Cache {
	if c.Addr == "" {
		return nil
	}
	rs := cache.NewRedis(c.Addr, c.Password, c.DB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rs.Ping(pctx); err != nil {
		l.Warn("redis unreachable, cache disabled", zap.String("addr", c.Addr), zap.Error(err))
		_ = rs.Close()
		return nil
	}
	a.closers = append(a.closers, rs.Close)
	l.Info("redis connected", zap.String("addr", c.Addr))
	return cache.New(rs, time.Duration(c.TTLSec)*time.Second)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

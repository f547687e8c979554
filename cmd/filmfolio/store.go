package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/config"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/database"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"go.uber.org/zap"
)

// openStore builds the configured substrate, wraps it in a Store and makes
// sure both backing records exist. The returned func releases the substrate.
func openStore(ctx context.Context, appConfig config.AppConfig, logger *zap.Logger) (*store.Store, func() error, error) {
	substrate, closeSubstrate, err := openSubstrate(ctx, appConfig, logger)
	if err != nil {
		return nil, nil, err
	}

	movieStore, err := store.NewStore(store.Config{
		Substrate:  substrate,
		Clock:      time.Now,
		IDProvider: store.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		_ = closeSubstrate()
		return nil, nil, err
	}
	if err := movieStore.Initialize(ctx); err != nil {
		_ = closeSubstrate()
		return nil, nil, err
	}
	return movieStore, closeSubstrate, nil
}

func openSubstrate(ctx context.Context, appConfig config.AppConfig, logger *zap.Logger) (store.Substrate, func() error, error) {
	switch appConfig.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
		if err != nil {
			return nil, nil, err
		}
		substrate, err := store.NewGormSubstrate(db, time.Now)
		if err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		return substrate, func() error { return database.Close(db) }, nil
	case config.StoreDriverRedis:
		substrate, err := store.NewRedisSubstrate(ctx, store.RedisConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   appConfig.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis store connected", zap.String("address", appConfig.RedisAddress))
		return substrate, substrate.Close, nil
	case config.StoreDriverMemory:
		logger.Warn("memory store selected; data is lost on exit")
		return store.NewMemorySubstrate(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("store.driver %q is not supported", appConfig.StoreDriver)
	}
}

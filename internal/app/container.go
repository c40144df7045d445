// Package app wires configuration, storage and services for the binaries.
package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/internmatch/matcher/internal/config"
	"github.com/internmatch/matcher/internal/logger"
	"github.com/internmatch/matcher/internal/repositories"
	"github.com/internmatch/matcher/internal/services"
)

type Container struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    services.MatchCache
	Matching services.MatchingService
}

func New(cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	cache := services.NewRedisMatchCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.TTL, log)

	matching := services.NewMatchingService(
		repositories.NewStudentRepository(db),
		repositories.NewInternshipRepository(db),
		repositories.NewMatchRepository(db),
		services.NewScorer(services.NewTextSimilarity()),
		cache,
		cfg.Matching.Threshold,
		log,
	)

	return &Container{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Cache:    cache,
		Matching: matching,
	}, nil
}

func (c *Container) Close() {
	if closer, ok := c.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.Log.Warn("failed to close match cache", zap.Error(err))
		}
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = c.Log.Sync()
}

package usecase

import (
	"context"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	healthUp   = "up"
	healthDown = "down"
)

type SystemUsecase interface {
	Info(ctx context.Context) *dto.RootResponse
	// Health reports dependency reachability. healthy is false when any dependency is down.
	Health(ctx context.Context) (resp *dto.HealthResponse, healthy bool)
}

type systemUsecase struct {
	db  *gorm.DB
	rdb redis.UniversalClient
	log *logrus.Logger
	cfg *config.Config
}

func NewSystemUsecase(db *gorm.DB, rdb redis.UniversalClient, log *logrus.Logger, cfg *config.Config) SystemUsecase {
	return &systemUsecase{db: db, rdb: rdb, log: log, cfg: cfg}
}

func (u *systemUsecase) Info(ctx context.Context) *dto.RootResponse {
	return &dto.RootResponse{
		Name:        u.cfg.App.Name,
		Version:     u.cfg.App.Version,
		Environment: u.cfg.App.Env,
		Features:    FeatureFlags(u.cfg.Features),
	}
}

func (u *systemUsecase) Health(ctx context.Context) (*dto.HealthResponse, bool) {
	resp := &dto.HealthResponse{Status: "ok", Database: healthUp, Redis: healthUp}

	sqlDB, err := u.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		u.log.Warnf("Failed to ping database: %+v", err)
		resp.Database = healthDown
	}

	if err := u.rdb.Ping(ctx).Err(); err != nil {
		u.log.Warnf("Failed to ping redis: %+v", err)
		resp.Redis = healthDown
	}

	healthy := resp.Database == healthUp && resp.Redis == healthUp
	if !healthy {
		resp.Status = "degraded"
	}
	return resp, healthy
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemUsecase_Info(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	cfg := testConfig()
	cfg.Features.ShowDevBanner = true
	uc := NewSystemUsecase(testutil.NewTestDB(t), rdb, quietLogger(), cfg)

	info := uc.Info(context.Background())
	assert.Equal(t, &dto.RootResponse{
		Name:        "DOME Care API",
		Version:     "1.0.0",
		Environment: "test",
		Features: dto.FeatureFlags{
			MockServices: true,
			EmailAuth:    true,
			DevBanner:    true,
		},
	}, info)
}

func TestSystemUsecase_Health(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPing().SetVal("PONG")
		uc := NewSystemUsecase(testutil.NewTestDB(t), rdb, quietLogger(), testConfig())

		resp, healthy := uc.Health(context.Background())
		assert.True(t, healthy)
		assert.Equal(t, &dto.HealthResponse{Status: "ok", Database: "up", Redis: "up"}, resp)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis down", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPing().SetErr(errors.New("connection refused"))
		uc := NewSystemUsecase(testutil.NewTestDB(t), rdb, quietLogger(), testConfig())

		resp, healthy := uc.Health(context.Background())
		assert.False(t, healthy)
		assert.Equal(t, &dto.HealthResponse{Status: "degraded", Database: "up", Redis: "down"}, resp)
	})

	t.Run("database closed", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPing().SetVal("PONG")
		db := testutil.NewTestDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())
		uc := NewSystemUsecase(db, rdb, quietLogger(), testConfig())

		resp, healthy := uc.Health(context.Background())
		assert.False(t, healthy)
		assert.Equal(t, "down", resp.Database)
		assert.Equal(t, "up", resp.Redis)
	})
}

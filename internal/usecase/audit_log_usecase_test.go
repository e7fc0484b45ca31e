package usecase

import (
	"context"
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogUsecase(t *testing.T) {
	db := testutil.NewTestDB(t)
	log := quietLogger()
	auditRepo := repository.NewAuditLogRepository()
	audit := service.NewAuditService(log, auditRepo)
	uc := NewAuditLogUsecase(db, log, auditRepo)
	ctx := context.Background()

	patient := testutil.CreatePatient(t, db, "Lina", "lina@example.com")
	require.NoError(t, audit.LogCreate(ctx, db, &patient.ID, entity.AuditActionUserRegister, "user", patient.ID.String(), nil))
	require.NoError(t, audit.LogCreate(ctx, db, &patient.ID, entity.AuditActionUserLogin, "user", patient.ID.String(), nil))
	require.NoError(t, audit.LogCreate(ctx, db, nil, entity.AuditActionUserLogin, "user", "unknown", nil))

	first, err := uc.GetAllAuditLogs(ctx, page(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Total)
	assert.Equal(t, 2, first.Pages)
	require.Len(t, first.Logs, 2)

	second, err := uc.GetAllAuditLogs(ctx, page(2, 2))
	require.NoError(t, err)
	require.Len(t, second.Logs, 1)
	assert.NotContains(t, []int64{first.Logs[0].ID, first.Logs[1].ID}, second.Logs[0].ID)

	var register entity.AuditLog
	require.NoError(t, db.Where("action = ?", entity.AuditActionUserRegister).First(&register).Error)

	detail, err := uc.GetAuditLog(ctx, register.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionUserRegister, detail.Action)
	require.NotNil(t, detail.User)
	assert.Equal(t, "Lina", detail.User.FullName)
	assert.Equal(t, "user", detail.Metadata["entity"])

	_, err = uc.GetAuditLog(ctx, 9999)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_WritesInsideTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewAuditLogRepository()
	svc := NewAuditService(quietLogger(), repo)
	user := testutil.CreatePatient(t, db, "Auditor", "auditor@example.com")
	ctx := context.Background()

	tx := db.Begin()
	require.NoError(t, svc.LogCreate(ctx, tx, &user.ID, entity.AuditActionAppointmentCreate, "appointment", "a-1", map[string]string{"start_time": "09:00"}))
	require.NoError(t, svc.LogUpdate(ctx, tx, &user.ID, entity.AuditActionAppointmentStatus, "appointment", "a-1", "pending", "confirmed"))
	require.NoError(t, tx.Commit().Error)

	tx = db.Begin()
	require.NoError(t, svc.LogCreate(ctx, tx, nil, entity.AuditActionUserRegister, "user", "u-9", nil))
	require.NoError(t, tx.Rollback().Error)

	logs, total, err := repo.FindAll(db, entity.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var update entity.AuditLog
	for _, l := range logs {
		if l.Action == entity.AuditActionAppointmentStatus {
			update = l
		}
	}
	assert.Equal(t, "appointment", update.Metadata["entity"])
	assert.Equal(t, "pending", update.Metadata["old_value"])
	assert.Equal(t, "confirmed", update.Metadata["new_value"])
}

func TestLogNotifier_LogsMessages(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	notifier := NewLogNotifier(log)
	user := &entity.User{FullName: "Nour"}
	ctx := context.Background()

	require.NoError(t, notifier.SendOTP(ctx, user, "nour@example.com", "123456"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "123456", entry.Data["otp"])

	require.NoError(t, notifier.SendPasswordReset(ctx, user, "nour@example.com", "reset-token"))
	assert.Equal(t, "reset-token", hook.LastEntry().Data["reset_token"])

	appointment := &entity.Appointment{
		StartTime:       "09:30",
		AppointmentDate: testutil.Date(2026, 11, 2),
		Patient:         entity.User{FullName: "Nour"},
		Doctor:          entity.User{FullName: "Dr. Adel"},
	}
	require.NoError(t, notifier.SendAppointmentReminder(ctx, appointment))
	assert.Equal(t, "2026-11-02", hook.LastEntry().Data["date"])
	assert.Len(t, hook.AllEntries(), 3)
}

package repository

import (
	"testing"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationTokenRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVerificationTokenRepository()
	user := testutil.CreatePatient(t, db, "Token", "token@example.com")
	now := time.Now().UTC()

	older := &entity.VerificationToken{UserID: user.ID, Token: "111111", Type: entity.TokenPurposeOTP, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Create(db, older))
	older.CreatedAt = now.Add(-time.Minute)
	require.NoError(t, db.Save(older).Error)

	latest := &entity.VerificationToken{UserID: user.ID, Token: "222222", Type: entity.TokenPurposeOTP, ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, repo.Create(db, latest))

	found, err := repo.FindLatest(db, user.ID, entity.TokenPurposeOTP)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "222222", found.Token)

	require.NoError(t, repo.IncrementAttempts(db, latest.ID))
	require.NoError(t, repo.IncrementAttempts(db, latest.ID))
	found, err = repo.FindByToken(db, "222222", entity.TokenPurposeOTP)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Attempts)
	assert.True(t, found.Usable(now, 3))
	assert.False(t, found.Usable(now, 2))

	require.NoError(t, repo.MarkUsed(db, latest.ID, now))
	found, err = repo.FindLatest(db, user.ID, entity.TokenPurposeOTP)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "111111", found.Token)

	require.NoError(t, repo.InvalidateAll(db, user.ID, entity.TokenPurposeOTP, now))
	found, err = repo.FindLatest(db, user.ID, entity.TokenPurposeOTP)
	require.NoError(t, err)
	assert.Nil(t, found)

	reset, err := repo.FindByToken(db, "222222", entity.TokenPurposePasswordReset)
	require.NoError(t, err)
	assert.Nil(t, reset)
}

func TestVerificationTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVerificationTokenRepository()
	user := testutil.CreatePatient(t, db, "Expired", "expired@example.com")
	now := time.Now().UTC()

	require.NoError(t, repo.Create(db, &entity.VerificationToken{
		UserID: user.ID, Token: "old", Type: entity.TokenPurposePasswordReset, ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(db, &entity.VerificationToken{
		UserID: user.ID, Token: "fresh", Type: entity.TokenPurposePasswordReset, ExpiresAt: now.Add(time.Hour),
	}))

	deleted, err := repo.DeleteExpired(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	fresh, err := repo.FindByToken(db, "fresh", entity.TokenPurposePasswordReset)
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestAuditLogRepository_FindAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuditLogRepository()
	user := testutil.CreatePatient(t, db, "Audited", "audited@example.com")

	for i, action := range []string{entity.AuditActionUserRegister, entity.AuditActionUserVerify, entity.AuditActionUserLogin} {
		entry := &entity.AuditLog{
			UserID:    &user.ID,
			Action:    action,
			Metadata:  entity.JSON{"step": i},
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Create(db, entry))
	}

	logs, total, err := repo.FindAll(db, entity.Page{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.Equal(t, entity.AuditActionUserLogin, logs[0].Action)
	require.NotNil(t, logs[0].User)
	assert.Equal(t, "Audited", logs[0].User.FullName)

	entry, err := repo.FindByID(db, logs[1].ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, entity.AuditActionUserVerify, entry.Action)
	assert.EqualValues(t, 1, entry.Metadata["step"])

	missing, err := repo.FindByID(db, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

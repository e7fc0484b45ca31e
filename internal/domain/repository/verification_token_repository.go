package repository

import (
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationTokenRepository interface {
	Create(db *gorm.DB, token *entity.VerificationToken) error
	// FindLatest returns the newest unused token of the given purpose for the user.
	FindLatest(db *gorm.DB, userID uuid.UUID, purpose entity.TokenPurpose) (*entity.VerificationToken, error)
	FindByToken(db *gorm.DB, token string, purpose entity.TokenPurpose) (*entity.VerificationToken, error)
	IncrementAttempts(db *gorm.DB, id uuid.UUID) error
	MarkUsed(db *gorm.DB, id uuid.UUID, at time.Time) error
	// InvalidateAll marks every outstanding token of the purpose as used.
	InvalidateAll(db *gorm.DB, userID uuid.UUID, purpose entity.TokenPurpose, at time.Time) error
	DeleteExpired(db *gorm.DB, before time.Time) (int64, error)
}

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, page entity.Page) ([]entity.AuditLog, int64, error)
	FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error)
}

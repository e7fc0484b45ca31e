package repository

import (
	"errors"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	domainRepo "github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type verificationTokenRepository struct{}

func NewVerificationTokenRepository() domainRepo.VerificationTokenRepository {
	return &verificationTokenRepository{}
}

func (r *verificationTokenRepository) Create(db *gorm.DB, token *entity.VerificationToken) error {
	return db.Create(token).Error
}

func (r *verificationTokenRepository) FindLatest(db *gorm.DB, userID uuid.UUID, purpose entity.TokenPurpose) (*entity.VerificationToken, error) {
	var token entity.VerificationToken
	err := db.
		Where("user_id = ? AND type = ? AND used_at IS NULL", userID, purpose).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *verificationTokenRepository) FindByToken(db *gorm.DB, value string, purpose entity.TokenPurpose) (*entity.VerificationToken, error) {
	var token entity.VerificationToken
	err := db.
		Where("token = ? AND type = ?", value, purpose).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *verificationTokenRepository) IncrementAttempts(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&entity.VerificationToken{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *verificationTokenRepository) MarkUsed(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&entity.VerificationToken{}).
		Where("id = ?", id).
		Update("used_at", at).Error
}

func (r *verificationTokenRepository) InvalidateAll(db *gorm.DB, userID uuid.UUID, purpose entity.TokenPurpose, at time.Time) error {
	return db.Model(&entity.VerificationToken{}).
		Where("user_id = ? AND type = ? AND used_at IS NULL", userID, purpose).
		Update("used_at", at).Error
}

func (r *verificationTokenRepository) DeleteExpired(db *gorm.DB, before time.Time) (int64, error) {
	res := db.Where("expires_at < ?", before).Delete(&entity.VerificationToken{})
	return res.RowsAffected, res.Error
}

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Omit("User").Create(log).Error
}

func (r *auditLogRepository) FindAll(db *gorm.DB, page entity.Page) ([]entity.AuditLog, int64, error) {
	var total int64
	if err := db.Model(&entity.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []entity.AuditLog
	query := db.Preload("User").Order("created_at DESC, id DESC")
	if page.Limit > 0 {
		query = query.Offset(page.Offset()).Limit(page.Limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.Preload("User").Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

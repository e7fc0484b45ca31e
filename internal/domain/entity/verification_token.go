package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenPurpose string

const (
	TokenPurposeOTP           TokenPurpose = "otp"
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// VerificationToken is a short-lived secret sent to a user out of band.
type VerificationToken struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string       `gorm:"type:varchar(128);not null;index" json:"-"`
	Type      TokenPurpose `gorm:"type:varchar(20);not null" json:"type"`
	ExpiresAt time.Time    `gorm:"not null;index" json:"expires_at"`
	Attempts  int          `gorm:"not null" json:"attempts"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

func (t *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Usable reports whether the token can still be redeemed at now.
func (t *VerificationToken) Usable(now time.Time, maxAttempts int) bool {
	if t.UsedAt != nil || !now.Before(t.ExpiresAt) {
		return false
	}
	return maxAttempts <= 0 || t.Attempts < maxAttempts
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthMethod is the channel a user verifies and signs in with.
type AuthMethod string

const (
	AuthMethodEmail AuthMethod = "email"
	AuthMethodPhone AuthMethod = "phone"
	AuthMethodBoth  AuthMethod = "both"
)

// UserStatus represents the lifecycle state of an account.
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusBlocked     UserStatus = "blocked"
	UserStatusDeactivated UserStatus = "deactivated"
)

const DefaultCountryCode = "+963"

// User is the shared account record for doctors, patients and admins.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID           int        `gorm:"not null;index" json:"role_id"`
	FullName         string     `gorm:"type:varchar(100);not null" json:"full_name"`
	Email            *string    `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	PhoneNumber      *string    `gorm:"type:varchar(20);uniqueIndex" json:"phone_number,omitempty"`
	CountryCode      string     `gorm:"type:varchar(5);not null" json:"country_code"`
	Password         string     `gorm:"type:text;not null" json:"-"`
	AuthMethod       AuthMethod `gorm:"type:varchar(10);not null" json:"auth_method"`
	Status           UserStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsEmailVerified  bool       `gorm:"not null" json:"is_email_verified"`
	IsPhoneVerified  bool       `gorm:"not null" json:"is_phone_verified"`
	ProfileCompleted bool       `gorm:"not null" json:"profile_completed"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role           Role            `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CountryCode == "" {
		u.CountryCode = DefaultCountryCode
	}
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// EmailValue returns the email address or an empty string.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// PhoneValue returns the phone number or an empty string.
func (u *User) PhoneValue() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}

// IsVerified reports whether the user has verified the channel they sign in with.
func (u *User) IsVerified() bool {
	switch u.AuthMethod {
	case AuthMethodEmail:
		return u.IsEmailVerified
	case AuthMethodPhone:
		return u.IsPhoneVerified
	case AuthMethodBoth:
		return u.IsEmailVerified || u.IsPhoneVerified
	}
	return false
}

// RoleName resolves the role name from the role id.
func (u *User) RoleName() string {
	if u.Role.RoleName != "" {
		return u.Role.RoleName
	}
	return RoleNameByID(u.RoleID)
}

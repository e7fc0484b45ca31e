package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,syrianphone"`
	CountryCode string `json:"country_code" validate:"omitempty,max=5"`
	Password    string `json:"password" validate:"required,strongpassword"`
	Role        string `json:"role" validate:"required,oneof=doctor patient"`
	AuthMethod  string `json:"auth_method" validate:"omitempty,oneof=email phone"`
}

type VerifyRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	OTP        string `json:"otp" validate:"required,numeric,min=4,max=10"`
}

type ResendOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// LoginRequest treats an identifier containing "@" as an email, otherwise a phone number.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// Response DTOs

type RegisterResponse struct {
	UserID               uuid.UUID `json:"user_id"`
	AuthMethod           string    `json:"auth_method"`
	RequiresVerification bool      `json:"requires_verification"`
	Message              string    `json:"message"`
}

type VerifyResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	Status          string    `json:"status"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
}

type UserSummary struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	Email            *string   `json:"email"`
	PhoneNumber      *string   `json:"phone_number"`
	Role             string    `json:"role"`
	ProfileCompleted bool      `json:"profile_completed"`
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *UserSummary `json:"user,omitempty"`
}

type AuthMethodsResponse struct {
	Methods       []string     `json:"methods"`
	PrimaryMethod string       `json:"primary_method"`
	MockMode      bool         `json:"mock_mode"`
	Features      FeatureFlags `json:"features"`
}

type UserResponse struct {
	ID               uuid.UUID               `json:"id"`
	FullName         string                  `json:"full_name"`
	Email            *string                 `json:"email"`
	PhoneNumber      *string                 `json:"phone_number"`
	CountryCode      string                  `json:"country_code"`
	Role             string                  `json:"role"`
	AuthMethod       string                  `json:"auth_method"`
	Status           string                  `json:"status"`
	IsEmailVerified  bool                    `json:"is_email_verified"`
	IsPhoneVerified  bool                    `json:"is_phone_verified"`
	ProfileCompleted bool                    `json:"profile_completed"`
	LastLogin        *time.Time              `json:"last_login,omitempty"`
	DoctorProfile    *DoctorProfileResponse  `json:"doctor_profile,omitempty"`
	PatientProfile   *PatientProfileResponse `json:"patient_profile,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// CreateAdminRequest is used by the admin CLI.
type CreateAdminRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

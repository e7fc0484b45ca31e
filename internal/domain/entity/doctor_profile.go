package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VerificationStatus tracks review of a doctor's certificates.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

const DefaultCurrency = "SYP"

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Bio               string          `gorm:"type:varchar(500)" json:"bio,omitempty"`
	YearsOfExperience int             `gorm:"not null" json:"years_of_experience"`
	SessionDuration   int             `gorm:"not null" json:"session_duration"`
	Schedule          WeeklySchedule  `gorm:"type:jsonb;serializer:json" json:"schedule"`
	City              string          `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Area              string          `gorm:"type:varchar(100)" json:"area,omitempty"`
	DetailedAddress   string          `gorm:"type:varchar(255)" json:"detailed_address,omitempty"`
	ClinicPhone       string          `gorm:"type:varchar(20)" json:"clinic_phone,omitempty"`
	ClinicEmail       string          `gorm:"type:varchar(255)" json:"clinic_email,omitempty"`
	Website           string          `gorm:"type:varchar(255)" json:"website,omitempty"`
	ConsultationFee   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"consultation_fee"`
	Currency          string          `gorm:"type:varchar(3);not null" json:"currency"`
	Rating            float64         `gorm:"type:double precision;not null;index" json:"rating"`
	ReviewsCount      int             `gorm:"not null" json:"reviews_count"`
	DocumentsVerified bool            `gorm:"not null;index" json:"documents_verified"`
	VerifiedAt        *time.Time      `json:"verified_at,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User        User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Specialties []DoctorSpecialty `gorm:"foreignKey:DoctorID;references:UserID" json:"specialties,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (p *DoctorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.SessionDuration == 0 {
		p.SessionDuration = DefaultSessionDuration
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Schedule == nil {
		p.Schedule = WeeklySchedule{}
	}
	return nil
}

// MainSpecialty returns the first listed specialty, if any.
func (p *DoctorProfile) MainSpecialty() string {
	if len(p.Specialties) == 0 {
		return ""
	}
	return p.Specialties[0].MainSpecialty
}

// IsComplete reports whether patients have enough information to book.
func (p *DoctorProfile) IsComplete() bool {
	return len(p.Specialties) > 0 &&
		p.City != "" &&
		p.ConsultationFee.IsPositive() &&
		p.Schedule.HasWorkingDay()
}

// DoctorSpecialty is one specialty claimed by a doctor, with its certificate review.
type DoctorSpecialty struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"doctor_id"`
	MainSpecialty      string             `gorm:"type:varchar(100);not null;index" json:"main_specialty"`
	SubSpecialty       string             `gorm:"type:varchar(100)" json:"sub_specialty,omitempty"`
	CertificateURL     string             `gorm:"type:varchar(500)" json:"certificate_url,omitempty"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null" json:"verification_status"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	RejectionReason    string             `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

func (DoctorSpecialty) TableName() string {
	return "doctor_specialties"
}

func (s *DoctorSpecialty) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.VerificationStatus == "" {
		s.VerificationStatus = VerificationPending
	}
	return nil
}

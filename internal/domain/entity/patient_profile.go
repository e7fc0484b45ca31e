package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	UserID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"user_id"`
	DateOfBirth       *time.Time        `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender            string            `gorm:"type:varchar(10)" json:"gender,omitempty"`
	BloodType         string            `gorm:"type:varchar(3)" json:"blood_type,omitempty"`
	PreferredLanguage string            `gorm:"type:varchar(5);not null" json:"preferred_language"`
	MedicalHistory    *MedicalHistory   `gorm:"type:jsonb;serializer:json" json:"medical_history,omitempty"`
	EmergencyContact  *EmergencyContact `gorm:"type:jsonb;serializer:json" json:"emergency_contact,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

type MedicalHistory struct {
	ChronicDiseases    []string `json:"chronic_diseases"`
	Allergies          []string `json:"allergies"`
	CurrentMedications []string `json:"current_medications"`
	PreviousSurgeries  []string `json:"previous_surgeries"`
	FamilyHistory      []string `json:"family_history"`
	Notes              string   `json:"notes,omitempty"`
}

type EmergencyContact struct {
	Name             string `json:"name"`
	Relationship     string `json:"relationship"`
	PhoneNumber      string `json:"phone_number"`
	AlternativePhone string `json:"alternative_phone,omitempty"`
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

const DefaultPreferredLanguage = "ar"

// IsComplete reports whether the mandatory personal details are present.
func (p *PatientProfile) IsComplete() bool {
	return p.DateOfBirth != nil && p.Gender != ""
}

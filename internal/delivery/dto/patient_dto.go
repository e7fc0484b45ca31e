package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type MedicalHistoryInput struct {
	ChronicDiseases    []string `json:"chronic_diseases" validate:"omitempty,max=50,dive,max=200"`
	Allergies          []string `json:"allergies" validate:"omitempty,max=50,dive,max=200"`
	CurrentMedications []string `json:"current_medications" validate:"omitempty,max=50,dive,max=200"`
	PreviousSurgeries  []string `json:"previous_surgeries" validate:"omitempty,max=50,dive,max=200"`
	FamilyHistory      []string `json:"family_history" validate:"omitempty,max=50,dive,max=200"`
	Notes              string   `json:"notes" validate:"omitempty,max=1000"`
}

type EmergencyContactInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	Relationship     string `json:"relationship" validate:"required,max=50"`
	PhoneNumber      string `json:"phone_number" validate:"required,syrianphone"`
	AlternativePhone string `json:"alternative_phone" validate:"omitempty,syrianphone"`
}

type UpdatePatientProfileRequest struct {
	DateOfBirth       *string                `json:"date_of_birth" validate:"omitempty,isodate"`
	Gender            *string                `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodType         *string                `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PreferredLanguage *string                `json:"preferred_language" validate:"omitempty,oneof=ar en"`
	MedicalHistory    *MedicalHistoryInput   `json:"medical_history"`
	EmergencyContact  *EmergencyContactInput `json:"emergency_contact"`
}

// Response DTOs

type MedicalHistoryResponse struct {
	ChronicDiseases    []string `json:"chronic_diseases"`
	Allergies          []string `json:"allergies"`
	CurrentMedications []string `json:"current_medications"`
	PreviousSurgeries  []string `json:"previous_surgeries"`
	FamilyHistory      []string `json:"family_history"`
	Notes              string   `json:"notes,omitempty"`
}

type EmergencyContactResponse struct {
	Name             string `json:"name"`
	Relationship     string `json:"relationship"`
	PhoneNumber      string `json:"phone_number"`
	AlternativePhone string `json:"alternative_phone,omitempty"`
}

type PatientProfileResponse struct {
	UserID            uuid.UUID                 `json:"user_id"`
	FullName          string                    `json:"full_name"`
	Email             *string                   `json:"email,omitempty"`
	PhoneNumber       *string                   `json:"phone_number,omitempty"`
	DateOfBirth       *string                   `json:"date_of_birth"`
	Gender            string                    `json:"gender,omitempty"`
	BloodType         string                    `json:"blood_type,omitempty"`
	PreferredLanguage string                    `json:"preferred_language"`
	MedicalHistory    *MedicalHistoryResponse   `json:"medical_history,omitempty"`
	EmergencyContact  *EmergencyContactResponse `json:"emergency_contact,omitempty"`
	ProfileCompleted  bool                      `json:"profile_completed"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type DoctorSearchRequest struct {
	Specialty string   `json:"specialty" validate:"omitempty,max=100"`
	City      string   `json:"city" validate:"omitempty,max=100"`
	Name      string   `json:"name" validate:"omitempty,max=100"`
	MinRating *float64 `json:"min_rating" validate:"omitempty,gte=0,lte=5"`
	MaxFee    *float64 `json:"max_fee" validate:"omitempty,gte=0"`
	PageRequest
}

type SpecialtyInput struct {
	MainSpecialty  string `json:"main_specialty" validate:"required,max=100"`
	SubSpecialty   string `json:"sub_specialty" validate:"omitempty,max=100"`
	CertificateURL string `json:"certificate_url" validate:"omitempty,url,max=500"`
}

// UpdateDoctorProfileRequest applies only the fields that are present.
type UpdateDoctorProfileRequest struct {
	Bio               *string          `json:"bio" validate:"omitempty,max=500"`
	YearsOfExperience *int             `json:"years_of_experience" validate:"omitempty,gte=0,lte=50"`
	ConsultationFee   *float64         `json:"consultation_fee" validate:"omitempty,gte=0"`
	ClinicPhone       *string          `json:"clinic_phone" validate:"omitempty,max=20"`
	ClinicEmail       *string          `json:"clinic_email" validate:"omitempty,email,max=255"`
	Website           *string          `json:"website" validate:"omitempty,url,max=255"`
	City              *string          `json:"city" validate:"omitempty,max=100"`
	Area              *string          `json:"area" validate:"omitempty,max=100"`
	DetailedAddress   *string          `json:"detailed_address" validate:"omitempty,max=255"`
	Specialties       []SpecialtyInput `json:"specialties" validate:"omitempty,max=5,dive"`
}

type DayScheduleInput struct {
	IsWorking bool            `json:"is_working"`
	TimeSlots []TimeSlotInput `json:"time_slots" validate:"dive"`
}

type UpdateScheduleRequest struct {
	Schedule        map[string]DayScheduleInput `json:"schedule" validate:"required,dive,keys,weekday,endkeys"`
	SessionDuration *int                        `json:"session_duration" validate:"omitempty,oneof=15 30 60"`
}

type VerifyDoctorDocumentsRequest struct {
	Approved        *bool  `json:"approved" validate:"required"`
	RejectionReason string `json:"rejection_reason" validate:"omitempty,max=500"`
}

// Response DTOs

type SpecialtyResponse struct {
	MainSpecialty      string     `json:"main_specialty"`
	SubSpecialty       string     `json:"sub_specialty,omitempty"`
	CertificateURL     string     `json:"certificate_url,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
}

type DoctorStatsResponse struct {
	TodayAppointments  int64 `json:"today_appointments"`
	WeekAppointments   int64 `json:"week_appointments"`
	TotalPatients      int64 `json:"total_patients"`
	TotalAppointments  int64 `json:"total_appointments"`
	TotalPrescriptions int64 `json:"total_prescriptions"`
}

type DoctorSummaryResponse struct {
	ID                uuid.UUID           `json:"id"`
	FullName          string              `json:"full_name"`
	MainSpecialty     string              `json:"main_specialty"`
	Specialties       []SpecialtyResponse `json:"specialties"`
	YearsOfExperience int                 `json:"years_of_experience"`
	City              string              `json:"city"`
	Area              string              `json:"area,omitempty"`
	ConsultationFee   decimal.Decimal     `json:"consultation_fee"`
	Currency          string              `json:"currency"`
	Rating            float64             `json:"rating"`
	ReviewsCount      int                 `json:"reviews_count"`
	SessionDuration   int                 `json:"session_duration"`
}

type DoctorSearchResponse struct {
	Doctors []DoctorSummaryResponse `json:"doctors"`
	Pagination
}

type DoctorProfileResponse struct {
	ID                uuid.UUID             `json:"id"`
	FullName          string                `json:"full_name"`
	Email             *string               `json:"email,omitempty"`
	PhoneNumber       *string               `json:"phone_number,omitempty"`
	Bio               string                `json:"bio"`
	YearsOfExperience int                   `json:"years_of_experience"`
	SessionDuration   int                   `json:"session_duration"`
	Schedule          entity.WeeklySchedule `json:"schedule"`
	City              string                `json:"city"`
	Area              string                `json:"area"`
	DetailedAddress   string                `json:"detailed_address"`
	ClinicPhone       string                `json:"clinic_phone"`
	ClinicEmail       string                `json:"clinic_email"`
	Website           string                `json:"website"`
	ConsultationFee   decimal.Decimal       `json:"consultation_fee"`
	Currency          string                `json:"currency"`
	Rating            float64               `json:"rating"`
	ReviewsCount      int                   `json:"reviews_count"`
	DocumentsVerified bool                  `json:"documents_verified"`
	VerifiedAt        *time.Time            `json:"verified_at,omitempty"`
	ProfileCompleted  bool                  `json:"profile_completed"`
	Specialties       []SpecialtyResponse   `json:"specialties"`
	Stats             *DoctorStatsResponse  `json:"stats,omitempty"`
}

type ScheduleResponse struct {
	Schedule        entity.WeeklySchedule `json:"schedule"`
	SessionDuration int                   `json:"session_duration"`
}

type DoctorPatientResponse struct {
	PatientID         uuid.UUID `json:"patient_id"`
	FullName          string    `json:"full_name"`
	Email             *string   `json:"email,omitempty"`
	PhoneNumber       *string   `json:"phone_number,omitempty"`
	TotalAppointments int64     `json:"total_appointments"`
	LastAppointment   string    `json:"last_appointment"`
}

type DoctorPatientsResponse struct {
	Patients []DoctorPatientResponse `json:"patients"`
	Pagination
}

type AvailableSlotsResponse struct {
	DoctorID        uuid.UUID         `json:"doctor_id"`
	Date            string            `json:"date"`
	IsWorking       bool              `json:"is_working"`
	SessionDuration int               `json:"session_duration"`
	Slots           []entity.TimeSlot `json:"slots"`
}

type VerifyDoctorDocumentsResponse struct {
	DoctorID           uuid.UUID `json:"doctor_id"`
	DocumentsVerified  bool      `json:"documents_verified"`
	VerificationStatus string    `json:"verification_status"`
}

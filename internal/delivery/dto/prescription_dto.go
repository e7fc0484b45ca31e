package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type MedicineInput struct {
	Name           string `json:"name" validate:"required,max=150"`
	NameAr         string `json:"name_ar" validate:"omitempty,max=150"`
	Dosage         string `json:"dosage" validate:"required,max=100"`
	Frequency      string `json:"frequency" validate:"required,max=100"`
	Duration       string `json:"duration" validate:"required,max=100"`
	Instructions   string `json:"instructions" validate:"omitempty,max=500"`
	InstructionsAr string `json:"instructions_ar" validate:"omitempty,max=500"`
}

type CreatePrescriptionRequest struct {
	PatientID             string          `json:"patient_id" validate:"required,uuid"`
	AppointmentID         string          `json:"appointment_id" validate:"omitempty,uuid"`
	Diagnosis             string          `json:"diagnosis" validate:"omitempty,max=1000"`
	DiagnosisAr           string          `json:"diagnosis_ar" validate:"omitempty,max=1000"`
	Medicines             []MedicineInput `json:"medicines" validate:"required,min=1,dive"`
	GeneralInstructions   string          `json:"general_instructions" validate:"omitempty,max=1000"`
	GeneralInstructionsAr string          `json:"general_instructions_ar" validate:"omitempty,max=1000"`
	ValidUntil            string          `json:"valid_until" validate:"omitempty,isodate"`
}

// UpdatePrescriptionRequest never touches the doctor, patient, appointment or number.
type UpdatePrescriptionRequest struct {
	Diagnosis             *string         `json:"diagnosis" validate:"omitempty,max=1000"`
	DiagnosisAr           *string         `json:"diagnosis_ar" validate:"omitempty,max=1000"`
	Medicines             []MedicineInput `json:"medicines" validate:"omitempty,min=1,dive"`
	GeneralInstructions   *string         `json:"general_instructions" validate:"omitempty,max=1000"`
	GeneralInstructionsAr *string         `json:"general_instructions_ar" validate:"omitempty,max=1000"`
	ValidUntil            *string         `json:"valid_until" validate:"omitempty,isodate"`
}

type MedicineSearchRequest struct {
	Query string `json:"q" validate:"required,min=2,max=100"`
	Limit int    `json:"limit" validate:"gte=1,lte=50"`
}

// Response DTOs

type CreatePrescriptionResponse struct {
	ID                 uuid.UUID `json:"id"`
	PrescriptionNumber string    `json:"prescription_number"`
}

type PrescribedMedicineResponse struct {
	Name           string `json:"name"`
	NameAr         string `json:"name_ar,omitempty"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	Instructions   string `json:"instructions,omitempty"`
	InstructionsAr string `json:"instructions_ar,omitempty"`
}

type PrescriptionResponse struct {
	ID                    uuid.UUID                    `json:"id"`
	PrescriptionNumber    string                       `json:"prescription_number"`
	DoctorID              uuid.UUID                    `json:"doctor_id"`
	PatientID             uuid.UUID                    `json:"patient_id"`
	AppointmentID         *uuid.UUID                   `json:"appointment_id,omitempty"`
	Diagnosis             string                       `json:"diagnosis,omitempty"`
	DiagnosisAr           string                       `json:"diagnosis_ar,omitempty"`
	Medicines             []PrescribedMedicineResponse `json:"medicines"`
	GeneralInstructions   string                       `json:"general_instructions,omitempty"`
	GeneralInstructionsAr string                       `json:"general_instructions_ar,omitempty"`
	ValidUntil            string                       `json:"valid_until"`
	Doctor                *ParticipantResponse         `json:"doctor,omitempty"`
	Patient               *ParticipantResponse         `json:"patient,omitempty"`
	CreatedAt             time.Time                    `json:"created_at"`
	UpdatedAt             time.Time                    `json:"updated_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Pagination
}

type MedicineResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	NameAr      string   `json:"name_ar"`
	DosageForms []string `json:"dosage_forms"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
}

type PrescriptionStatsResponse struct {
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
	Total     int64 `json:"total"`
}

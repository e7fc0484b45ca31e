package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        string        `json:"doctor_id" validate:"required,uuid"`
	AppointmentDate string        `json:"appointment_date" validate:"required,isodate"`
	TimeSlot        TimeSlotInput `json:"time_slot" validate:"required"`
	AppointmentType string        `json:"appointment_type" validate:"omitempty,oneof=consultation follow_up check_up emergency"`
	Reason          string        `json:"reason" validate:"omitempty,max=500"`
}

type AppointmentListRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
	Status    string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed no_show"`
	PageRequest
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed no_show"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type AvailableSlotsRequest struct {
	Date string `json:"date" validate:"required,isodate"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID            `json:"id"`
	DoctorID           uuid.UUID            `json:"doctor_id"`
	PatientID          uuid.UUID            `json:"patient_id"`
	AppointmentDate    string               `json:"appointment_date"`
	StartTime          string               `json:"start_time"`
	EndTime            string               `json:"end_time"`
	Status             string               `json:"status"`
	AppointmentType    string               `json:"appointment_type"`
	Reason             string               `json:"reason,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	ConsultationFee    decimal.Decimal      `json:"consultation_fee"`
	Currency           string               `json:"currency"`
	ConfirmedAt        *time.Time           `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID           `json:"cancelled_by,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	Doctor             *ParticipantResponse `json:"doctor,omitempty"`
	Patient            *ParticipantResponse `json:"patient,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Pagination
}

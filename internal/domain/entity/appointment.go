package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAppointmentClosed       = errors.New("appointment is already closed")
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// InactiveAppointmentStatuses no longer occupy their slot.
var InactiveAppointmentStatuses = []AppointmentStatus{AppointmentStatusCancelled, AppointmentStatusNoShow}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	_, ok := appointmentTransitions[s]
	return !ok
}

// AppointmentType classifies the visit.
type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeCheckUp      AppointmentType = "check_up"
	AppointmentTypeEmergency    AppointmentType = "emergency"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case AppointmentTypeConsultation, AppointmentTypeFollowUp, AppointmentTypeCheckUp, AppointmentTypeEmergency:
		return true
	}
	return false
}

// Appointment books a doctor's time slot on a calendar date for a patient.
// AppointmentDate is stored as midnight UTC of the clinic-local date.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	StartTime          string            `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime            string            `gorm:"type:varchar(5);not null" json:"end_time"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AppointmentType    AppointmentType   `gorm:"type:varchar(20);not null" json:"appointment_type"`
	Reason             string            `gorm:"type:varchar(500)" json:"reason,omitempty"`
	Notes              string            `gorm:"type:varchar(1000)" json:"notes,omitempty"`
	ConsultationFee    decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"consultation_fee"`
	Currency           string            `gorm:"type:varchar(3);not null" json:"currency"`
	ConfirmedAt        *time.Time        `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID        `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancellationReason string            `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	ReminderSentAt     *time.Time        `json:"reminder_sent_at,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentStatusPending
	}
	if a.AppointmentType == "" {
		a.AppointmentType = AppointmentTypeConsultation
	}
	return nil
}

func (a *Appointment) Slot() TimeSlot {
	return TimeSlot{StartTime: a.StartTime, EndTime: a.EndTime}
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	for _, s := range InactiveAppointmentStatuses {
		if a.Status == s {
			return false
		}
	}
	return true
}

// IsParticipant reports whether userID is the doctor or the patient.
func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.DoctorID == userID || a.PatientID == userID
}

func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[a.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the appointment to next and stamps the matching timestamp.
func (a *Appointment) TransitionTo(next AppointmentStatus, actor uuid.UUID, at time.Time) error {
	if !a.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	switch next {
	case AppointmentStatusConfirmed:
		a.ConfirmedAt = &at
	case AppointmentStatusCompleted:
		a.CompletedAt = &at
	case AppointmentStatusCancelled:
		a.CancelledAt = &at
		a.CancelledBy = &actor
	}
	return nil
}

// Cancel cancels a pending or confirmed appointment.
func (a *Appointment) Cancel(actor uuid.UUID, reason string, at time.Time) error {
	if a.Status.IsTerminal() {
		return ErrAppointmentClosed
	}
	if err := a.TransitionTo(AppointmentStatusCancelled, actor, at); err != nil {
		return err
	}
	a.CancellationReason = reason
	return nil
}

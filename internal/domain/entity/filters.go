package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// DoctorSearchFilter is a domain-level filter for the public doctor directory.
type DoctorSearchFilter struct {
	Name      string // substring, case-insensitive
	Specialty string // substring of the main specialty, case-insensitive
	City      string // substring, case-insensitive
	MinRating *float64
	MaxFee    *decimal.Decimal
	Page
}

// AppointmentFilter narrows appointment listings. DoctorID or PatientID
// scopes the listing to one participant.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Status    AppointmentStatus
	Page
}

// PrescriptionFilter narrows prescription listings.
type PrescriptionFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Page
}

// DoctorPatient summarises a patient seen by a doctor.
type DoctorPatient struct {
	PatientID       uuid.UUID
	FullName        string
	Email           *string
	PhoneNumber     *string
	Appointments    int64
	LastAppointment time.Time
}

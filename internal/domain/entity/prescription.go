package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPrescriptionValidity is used when no valid-until date is given.
const DefaultPrescriptionValidity = 30 * 24 * time.Hour

// PrescribedMedicine is one line of a prescription, in the doctor's order.
type PrescribedMedicine struct {
	Name           string `json:"name"`
	NameAr         string `json:"name_ar,omitempty"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	Instructions   string `json:"instructions,omitempty"`
	InstructionsAr string `json:"instructions_ar,omitempty"`
}

type Prescription struct {
	ID                    uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	PrescriptionNumber    string               `gorm:"type:varchar(20);uniqueIndex;not null" json:"prescription_number"`
	DoctorID              uuid.UUID            `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID             uuid.UUID            `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID         *uuid.UUID           `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Diagnosis             string               `gorm:"type:varchar(1000)" json:"diagnosis,omitempty"`
	DiagnosisAr           string               `gorm:"type:varchar(1000)" json:"diagnosis_ar,omitempty"`
	Medicines             []PrescribedMedicine `gorm:"type:jsonb;serializer:json;not null" json:"medicines"`
	GeneralInstructions   string               `gorm:"type:varchar(1000)" json:"general_instructions,omitempty"`
	GeneralInstructionsAr string               `gorm:"type:varchar(1000)" json:"general_instructions_ar,omitempty"`
	ValidUntil            time.Time            `gorm:"type:date;not null" json:"valid_until"`
	CreatedAt             time.Time            `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor      User         `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient     User         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Prescription) IsParticipant(userID uuid.UUID) bool {
	return p.DoctorID == userID || p.PatientID == userID
}

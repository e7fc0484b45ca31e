package repository

import (
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveByDoctorAndDate returns appointments still occupying slots on date.
	FindActiveByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	CountByDoctor(db *gorm.DB, doctorID uuid.UUID, from, to *time.Time, activeOnly bool) (int64, error)
	CountDistinctPatients(db *gorm.DB, doctorID uuid.UUID) (int64, error)
	FindDoctorPatients(db *gorm.DB, doctorID uuid.UUID, page entity.Page) ([]entity.DoctorPatient, int64, error)
	HasRelationship(db *gorm.DB, doctorID, patientID uuid.UUID) (bool, error)
	FindDueReminders(db *gorm.DB, date time.Time) ([]entity.Appointment, error)
	MarkReminderSent(db *gorm.DB, id uuid.UUID, at time.Time) error
}

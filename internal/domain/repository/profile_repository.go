package repository

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error)
	// FindActive returns the profile only when the doctor account is active.
	FindActive(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error)
	// LockForBooking locks the profile row until the transaction ends.
	LockForBooking(db *gorm.DB, doctorID uuid.UUID) error
	Search(db *gorm.DB, filter entity.DoctorSearchFilter) ([]entity.DoctorProfile, int64, error)
	DistinctSpecialties(db *gorm.DB) ([]string, error)
	DistinctCities(db *gorm.DB) ([]string, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
	ReplaceSpecialties(db *gorm.DB, doctorID uuid.UUID, specialties []entity.DoctorSpecialty) error
	UpdateSpecialtiesStatus(db *gorm.DB, doctorID uuid.UUID, status entity.VerificationStatus, reason string) error
}

type PatientProfileRepository interface {
	Create(db *gorm.DB, profile *entity.PatientProfile) error
	FindByUserID(db *gorm.DB, patientID uuid.UUID) (*entity.PatientProfile, error)
	Update(db *gorm.DB, profile *entity.PatientProfile) error
}

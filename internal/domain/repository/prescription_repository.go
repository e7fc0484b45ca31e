package repository

import (
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *entity.Prescription) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Prescription, error)
	NumberExists(db *gorm.DB, number string) (bool, error)
	FindAll(db *gorm.DB, filter entity.PrescriptionFilter) ([]entity.Prescription, int64, error)
	Update(db *gorm.DB, prescription *entity.Prescription) error
	CountByDoctor(db *gorm.DB, doctorID uuid.UUID, since *time.Time) (int64, error)
}

type MedicineRepository interface {
	Search(db *gorm.DB, query string, limit int) ([]entity.Medicine, error)
	Upsert(db *gorm.DB, medicines []entity.Medicine) (int64, error)
}

package repository

import (
	"errors"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	domainRepo "github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type prescriptionRepository struct{}

func NewPrescriptionRepository() domainRepo.PrescriptionRepository {
	return &prescriptionRepository{}
}

func (r *prescriptionRepository) Create(db *gorm.DB, prescription *entity.Prescription) error {
	return db.Omit(clause.Associations).Create(prescription).Error
}

func (r *prescriptionRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := db.
		Preload("Doctor").
		Preload("Patient").
		Where("id = ?", id).
		First(&prescription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) NumberExists(db *gorm.DB, number string) (bool, error) {
	var count int64
	err := db.Model(&entity.Prescription{}).Where("prescription_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *prescriptionRepository) FindAll(db *gorm.DB, filter entity.PrescriptionFilter) ([]entity.Prescription, int64, error) {
	query := db.Model(&entity.Prescription{})
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var prescriptions []entity.Prescription
	query = query.
		Preload("Doctor").
		Preload("Patient").
		Order("created_at DESC, prescription_number DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit)
	}
	if err := query.Find(&prescriptions).Error; err != nil {
		return nil, 0, err
	}
	return prescriptions, total, nil
}

func (r *prescriptionRepository) Update(db *gorm.DB, prescription *entity.Prescription) error {
	return db.Omit(clause.Associations).Save(prescription).Error
}

func (r *prescriptionRepository) CountByDoctor(db *gorm.DB, doctorID uuid.UUID, since *time.Time) (int64, error) {
	query := db.Model(&entity.Prescription{}).Where("doctor_id = ?", doctorID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

const medicineUpsertBatchSize = 200

type medicineRepository struct{}

func NewMedicineRepository() domainRepo.MedicineRepository {
	return &medicineRepository{}
}

func (r *medicineRepository) Search(db *gorm.DB, query string, limit int) ([]entity.Medicine, error) {
	pattern := containsPattern(query)
	var medicines []entity.Medicine
	err := db.
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\' OR name_ar LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

// Upsert inserts catalog entries keyed by name, refreshing existing rows.
func (r *medicineRepository) Upsert(db *gorm.DB, medicines []entity.Medicine) (int64, error) {
	var affected int64
	for i := 0; i < len(medicines); i += medicineUpsertBatchSize {
		end := i + medicineUpsertBatchSize
		if end > len(medicines) {
			end = len(medicines)
		}
		chunk := medicines[i:end]

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"name_ar", "dosage_forms", "category", "description"}),
		}).Create(&chunk)
		if res.Error != nil {
			return affected, res.Error
		}
		affected += res.RowsAffected
	}
	return affected, nil
}

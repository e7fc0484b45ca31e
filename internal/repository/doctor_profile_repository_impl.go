package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	domainRepo "github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches term literally anywhere in a column compared
// with LIKE ... ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func preloadSpecialties(db *gorm.DB) *gorm.DB {
	return db.Order("doctor_specialties.created_at ASC, doctor_specialties.id ASC")
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit(clause.Associations).Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.
		Preload("User.Role").
		Preload("Specialties", preloadSpecialties).
		Where("user_id = ?", doctorID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindActive(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Preload("User.Role").
		Preload("Specialties", preloadSpecialties).
		Where("doctor_profiles.user_id = ? AND users.status = ? AND users.role_id = ?",
			doctorID, entity.UserStatusActive, entity.RoleIDDoctor).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// LockForBooking takes a row lock on the doctor's profile so bookings of
// the same doctor commit one at a time.
func (r *doctorProfileRepository) LockForBooking(db *gorm.DB, doctorID uuid.UUID) error {
	var profile entity.DoctorProfile
	return db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("user_id").
		Where("user_id = ?", doctorID).
		Take(&profile).Error
}

func (r *doctorProfileRepository) Search(db *gorm.DB, filter entity.DoctorSearchFilter) ([]entity.DoctorProfile, int64, error) {
	query := db.Model(&entity.DoctorProfile{}).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.status = ? AND users.role_id = ?", entity.UserStatusActive, entity.RoleIDDoctor).
		Where("doctor_profiles.documents_verified = ?", true)

	if filter.Name != "" {
		query = query.Where(`LOWER(users.full_name) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.Name))
	}
	if filter.City != "" {
		query = query.Where(`LOWER(doctor_profiles.city) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.City))
	}
	if filter.Specialty != "" {
		query = query.Where(`EXISTS (SELECT 1 FROM doctor_specialties ds
			WHERE ds.doctor_id = doctor_profiles.user_id AND LOWER(ds.main_specialty) LIKE LOWER(?) ESCAPE '\')`,
			containsPattern(filter.Specialty))
	}
	if filter.MinRating != nil {
		query = query.Where("doctor_profiles.rating >= ?", *filter.MinRating)
	}
	if filter.MaxFee != nil {
		query = query.Where("doctor_profiles.consultation_fee <= ?", *filter.MaxFee)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []entity.DoctorProfile
	err := query.
		Preload("User").
		Preload("Specialties", preloadSpecialties).
		Order("doctor_profiles.rating DESC, users.full_name ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *doctorProfileRepository) DistinctSpecialties(db *gorm.DB) ([]string, error) {
	var values []string
	err := db.Model(&entity.DoctorSpecialty{}).
		Joins("JOIN users ON users.id = doctor_specialties.doctor_id").
		Where("users.status = ? AND doctor_specialties.main_specialty <> ''", entity.UserStatusActive).
		Distinct("doctor_specialties.main_specialty").
		Order("doctor_specialties.main_specialty").
		Pluck("doctor_specialties.main_specialty", &values).Error
	return values, err
}

func (r *doctorProfileRepository) DistinctCities(db *gorm.DB) ([]string, error) {
	var values []string
	err := db.Model(&entity.DoctorProfile{}).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.status = ? AND doctor_profiles.city <> ''", entity.UserStatusActive).
		Distinct("doctor_profiles.city").
		Order("doctor_profiles.city").
		Pluck("doctor_profiles.city", &values).Error
	return values, err
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit(clause.Associations).Save(profile).Error
}

// ReplaceSpecialties swaps the doctor's specialty list. Run it inside a transaction.
func (r *doctorProfileRepository) ReplaceSpecialties(db *gorm.DB, doctorID uuid.UUID, specialties []entity.DoctorSpecialty) error {
	if err := db.Where("doctor_id = ?", doctorID).Delete(&entity.DoctorSpecialty{}).Error; err != nil {
		return err
	}
	if len(specialties) == 0 {
		return nil
	}
	// created_at carries the list order
	base := time.Now().UTC()
	for i := range specialties {
		specialties[i].DoctorID = doctorID
		specialties[i].CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
	}
	return db.Create(&specialties).Error
}

func (r *doctorProfileRepository) UpdateSpecialtiesStatus(db *gorm.DB, doctorID uuid.UUID, status entity.VerificationStatus, reason string) error {
	fields := map[string]interface{}{
		"verification_status": status,
		"rejection_reason":    reason,
		"verified_at":         nil,
	}
	if status == entity.VerificationApproved {
		fields["verified_at"] = time.Now().UTC()
		fields["rejection_reason"] = ""
	}
	return db.Model(&entity.DoctorSpecialty{}).Where("doctor_id = ?", doctorID).Updates(fields).Error
}

type patientProfileRepository struct{}

func NewPatientProfileRepository() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{}
}

func (r *patientProfileRepository) Create(db *gorm.DB, profile *entity.PatientProfile) error {
	return db.Omit(clause.Associations).Create(profile).Error
}

func (r *patientProfileRepository) FindByUserID(db *gorm.DB, patientID uuid.UUID) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := db.Preload("User.Role").Where("user_id = ?", patientID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) Update(db *gorm.DB, profile *entity.PatientProfile) error {
	return db.Omit(clause.Associations).Save(profile).Error
}

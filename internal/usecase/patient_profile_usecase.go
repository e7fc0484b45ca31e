package usecase

import (
	"context"
	"errors"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/converter"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientProfileNotFound = errors.New("patient profile not found")
)

type PatientProfileUsecase interface {
	GetMyProfile(ctx context.Context) (*dto.PatientProfileResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetMyProfile(ctx context.Context) (*dto.PatientProfileResponse, error) {
	userID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientProfileNotFound
	}

	return converter.PatientProfileToResponse(profile), nil
}

// UpdateMyProfile applies the fields present in req. Medical history and
// emergency contact are replaced as a whole.
func (u *patientProfileUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	userID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.DateOfBirth == nil && req.Gender == nil && req.BloodType == nil &&
		req.PreferredLanguage == nil && req.MedicalHistory == nil && req.EmergencyContact == nil {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.patientProfileRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientProfileNotFound
	}

	oldValue := converter.PatientProfileToResponse(profile)

	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		profile.DateOfBirth = &dob
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.BloodType != nil {
		profile.BloodType = *req.BloodType
	}
	if req.PreferredLanguage != nil {
		profile.PreferredLanguage = *req.PreferredLanguage
	}
	if req.MedicalHistory != nil {
		profile.MedicalHistory = converter.MedicalHistoryFromInput(req.MedicalHistory)
	}
	if req.EmergencyContact != nil {
		profile.EmergencyContact = converter.EmergencyContactFromInput(req.EmergencyContact)
	}

	if err := u.patientProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, err
	}

	if completed := profile.IsComplete(); completed != profile.User.ProfileCompleted {
		if err := u.userRepo.UpdateFields(tx, userID, map[string]interface{}{"profile_completed": completed}); err != nil {
			u.log.Warnf("Failed to update profile_completed: %+v", err)
			return nil, err
		}
		profile.User.ProfileCompleted = completed
	}

	newValue := converter.PatientProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionPatientProfile, "patient_profile", userID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient profile updated: id=%s", userID)
	return newValue, nil
}

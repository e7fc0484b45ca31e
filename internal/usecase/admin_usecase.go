package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRejectionReasonRequired = errors.New("rejection_reason is required when rejecting documents")
	ErrEmptyMedicineCatalog    = errors.New("medicine catalog is empty")
)

type AdminUsecase interface {
	VerifyDoctorDocuments(ctx context.Context, doctorID uuid.UUID, req *dto.VerifyDoctorDocumentsRequest) (*dto.VerifyDoctorDocumentsResponse, error)
	ImportMedicines(ctx context.Context, r io.Reader) (int64, error)
}

type adminUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	medicineRepo      repository.MedicineRepository
	auditService      service.AuditService
	now               func() time.Time
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	medicineRepo repository.MedicineRepository,
	auditService service.AuditService,
) AdminUsecase {
	return &adminUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		medicineRepo:      medicineRepo,
		auditService:      auditService,
		now:               time.Now,
	}
}

// VerifyDoctorDocuments approves or rejects every specialty certificate of
// the doctor and sets documents_verified accordingly.
func (u *adminUsecase) VerifyDoctorDocuments(ctx context.Context, doctorID uuid.UUID, req *dto.VerifyDoctorDocumentsRequest) (*dto.VerifyDoctorDocumentsResponse, error) {
	adminID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	approved := *req.Approved
	reason := strings.TrimSpace(req.RejectionReason)
	if !approved && reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	status := entity.VerificationRejected
	if approved {
		status = entity.VerificationApproved
		reason = ""
	}
	if err := u.doctorProfileRepo.UpdateSpecialtiesStatus(tx, doctorID, status, reason); err != nil {
		u.log.Warnf("Failed to update specialty status of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	old := profile.DocumentsVerified
	profile.DocumentsVerified = approved
	profile.VerifiedAt = nil
	if approved {
		at := u.now().UTC()
		profile.VerifiedAt = &at
	}
	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile %s: %+v", doctorID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &adminID, entity.AuditActionDoctorVerification, "doctor_profile", doctorID.String(),
		map[string]interface{}{"documents_verified": old},
		map[string]interface{}{"documents_verified": approved, "verification_status": status, "rejection_reason": reason},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor documents reviewed: doctor=%s, status=%s, admin=%s", doctorID, status, adminID)
	return &dto.VerifyDoctorDocumentsResponse{
		DoctorID:           doctorID,
		DocumentsVerified:  approved,
		VerificationStatus: string(status),
	}, nil
}

type medicineRecord struct {
	Name        string   `json:"name"`
	NameAr      string   `json:"name_ar"`
	DosageForms []string `json:"dosage_forms"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

// ImportMedicines reads a JSON array of catalog entries and upserts them by name.
func (u *adminUsecase) ImportMedicines(ctx context.Context, r io.Reader) (int64, error) {
	var records []medicineRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode medicine catalog: %w", err)
	}

	medicines := make([]entity.Medicine, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return 0, fmt.Errorf("medicine %d: name is required", i)
		}
		if rec.DosageForms == nil {
			rec.DosageForms = []string{}
		}
		medicines = append(medicines, entity.Medicine{
			Name:        name,
			NameAr:      strings.TrimSpace(rec.NameAr),
			DosageForms: rec.DosageForms,
			Category:    rec.Category,
			Description: rec.Description,
		})
	}
	if len(medicines) == 0 {
		return 0, ErrEmptyMedicineCatalog
	}

	n, err := u.medicineRepo.Upsert(u.db.WithContext(ctx), medicines)
	if err != nil {
		u.log.Warnf("Failed to upsert medicines: %+v", err)
		return 0, err
	}

	u.log.Infof("Medicine catalog imported: %d entries", n)
	return n, nil
}

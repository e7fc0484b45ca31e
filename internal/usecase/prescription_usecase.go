package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/converter"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrAppointmentMismatch   = errors.New("appointment does not belong to this doctor and patient")
	ErrPrescriptionNumberGen = errors.New("could not allocate a unique prescription number")
)

const (
	prescriptionNumberAttempts = 10
	defaultMedicineLimit       = 10
)

type PrescriptionUsecase interface {
	CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.CreatePrescriptionResponse, error)
	GetMyPrescriptions(ctx context.Context, req *dto.PageRequest) (*dto.PrescriptionListResponse, error)
	GetPrescription(ctx context.Context, prescriptionID uuid.UUID) (*dto.PrescriptionResponse, error)
	UpdatePrescription(ctx context.Context, prescriptionID uuid.UUID, req *dto.UpdatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	SearchMedicines(ctx context.Context, req *dto.MedicineSearchRequest) ([]dto.MedicineResponse, error)
	GetStats(ctx context.Context) (*dto.PrescriptionStatsResponse, error)
	GetPatientPrescriptions(ctx context.Context, patientID uuid.UUID, req *dto.PageRequest) (*dto.PrescriptionListResponse, error)
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	loc              *time.Location
	userRepo         repository.UserRepository
	appointmentRepo  repository.AppointmentRepository
	prescriptionRepo repository.PrescriptionRepository
	medicineRepo     repository.MedicineRepository
	auditService     service.AuditService
	now              func() time.Time
	newNumber        func(year int) (string, error)
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	medicineRepo repository.MedicineRepository,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		loc:              cfg.Location(),
		userRepo:         userRepo,
		appointmentRepo:  appointmentRepo,
		prescriptionRepo: prescriptionRepo,
		medicineRepo:     medicineRepo,
		auditService:     auditService,
		now:              time.Now,
		newNumber:        randomPrescriptionNumber,
	}
}

// randomPrescriptionNumber formats RX-<year>-<6 random digits>.
func randomPrescriptionNumber(year int) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RX-%d-%06d", year, n.Int64()), nil
}

func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.CreatePrescriptionResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	patientID, err := parseID(req.PatientID)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	patient, err := u.userRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil || patient.RoleID != entity.RoleIDPatient || !patient.IsActive() {
		return nil, ErrPatientNotFound
	}

	var appointmentID *uuid.UUID
	if req.AppointmentID != "" {
		id, err := parseID(req.AppointmentID)
		if err != nil {
			return nil, err
		}
		appointment, err := u.appointmentRepo.FindByID(db, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return nil, err
		}
		if appointment == nil {
			return nil, ErrAppointmentNotFound
		}
		if appointment.DoctorID != doctorID || appointment.PatientID != patientID {
			return nil, ErrAppointmentMismatch
		}
		appointmentID = &id
	}

	now := u.now()
	validUntil := calendarDate(now.Add(entity.DefaultPrescriptionValidity), u.loc)
	if req.ValidUntil != "" {
		if validUntil, err = parseDate(req.ValidUntil); err != nil {
			return nil, err
		}
	}

	prescription := &entity.Prescription{
		DoctorID:              doctorID,
		PatientID:             patientID,
		AppointmentID:         appointmentID,
		Diagnosis:             req.Diagnosis,
		DiagnosisAr:           req.DiagnosisAr,
		Medicines:             converter.MedicinesFromInput(req.Medicines),
		GeneralInstructions:   req.GeneralInstructions,
		GeneralInstructionsAr: req.GeneralInstructionsAr,
		ValidUntil:            validUntil,
	}

	year := now.In(u.loc).Year()
	for attempt := 0; attempt < prescriptionNumberAttempts; attempt++ {
		number, err := u.newNumber(year)
		if err != nil {
			u.log.Warnf("Failed to generate prescription number: %+v", err)
			return nil, err
		}
		exists, err := u.prescriptionRepo.NumberExists(db, number)
		if err != nil {
			u.log.Warnf("Failed to check prescription number: %+v", err)
			return nil, err
		}
		if exists {
			continue
		}

		prescription.ID = uuid.Nil
		prescription.PrescriptionNumber = number
		err = u.insertPrescription(ctx, doctorID, prescription)
		if isUniqueViolation(err) {
			// lost the race for this number
			continue
		}
		if err != nil {
			return nil, err
		}

		u.log.Infof("Prescription created: id=%s, number=%s, doctor=%s", prescription.ID, number, doctorID)
		return &dto.CreatePrescriptionResponse{
			ID:                 prescription.ID,
			PrescriptionNumber: number,
		}, nil
	}

	u.log.Warnf("Failed to allocate prescription number after %d attempts", prescriptionNumberAttempts)
	return nil, ErrPrescriptionNumberGen
}

func (u *prescriptionUsecase) insertPrescription(ctx context.Context, doctorID uuid.UUID, prescription *entity.Prescription) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
		if !isUniqueViolation(err) {
			u.log.Warnf("Failed to create prescription: %+v", err)
		}
		return err
	}
	if err := u.auditService.LogCreate(ctx, tx, &doctorID, entity.AuditActionPrescriptionCreate, "prescription", prescription.ID.String(), map[string]string{
		"prescription_number": prescription.PrescriptionNumber,
		"patient_id":          prescription.PatientID.String(),
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

func (u *prescriptionUsecase) GetMyPrescriptions(ctx context.Context, req *dto.PageRequest) (*dto.PrescriptionListResponse, error) {
	userID, roleID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	filter := entity.PrescriptionFilter{Page: toPage(*req)}
	switch roleID {
	case entity.RoleIDDoctor:
		filter.DoctorID = &userID
	case entity.RoleIDPatient:
		filter.PatientID = &userID
	default:
		return nil, ErrForbidden
	}

	return u.list(ctx, filter)
}

// GetPatientPrescriptions returns only what the calling doctor prescribed to the patient.
func (u *prescriptionUsecase) GetPatientPrescriptions(ctx context.Context, patientID uuid.UUID, req *dto.PageRequest) (*dto.PrescriptionListResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	return u.list(ctx, entity.PrescriptionFilter{
		DoctorID:  &doctorID,
		PatientID: &patientID,
		Page:      toPage(*req),
	})
}

func (u *prescriptionUsecase) list(ctx context.Context, filter entity.PrescriptionFilter) (*dto.PrescriptionListResponse, error) {
	prescriptions, total, err := u.prescriptionRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions: %+v", err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Pagination:    dto.NewPagination(filter.Page.Page, filter.Page.Limit, total),
	}, nil
}

func (u *prescriptionUsecase) GetPrescription(ctx context.Context, prescriptionID uuid.UUID) (*dto.PrescriptionResponse, error) {
	userID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	prescription, err := u.prescriptionRepo.FindByID(u.db.WithContext(ctx), prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	if !prescription.IsParticipant(userID) {
		return nil, ErrForbidden
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) UpdatePrescription(ctx context.Context, prescriptionID uuid.UUID, req *dto.UpdatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.Diagnosis == nil && req.DiagnosisAr == nil && req.Medicines == nil &&
		req.GeneralInstructions == nil && req.GeneralInstructionsAr == nil && req.ValidUntil == nil {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	prescription, err := u.prescriptionRepo.FindByID(tx, prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	if prescription.DoctorID != doctorID {
		return nil, ErrForbidden
	}

	if req.Diagnosis != nil {
		prescription.Diagnosis = *req.Diagnosis
	}
	if req.DiagnosisAr != nil {
		prescription.DiagnosisAr = *req.DiagnosisAr
	}
	if req.Medicines != nil {
		prescription.Medicines = converter.MedicinesFromInput(req.Medicines)
	}
	if req.GeneralInstructions != nil {
		prescription.GeneralInstructions = *req.GeneralInstructions
	}
	if req.GeneralInstructionsAr != nil {
		prescription.GeneralInstructionsAr = *req.GeneralInstructionsAr
	}
	if req.ValidUntil != nil {
		validUntil, err := parseDate(*req.ValidUntil)
		if err != nil {
			return nil, err
		}
		prescription.ValidUntil = validUntil
	}

	if err := u.prescriptionRepo.Update(tx, prescription); err != nil {
		u.log.Warnf("Failed to update prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if err := u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionPrescriptionUpdate, "prescription", prescriptionID.String(), nil, req); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) SearchMedicines(ctx context.Context, req *dto.MedicineSearchRequest) ([]dto.MedicineResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultMedicineLimit
	}

	medicines, err := u.medicineRepo.Search(u.db.WithContext(ctx), req.Query, limit)
	if err != nil {
		u.log.Warnf("Failed to search medicines: %+v", err)
		return nil, err
	}
	return converter.MedicinesToResponses(medicines), nil
}

func (u *prescriptionUsecase) GetStats(ctx context.Context) (*dto.PrescriptionStatsResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	local := u.now().In(u.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, u.loc)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, u.loc)

	var stats dto.PrescriptionStatsResponse
	g, gctx := errgroup.WithContext(ctx)
	db := u.db.WithContext(gctx)

	counters := []struct {
		since *time.Time
		dst   *int64
	}{
		{&today, &stats.Today},
		{&weekStart, &stats.ThisWeek},
		{&monthStart, &stats.ThisMonth},
		{nil, &stats.Total},
	}
	for _, c := range counters {
		g.Go(func() error {
			n, err := u.prescriptionRepo.CountByDoctor(db, doctorID, c.since)
			*c.dst = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to compute prescription stats for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return &stats, nil
}

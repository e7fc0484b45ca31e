package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/converter"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorProfileNotFound = errors.New("doctor profile not found")
	ErrInvalidSchedule       = errors.New("invalid schedule")
)

type DoctorProfileUsecase interface {
	Search(ctx context.Context, req *dto.DoctorSearchRequest) (*dto.DoctorSearchResponse, error)
	Specialties(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error)
	GetMyProfile(ctx context.Context) (*dto.DoctorProfileResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	UpdateSchedule(ctx context.Context, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	GetStats(ctx context.Context) (*dto.DoctorStatsResponse, error)
	MyPatients(ctx context.Context, req *dto.PageRequest) (*dto.DoctorPatientsResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	features          config.FeatureConfig
	loc               *time.Location
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	prescriptionRepo  repository.PrescriptionRepository
	slots             service.SlotCoordinator
	auditService      service.AuditService
	now               func() time.Time
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	slots service.SlotCoordinator,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		features:          cfg.Features,
		loc:               cfg.Location(),
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		prescriptionRepo:  prescriptionRepo,
		slots:             slots,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *doctorProfileUsecase) Search(ctx context.Context, req *dto.DoctorSearchRequest) (*dto.DoctorSearchResponse, error) {
	page := toPage(req.PageRequest)
	filter := entity.DoctorSearchFilter{
		Name:      strings.TrimSpace(req.Name),
		Specialty: strings.TrimSpace(req.Specialty),
		City:      strings.TrimSpace(req.City),
		MinRating: req.MinRating,
		Page:      page,
	}
	if req.MaxFee != nil {
		fee := decimal.NewFromFloat(*req.MaxFee)
		filter.MaxFee = &fee
	}

	profiles, total, err := u.doctorProfileRepo.Search(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorSearchResponse{
		Doctors:    converter.DoctorProfilesToSummaries(profiles),
		Pagination: dto.NewPagination(page.Page, page.Limit, total),
	}, nil
}

func (u *doctorProfileUsecase) Specialties(ctx context.Context) ([]string, error) {
	specialties, err := u.doctorProfileRepo.DistinctSpecialties(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list specialties: %+v", err)
		return nil, err
	}
	return specialties, nil
}

func (u *doctorProfileUsecase) Cities(ctx context.Context) ([]string, error) {
	cities, err := u.doctorProfileRepo.DistinctCities(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list cities: %+v", err)
		return nil, err
	}
	return cities, nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorProfileRepo.FindActive(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return u.withStats(ctx, profile)
}

func (u *doctorProfileUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorProfileResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorProfileNotFound
	}
	return u.withStats(ctx, profile)
}

func (u *doctorProfileUsecase) withStats(ctx context.Context, profile *entity.DoctorProfile) (*dto.DoctorProfileResponse, error) {
	stats, err := u.stats(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	response := converter.DoctorProfileToResponse(profile)
	response.Stats = stats
	return response, nil
}

func (u *doctorProfileUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if isEmptyDoctorUpdate(req) {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorProfileNotFound
	}

	applyDoctorUpdate(profile, req)

	if req.Specialties != nil {
		specialties := converter.SpecialtiesFromInput(req.Specialties)
		if err := u.doctorProfileRepo.ReplaceSpecialties(tx, doctorID, specialties); err != nil {
			u.log.Warnf("Failed to replace specialties: %+v", err)
			return nil, err
		}
		status := entity.VerificationPending
		profile.DocumentsVerified = false
		profile.VerifiedAt = nil
		if u.features.AutoApproveDocuments {
			now := u.now()
			status = entity.VerificationApproved
			profile.DocumentsVerified = true
			profile.VerifiedAt = &now
		}
		if err := u.doctorProfileRepo.UpdateSpecialtiesStatus(tx, doctorID, status, ""); err != nil {
			u.log.Warnf("Failed to update specialty status: %+v", err)
			return nil, err
		}
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	profile, err = u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to reload doctor profile: %+v", err)
		return nil, err
	}
	if err := u.syncProfileCompleted(tx, profile); err != nil {
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionDoctorProfileUpdate, "doctor_profile", doctorID.String(), nil, req); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor profile updated: id=%s", doctorID)
	return converter.DoctorProfileToResponse(profile), nil
}

func isEmptyDoctorUpdate(req *dto.UpdateDoctorProfileRequest) bool {
	return req.Bio == nil && req.YearsOfExperience == nil && req.ConsultationFee == nil &&
		req.ClinicPhone == nil && req.ClinicEmail == nil && req.Website == nil &&
		req.City == nil && req.Area == nil && req.DetailedAddress == nil && req.Specialties == nil
}

func applyDoctorUpdate(profile *entity.DoctorProfile, req *dto.UpdateDoctorProfileRequest) {
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = *req.YearsOfExperience
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = decimal.NewFromFloat(*req.ConsultationFee).Round(2)
	}
	if req.ClinicPhone != nil {
		profile.ClinicPhone = *req.ClinicPhone
	}
	if req.ClinicEmail != nil {
		profile.ClinicEmail = *req.ClinicEmail
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}
	if req.City != nil {
		profile.City = strings.TrimSpace(*req.City)
	}
	if req.Area != nil {
		profile.Area = *req.Area
	}
	if req.DetailedAddress != nil {
		profile.DetailedAddress = *req.DetailedAddress
	}
}

// syncProfileCompleted stores the completion flag derived from the profile.
func (u *doctorProfileUsecase) syncProfileCompleted(tx *gorm.DB, profile *entity.DoctorProfile) error {
	completed := profile.IsComplete()
	if profile.User.ProfileCompleted == completed {
		return nil
	}
	if err := u.userRepo.UpdateFields(tx, profile.UserID, map[string]interface{}{"profile_completed": completed}); err != nil {
		u.log.Warnf("Failed to update profile_completed: %+v", err)
		return err
	}
	profile.User.ProfileCompleted = completed
	return nil
}

func (u *doctorProfileUsecase) UpdateSchedule(ctx context.Context, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	schedule := converter.ScheduleFromInput(req.Schedule).Normalize()
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorProfileNotFound
	}

	old := profile.Schedule
	profile.Schedule = schedule
	if req.SessionDuration != nil {
		profile.SessionDuration = *req.SessionDuration
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update schedule: %+v", err)
		return nil, err
	}
	if err := u.syncProfileCompleted(tx, profile); err != nil {
		return nil, err
	}
	if err := u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionDoctorSchedule, "doctor_profile", doctorID.String(), old, schedule); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if err := u.slots.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate cached slots of doctor %s: %+v", doctorID, err)
	}

	u.log.Infof("Doctor schedule updated: id=%s, session=%d", doctorID, profile.SessionDuration)
	return &dto.ScheduleResponse{
		Schedule:        profile.Schedule,
		SessionDuration: profile.SessionDuration,
	}, nil
}

func (u *doctorProfileUsecase) GetStats(ctx context.Context) (*dto.DoctorStatsResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return u.stats(ctx, doctorID)
}

// stats runs the dashboard counters concurrently.
func (u *doctorProfileUsecase) stats(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorStatsResponse, error) {
	today := calendarDate(u.now(), u.loc)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 6)

	var stats dto.DoctorStatsResponse
	g, gctx := errgroup.WithContext(ctx)
	db := u.db.WithContext(gctx)

	g.Go(func() error {
		n, err := u.appointmentRepo.CountByDoctor(db, doctorID, &today, &today, true)
		stats.TodayAppointments = n
		return err
	})
	g.Go(func() error {
		n, err := u.appointmentRepo.CountByDoctor(db, doctorID, &weekStart, &weekEnd, true)
		stats.WeekAppointments = n
		return err
	})
	g.Go(func() error {
		n, err := u.appointmentRepo.CountDistinctPatients(db, doctorID)
		stats.TotalPatients = n
		return err
	})
	g.Go(func() error {
		n, err := u.appointmentRepo.CountByDoctor(db, doctorID, nil, nil, false)
		stats.TotalAppointments = n
		return err
	})
	g.Go(func() error {
		n, err := u.prescriptionRepo.CountByDoctor(db, doctorID, nil)
		stats.TotalPrescriptions = n
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to compute stats for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return &stats, nil
}

func (u *doctorProfileUsecase) MyPatients(ctx context.Context, req *dto.PageRequest) (*dto.DoctorPatientsResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	page := toPage(*req)
	patients, total, err := u.appointmentRepo.FindDoctorPatients(u.db.WithContext(ctx), doctorID, page)
	if err != nil {
		u.log.Warnf("Failed to find patients of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.DoctorPatientsResponse{
		Patients:   converter.DoctorPatientsToResponses(patients),
		Pagination: dto.NewPagination(page.Page, page.Limit, total),
	}, nil
}

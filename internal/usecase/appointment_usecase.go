package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/converter"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrDoctorUnavailable     = errors.New("doctor not found or unavailable")
	ErrPastDate              = errors.New("cannot book appointments in the past")
	ErrSlotInPast            = errors.New("time slot has already started")
	ErrInvalidTimeSlot       = errors.New("invalid time slot")
	ErrScheduleNotConfigured = errors.New("doctor schedule not configured")
	ErrDoctorNotWorking      = errors.New("doctor doesn't work on this day")
	ErrOutsideWorkingHours   = errors.New("time slot is outside working hours")
	ErrSlotAlreadyBooked     = errors.New("time slot already booked")
	ErrSlotBeingBooked       = errors.New("time slot is being booked, please try again")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error)
	GetTodayAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error)
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	loc               *time.Location
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	slots             service.SlotCoordinator
	auditService      service.AuditService
	now               func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	slots service.SlotCoordinator,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		loc:               cfg.Location(),
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		slots:             slots,
		auditService:      auditService,
		now:               time.Now,
	}
}

// CreateAppointment books a slot for the calling patient.
//
// Competing requests for the same doctor and day are serialized by a short
// hold in the slot coordinator and by a row lock on the doctor's profile, so
// the overlap check always sees every committed booking of that day. The
// partial unique index on active appointments rejects identical slots that
// still slip through.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	doctorID, err := parseID(req.DoctorID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	slot := entity.TimeSlot{StartTime: req.TimeSlot.StartTime, EndTime: req.TimeSlot.EndTime}
	if err := slot.Validate(); err != nil {
		return nil, ErrInvalidTimeSlot
	}

	now := u.now()
	today := calendarDate(now, u.loc)
	if date.Before(today) {
		return nil, ErrPastDate
	}
	if date.Equal(today) && slot.StartTime <= now.In(u.loc).Format("15:04") {
		return nil, ErrSlotInPast
	}

	profile, err := u.doctorProfileRepo.FindActive(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorUnavailable
	}
	if err := checkWorkingHours(profile.Schedule, date, slot); err != nil {
		return nil, err
	}

	release, err := u.slots.Hold(ctx, doctorID, date)
	if err != nil {
		if errors.Is(err, service.ErrSlotHeld) {
			return nil, ErrSlotBeingBooked
		}
		u.log.Warnf("Failed to hold slot %s %s %s: %+v", doctorID, req.AppointmentDate, slot, err)
		return nil, err
	}
	defer release()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.doctorProfileRepo.LockForBooking(tx, doctorID); err != nil {
		u.log.Warnf("Failed to lock doctor %s for booking: %+v", doctorID, err)
		return nil, err
	}

	booked, err := u.appointmentRepo.FindActiveByDoctorAndDate(tx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to find booked appointments: %+v", err)
		return nil, err
	}
	for _, a := range booked {
		if a.Slot().Overlaps(slot) {
			return nil, ErrSlotAlreadyBooked
		}
	}

	appointment := &entity.Appointment{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Status:          entity.AppointmentStatusPending,
		AppointmentType: entity.AppointmentType(req.AppointmentType),
		Reason:          req.Reason,
		ConsultationFee: profile.ConsultationFee,
		Currency:        profile.Currency,
	}
	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &patientID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), map[string]string{
		"doctor_id":  doctorID.String(),
		"date":       req.AppointmentDate,
		"start_time": slot.StartTime,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.invalidateDay(ctx, doctorID, date)
	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, slot=%s", appointment.ID, doctorID, req.AppointmentDate, slot)

	return u.reload(ctx, appointment)
}

func checkWorkingHours(schedule entity.WeeklySchedule, date time.Time, slot entity.TimeSlot) error {
	if len(schedule) == 0 {
		return ErrScheduleNotConfigured
	}
	day, ok := schedule.ForDate(date)
	if !ok || !day.IsWorking {
		return ErrDoctorNotWorking
	}
	if !day.Covers(slot) {
		return ErrOutsideWorkingHours
	}
	return nil
}

func (u *appointmentUsecase) reload(ctx context.Context, appointment *entity.Appointment) (*dto.AppointmentResponse, error) {
	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

func (u *appointmentUsecase) invalidateDay(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	if err := u.slots.Invalidate(ctx, doctorID, date); err != nil {
		u.log.Warnf("Failed to invalidate cached slots of doctor %s: %+v", doctorID, err)
	}
}

// scopeToCaller limits a listing to the caller's own appointments.
func scopeToCaller(filter *entity.AppointmentFilter, userID uuid.UUID, roleID int) error {
	switch roleID {
	case entity.RoleIDDoctor:
		filter.DoctorID = &userID
	case entity.RoleIDPatient:
		filter.PatientID = &userID
	default:
		return ErrForbidden
	}
	return nil
}

func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	userID, roleID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	page := toPage(req.PageRequest)
	filter := entity.AppointmentFilter{
		Status: entity.AppointmentStatus(req.Status),
		Page:   page,
	}
	if err := scopeToCaller(&filter, userID, roleID); err != nil {
		return nil, err
	}
	if req.StartDate != "" {
		from, err := parseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if req.EndDate != "" {
		to, err := parseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}

	appointments, total, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Pagination:   dto.NewPagination(page.Page, page.Limit, total),
	}, nil
}

func (u *appointmentUsecase) GetTodayAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, roleID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	today := calendarDate(u.now(), u.loc)
	filter := entity.AppointmentFilter{From: &today, To: &today}
	if err := scopeToCaller(&filter, userID, roleID); err != nil {
		return nil, err
	}

	appointments, total, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find today's appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Pagination:   dto.NewPagination(1, len(appointments), total),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) {
		return nil, ErrForbidden
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	doctorID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrForbidden
	}

	previous := appointment.Status
	if err := appointment.TransitionTo(entity.AppointmentStatus(req.Status), doctorID, u.now()); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if err := u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionAppointmentStatus, "appointment", appointmentID.String(), string(previous), req.Status); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.invalidateDay(ctx, appointment.DoctorID, appointment.AppointmentDate)
	u.log.Infof("Appointment status updated: id=%s, %s -> %s", appointmentID, previous, req.Status)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) {
		return nil, ErrForbidden
	}

	previous := appointment.Status
	if err := appointment.Cancel(userID, req.Reason, u.now()); err != nil {
		return nil, err
	}

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(), string(previous), map[string]string{
		"status": string(entity.AppointmentStatusCancelled),
		"reason": req.Reason,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.invalidateDay(ctx, appointment.DoctorID, appointment.AppointmentDate)
	u.log.Infof("Appointment cancelled: id=%s, by=%s", appointmentID, userID)
	return converter.AppointmentToResponse(appointment), nil
}

// AvailableSlots lists the free sessions of a doctor on a date. Free slots
// are cached per doctor and day; the cut-off for today is applied on read.
func (u *appointmentUsecase) AvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	profile, err := u.doctorProfileRepo.FindActive(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorUnavailable
	}

	day, _ := profile.Schedule.ForDate(date)
	response := &dto.AvailableSlotsResponse{
		DoctorID:        doctorID,
		Date:            req.Date,
		IsWorking:       day.IsWorking,
		SessionDuration: profile.SessionDuration,
		Slots:           []entity.TimeSlot{},
	}

	now := u.now()
	today := calendarDate(now, u.loc)
	if date.Before(today) || !day.IsWorking {
		return response, nil
	}

	free, hit, err := u.slots.CachedDay(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to read cached slots of doctor %s: %+v", doctorID, err)
		hit = false
	}
	if !hit {
		// read before the bookings so a concurrent invalidation wins
		generation, genErr := u.slots.Generation(ctx, doctorID)
		if genErr != nil {
			u.log.Warnf("Failed to read slot generation of doctor %s: %+v", doctorID, genErr)
		}
		free, err = u.freeSlots(ctx, profile, day, date)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			if err := u.slots.CacheDay(ctx, doctorID, date, generation, free); err != nil {
				u.log.Warnf("Failed to cache slots of doctor %s: %+v", doctorID, err)
			}
		}
	}

	cutoff := ""
	if date.Equal(today) {
		cutoff = now.In(u.loc).Format("15:04")
	}
	for _, s := range free {
		if s.StartTime > cutoff {
			response.Slots = append(response.Slots, s)
		}
	}
	return response, nil
}

func (u *appointmentUsecase) freeSlots(ctx context.Context, profile *entity.DoctorProfile, day entity.DaySchedule, date time.Time) ([]entity.TimeSlot, error) {
	booked, err := u.appointmentRepo.FindActiveByDoctorAndDate(u.db.WithContext(ctx), profile.UserID, date)
	if err != nil {
		u.log.Warnf("Failed to find booked appointments: %+v", err)
		return nil, err
	}

	free := []entity.TimeSlot{}
	for _, slot := range day.GenerateSlots(profile.SessionDuration) {
		taken := false
		for _, a := range booked {
			if a.Slot().Overlaps(slot) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free, nil
}

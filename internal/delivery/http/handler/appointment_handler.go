package handler

import (
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// Create handles appointment booking by a patient
// @Summary Book an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Create Appointment Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorUnavailable):
			response.NotFound(w, "Doctor not found or unavailable")
		case errors.Is(err, usecase.ErrSlotAlreadyBooked):
			response.Conflict(w, "Time slot already booked")
		case errors.Is(err, usecase.ErrSlotBeingBooked):
			response.Conflict(w, "Time slot is being booked, please try again")
		case errors.Is(err, usecase.ErrScheduleNotConfigured):
			response.Unprocessable(w, "Doctor schedule not configured")
		case errors.Is(err, usecase.ErrDoctorNotWorking):
			response.Unprocessable(w, "Doctor doesn't work on this day")
		case errors.Is(err, usecase.ErrOutsideWorkingHours):
			response.Unprocessable(w, "Time slot is outside working hours")
		case errors.Is(err, usecase.ErrPastDate),
			errors.Is(err, usecase.ErrSlotInPast),
			errors.Is(err, usecase.ErrInvalidTimeSlot):
			response.BadRequest(w, capitalize(err.Error()))
		default:
			commonError(w, err, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// GetMy lists the caller's appointments
// @Summary List my appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date (YYYY-MM-DD)"
// @Param status query string false "Status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /appointments/my [get]
func (h *AppointmentHandler) GetMy(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := dto.AppointmentListRequest{
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		Status:      q.Get("status"),
		PageRequest: page,
	}
	if !validate(w, h.validator, &req) {
		return
	}

	res, err := h.appointmentUsecase.GetMyAppointments(r.Context(), &req)
	if err != nil {
		commonError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", res)
}

func (h *AppointmentHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	res, err := h.appointmentUsecase.GetTodayAppointments(r.Context())
	if err != nil {
		commonError(w, err, "Failed to get today's appointments")
		return
	}

	response.Success(w, http.StatusOK, "Today's appointments retrieved successfully", res)
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		h.lookupError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// UpdateStatus handles status changes by the owning doctor
// @Summary Update appointment status
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateAppointmentStatusRequest true "Update Status Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "appointment")
	if !ok {
		return
	}
	var req dto.UpdateAppointmentStatusRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.lookupError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "appointment")
	if !ok {
		return
	}
	var req dto.CancelAppointmentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.CancelAppointment(r.Context(), id, &req)
	if err != nil {
		h.lookupError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

// AvailableSlots lists the free slots of a doctor on a date
// @Summary Get available slots
// @Tags Appointments
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/doctors/{doctor_id}/slots [get]
func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "doctor_id", "doctor")
	if !ok {
		return
	}
	req := dto.AvailableSlotsRequest{Date: r.URL.Query().Get("date")}
	if !validate(w, h.validator, &req) {
		return
	}

	slots, err := h.appointmentUsecase.AvailableSlots(r.Context(), doctorID, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorUnavailable) {
			response.NotFound(w, "Doctor not found or unavailable")
			return
		}
		commonError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

func (h *AppointmentHandler) lookupError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, entity.ErrInvalidStatusTransition):
		response.BadRequest(w, "Invalid status transition")
	case errors.Is(err, entity.ErrAppointmentClosed):
		response.BadRequest(w, "Cannot cancel this appointment")
	default:
		commonError(w, err, fallback)
	}
}

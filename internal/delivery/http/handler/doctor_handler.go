package handler

import (
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// Search handles public doctor search
// @Summary Search verified doctors
// @Tags Doctors
// @Produce json
// @Param specialty query string false "Specialty"
// @Param city query string false "City"
// @Param name query string false "Doctor name"
// @Param min_rating query number false "Minimum rating"
// @Param max_fee query number false "Maximum consultation fee"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /doctors/search [get]
func (h *DoctorHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}
	minRating, err := queryFloat(r, "min_rating")
	if err != nil {
		response.BadRequest(w, "Invalid min_rating")
		return
	}
	maxFee, err := queryFloat(r, "max_fee")
	if err != nil {
		response.BadRequest(w, "Invalid max_fee")
		return
	}

	q := r.URL.Query()
	req := dto.DoctorSearchRequest{
		Specialty:   q.Get("specialty"),
		City:        q.Get("city"),
		Name:        q.Get("name"),
		MinRating:   minRating,
		MaxFee:      maxFee,
		PageRequest: page,
	}
	if !validate(w, h.validator, &req) {
		return
	}

	res, err := h.doctorUsecase.Search(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to search doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", res)
}

func (h *DoctorHandler) Specialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.doctorUsecase.Specialties(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get specialties")
		return
	}

	response.Success(w, http.StatusOK, "Specialties retrieved successfully", map[string][]string{"specialties": specialties})
}

func (h *DoctorHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.doctorUsecase.Cities(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get cities")
		return
	}

	response.Success(w, http.StatusOK, "Cities retrieved successfully", map[string][]string{"cities": cities})
}

// GetDoctor handles getting a doctor by ID
// @Summary Get doctor details with stats
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id} [get]
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.doctorUsecase.GetMyProfile(r.Context())
	if err != nil {
		h.profileError(w, err, "Failed to get doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", profile)
}

// UpdateProfile handles partial updates of the caller's profile
// @Summary Update doctor profile
// @Tags Doctors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateDoctorProfileRequest true "Update Doctor Profile Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /doctors/profile [put]
func (h *DoctorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorProfileRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	profile, err := h.doctorUsecase.UpdateProfile(r.Context(), &req)
	if err != nil {
		h.profileError(w, err, "Failed to update doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

// UpdateSchedule replaces the weekly schedule
// @Summary Update weekly schedule
// @Tags Doctors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateScheduleRequest true "Update Schedule Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /doctors/schedule [put]
func (h *DoctorHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateScheduleRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.doctorUsecase.UpdateSchedule(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSchedule) {
			response.BadRequest(w, capitalize(err.Error()))
			return
		}
		h.profileError(w, err, "Failed to update schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule updated successfully", schedule)
}

func (h *DoctorHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.doctorUsecase.GetStats(r.Context())
	if err != nil {
		h.profileError(w, err, "Failed to get doctor stats")
		return
	}

	response.Success(w, http.StatusOK, "Doctor stats retrieved successfully", stats)
}

func (h *DoctorHandler) MyPatients(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok || !validate(w, h.validator, &page) {
		return
	}

	patients, err := h.doctorUsecase.MyPatients(r.Context(), &page)
	if err != nil {
		commonError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *DoctorHandler) profileError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, usecase.ErrDoctorProfileNotFound) {
		response.NotFound(w, "Doctor profile not found")
		return
	}
	commonError(w, err, fallback)
}

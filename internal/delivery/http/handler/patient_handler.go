package handler

import (
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

type PatientHandler struct {
	patientUsecase usecase.PatientProfileUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientProfileUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.patientUsecase.GetMyProfile(r.Context())
	if err != nil {
		h.profileError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *PatientHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePatientProfileRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	profile, err := h.patientUsecase.UpdateMyProfile(r.Context(), &req)
	if err != nil {
		h.profileError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

func (h *PatientHandler) profileError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, usecase.ErrPatientProfileNotFound) {
		response.NotFound(w, "Patient profile not found")
		return
	}
	commonError(w, err, fallback)
}

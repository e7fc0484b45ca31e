package handler

import (
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
	validator    *validator.CustomValidator
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

// VerifyDoctorDocuments approves or rejects a doctor's certificates
// @Summary Review doctor documents
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param request body dto.VerifyDoctorDocumentsRequest true "Verification Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/doctors/{id}/verify [put]
func (h *AdminHandler) VerifyDoctorDocuments(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "id", "doctor")
	if !ok {
		return
	}
	var req dto.VerifyDoctorDocumentsRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	res, err := h.adminUsecase.VerifyDoctorDocuments(r.Context(), doctorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrRejectionReasonRequired):
			response.BadRequest(w, "Rejection reason is required when rejecting documents")
		default:
			commonError(w, err, "Failed to verify doctor documents")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor documents reviewed successfully", res)
}

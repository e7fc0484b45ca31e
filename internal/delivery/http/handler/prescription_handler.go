package handler

import (
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

const defaultMedicineSearchLimit = 10

type PrescriptionHandler struct {
	prescriptionUsecase usecase.PrescriptionUsecase
	validator           *validator.CustomValidator
}

func NewPrescriptionHandler(prescriptionUsecase usecase.PrescriptionUsecase, validator *validator.CustomValidator) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptionUsecase: prescriptionUsecase,
		validator:           validator,
	}
}

// Create handles prescription creation by a doctor
// @Summary Create a prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePrescriptionRequest true "Create Prescription Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions [post]
func (h *PrescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePrescriptionRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	res, err := h.prescriptionUsecase.CreatePrescription(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, usecase.ErrAppointmentMismatch):
			response.BadRequest(w, "Appointment does not belong to this doctor and patient")
		default:
			commonError(w, err, "Failed to create prescription")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Prescription created successfully", res)
}

func (h *PrescriptionHandler) GetMy(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok || !validate(w, h.validator, &page) {
		return
	}

	res, err := h.prescriptionUsecase.GetMyPrescriptions(r.Context(), &page)
	if err != nil {
		commonError(w, err, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", res)
}

func (h *PrescriptionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "prescription")
	if !ok {
		return
	}

	prescription, err := h.prescriptionUsecase.GetPrescription(r.Context(), id)
	if err != nil {
		h.lookupError(w, err, "Failed to get prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", prescription)
}

// Update handles changes by the prescribing doctor
// @Summary Update a prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Prescription ID"
// @Param request body dto.UpdatePrescriptionRequest true "Update Prescription Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /prescriptions/{id} [put]
func (h *PrescriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "prescription")
	if !ok {
		return
	}
	var req dto.UpdatePrescriptionRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	prescription, err := h.prescriptionUsecase.UpdatePrescription(r.Context(), id, &req)
	if err != nil {
		h.lookupError(w, err, "Failed to update prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription updated successfully", prescription)
}

func (h *PrescriptionHandler) SearchMedicines(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultMedicineSearchLimit)
	if err != nil {
		response.BadRequest(w, "Invalid limit")
		return
	}
	req := dto.MedicineSearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if !validate(w, h.validator, &req) {
		return
	}

	medicines, err := h.prescriptionUsecase.SearchMedicines(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to search medicines")
		return
	}

	response.Success(w, http.StatusOK, "Medicines retrieved successfully", map[string]interface{}{"medicines": medicines})
}

func (h *PrescriptionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.prescriptionUsecase.GetStats(r.Context())
	if err != nil {
		commonError(w, err, "Failed to get prescription stats")
		return
	}

	response.Success(w, http.StatusOK, "Prescription stats retrieved successfully", stats)
}

// GetPatientPrescriptions lists what the calling doctor prescribed to one patient.
func (h *PrescriptionHandler) GetPatientPrescriptions(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "patient_id", "patient")
	if !ok {
		return
	}
	page, ok := pageRequest(w, r)
	if !ok || !validate(w, h.validator, &page) {
		return
	}

	res, err := h.prescriptionUsecase.GetPatientPrescriptions(r.Context(), patientID, &page)
	if err != nil {
		commonError(w, err, "Failed to get patient prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", res)
}

func (h *PrescriptionHandler) lookupError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, usecase.ErrPrescriptionNotFound) {
		response.NotFound(w, "Prescription not found")
		return
	}
	commonError(w, err, fallback)
}

package converter

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
)

func PrescriptionToResponse(p *entity.Prescription) *dto.PrescriptionResponse {
	if p == nil {
		return nil
	}

	medicines := make([]dto.PrescribedMedicineResponse, len(p.Medicines))
	for i, m := range p.Medicines {
		medicines[i] = dto.PrescribedMedicineResponse(m)
	}

	return &dto.PrescriptionResponse{
		ID:                    p.ID,
		PrescriptionNumber:    p.PrescriptionNumber,
		DoctorID:              p.DoctorID,
		PatientID:             p.PatientID,
		AppointmentID:         p.AppointmentID,
		Diagnosis:             p.Diagnosis,
		DiagnosisAr:           p.DiagnosisAr,
		Medicines:             medicines,
		GeneralInstructions:   p.GeneralInstructions,
		GeneralInstructionsAr: p.GeneralInstructionsAr,
		ValidUntil:            FormatDate(p.ValidUntil),
		Doctor:                UserToParticipant(&p.Doctor),
		Patient:               UserToParticipant(&p.Patient),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescriptions[i])
	}
	return responses
}

func MedicinesFromInput(input []dto.MedicineInput) []entity.PrescribedMedicine {
	medicines := make([]entity.PrescribedMedicine, len(input))
	for i, m := range input {
		medicines[i] = entity.PrescribedMedicine(m)
	}
	return medicines
}

func MedicinesToResponses(medicines []entity.Medicine) []dto.MedicineResponse {
	responses := make([]dto.MedicineResponse, len(medicines))
	for i, m := range medicines {
		forms := m.DosageForms
		if forms == nil {
			forms = []string{}
		}
		responses[i] = dto.MedicineResponse{
			ID:          m.ID,
			Name:        m.Name,
			NameAr:      m.NameAr,
			DosageForms: forms,
			Category:    m.Category,
			Description: m.Description,
		}
	}
	return responses
}

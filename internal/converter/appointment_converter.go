package converter

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                 a.ID,
		DoctorID:           a.DoctorID,
		PatientID:          a.PatientID,
		AppointmentDate:    FormatDate(a.AppointmentDate),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		AppointmentType:    string(a.AppointmentType),
		Reason:             a.Reason,
		Notes:              a.Notes,
		ConsultationFee:    a.ConsultationFee,
		Currency:           a.Currency,
		ConfirmedAt:        a.ConfirmedAt,
		CompletedAt:        a.CompletedAt,
		CancelledAt:        a.CancelledAt,
		CancelledBy:        a.CancelledBy,
		CancellationReason: a.CancellationReason,
		Doctor:             UserToParticipant(&a.Doctor),
		Patient:            UserToParticipant(&a.Patient),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

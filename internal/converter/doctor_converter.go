package converter

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
)

func SpecialtiesToResponses(specialties []entity.DoctorSpecialty) []dto.SpecialtyResponse {
	responses := make([]dto.SpecialtyResponse, len(specialties))
	for i, s := range specialties {
		responses[i] = dto.SpecialtyResponse{
			MainSpecialty:      s.MainSpecialty,
			SubSpecialty:       s.SubSpecialty,
			CertificateURL:     s.CertificateURL,
			VerificationStatus: string(s.VerificationStatus),
			VerifiedAt:         s.VerifiedAt,
			RejectionReason:    s.RejectionReason,
		}
	}
	return responses
}

// DoctorProfileToResponse converts a DoctorProfile entity (with User loaded) to its DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}

	schedule := profile.Schedule
	if schedule == nil {
		schedule = entity.WeeklySchedule{}
	}

	return &dto.DoctorProfileResponse{
		ID:                profile.UserID,
		FullName:          profile.User.FullName,
		Email:             profile.User.Email,
		PhoneNumber:       profile.User.PhoneNumber,
		Bio:               profile.Bio,
		YearsOfExperience: profile.YearsOfExperience,
		SessionDuration:   profile.SessionDuration,
		Schedule:          schedule,
		City:              profile.City,
		Area:              profile.Area,
		DetailedAddress:   profile.DetailedAddress,
		ClinicPhone:       profile.ClinicPhone,
		ClinicEmail:       profile.ClinicEmail,
		Website:           profile.Website,
		ConsultationFee:   profile.ConsultationFee,
		Currency:          profile.Currency,
		Rating:            profile.Rating,
		ReviewsCount:      profile.ReviewsCount,
		DocumentsVerified: profile.DocumentsVerified,
		VerifiedAt:        profile.VerifiedAt,
		ProfileCompleted:  profile.User.ProfileCompleted,
		Specialties:       SpecialtiesToResponses(profile.Specialties),
	}
}

// DoctorProfilesToSummaries converts search results to directory entries
func DoctorProfilesToSummaries(profiles []entity.DoctorProfile) []dto.DoctorSummaryResponse {
	responses := make([]dto.DoctorSummaryResponse, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		responses[i] = dto.DoctorSummaryResponse{
			ID:                p.UserID,
			FullName:          p.User.FullName,
			MainSpecialty:     p.MainSpecialty(),
			Specialties:       SpecialtiesToResponses(p.Specialties),
			YearsOfExperience: p.YearsOfExperience,
			City:              p.City,
			Area:              p.Area,
			ConsultationFee:   p.ConsultationFee,
			Currency:          p.Currency,
			Rating:            p.Rating,
			ReviewsCount:      p.ReviewsCount,
			SessionDuration:   p.SessionDuration,
		}
	}
	return responses
}

func DoctorPatientsToResponses(patients []entity.DoctorPatient) []dto.DoctorPatientResponse {
	responses := make([]dto.DoctorPatientResponse, len(patients))
	for i, p := range patients {
		responses[i] = dto.DoctorPatientResponse{
			PatientID:         p.PatientID,
			FullName:          p.FullName,
			Email:             p.Email,
			PhoneNumber:       p.PhoneNumber,
			TotalAppointments: p.Appointments,
			LastAppointment:   FormatDate(p.LastAppointment),
		}
	}
	return responses
}

// ScheduleFromInput builds a weekly schedule from the request map.
func ScheduleFromInput(input map[string]dto.DayScheduleInput) entity.WeeklySchedule {
	schedule := make(entity.WeeklySchedule, len(input))
	for day, d := range input {
		slots := make([]entity.TimeSlot, len(d.TimeSlots))
		for i, s := range d.TimeSlots {
			slots[i] = entity.TimeSlot{StartTime: s.StartTime, EndTime: s.EndTime}
		}
		schedule[day] = entity.DaySchedule{IsWorking: d.IsWorking, TimeSlots: slots}
	}
	return schedule
}

func SpecialtiesFromInput(input []dto.SpecialtyInput) []entity.DoctorSpecialty {
	specialties := make([]entity.DoctorSpecialty, len(input))
	for i, s := range input {
		specialties[i] = entity.DoctorSpecialty{
			MainSpecialty:  s.MainSpecialty,
			SubSpecialty:   s.SubSpecialty,
			CertificateURL: s.CertificateURL,
		}
	}
	return specialties
}

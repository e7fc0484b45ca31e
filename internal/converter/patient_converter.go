package converter

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
)

// PatientProfileToResponse converts a PatientProfile entity (with User loaded) to its DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.PatientProfileResponse{
		UserID:            profile.UserID,
		FullName:          profile.User.FullName,
		Email:             profile.User.Email,
		PhoneNumber:       profile.User.PhoneNumber,
		Gender:            profile.Gender,
		BloodType:         profile.BloodType,
		PreferredLanguage: profile.PreferredLanguage,
		ProfileCompleted:  profile.IsComplete(),
		UpdatedAt:         profile.UpdatedAt,
	}
	if profile.DateOfBirth != nil {
		dob := FormatDate(*profile.DateOfBirth)
		response.DateOfBirth = &dob
	}
	if h := profile.MedicalHistory; h != nil {
		response.MedicalHistory = &dto.MedicalHistoryResponse{
			ChronicDiseases:    nonNil(h.ChronicDiseases),
			Allergies:          nonNil(h.Allergies),
			CurrentMedications: nonNil(h.CurrentMedications),
			PreviousSurgeries:  nonNil(h.PreviousSurgeries),
			FamilyHistory:      nonNil(h.FamilyHistory),
			Notes:              h.Notes,
		}
	}
	if c := profile.EmergencyContact; c != nil {
		response.EmergencyContact = &dto.EmergencyContactResponse{
			Name:             c.Name,
			Relationship:     c.Relationship,
			PhoneNumber:      c.PhoneNumber,
			AlternativePhone: c.AlternativePhone,
		}
	}
	return response
}

func MedicalHistoryFromInput(in *dto.MedicalHistoryInput) *entity.MedicalHistory {
	return &entity.MedicalHistory{
		ChronicDiseases:    nonNil(in.ChronicDiseases),
		Allergies:          nonNil(in.Allergies),
		CurrentMedications: nonNil(in.CurrentMedications),
		PreviousSurgeries:  nonNil(in.PreviousSurgeries),
		FamilyHistory:      nonNil(in.FamilyHistory),
		Notes:              in.Notes,
	}
}

func EmergencyContactFromInput(in *dto.EmergencyContactInput) *entity.EmergencyContact {
	return &entity.EmergencyContact{
		Name:             in.Name,
		Relationship:     in.Relationship,
		PhoneNumber:      in.PhoneNumber,
		AlternativePhone: in.AlternativePhone,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

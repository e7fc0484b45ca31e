package converter

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Includes DoctorProfile and PatientProfile if they are loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:               user.ID,
		FullName:         user.FullName,
		Email:            user.Email,
		PhoneNumber:      user.PhoneNumber,
		CountryCode:      user.CountryCode,
		Role:             user.RoleName(),
		AuthMethod:       string(user.AuthMethod),
		Status:           string(user.Status),
		IsEmailVerified:  user.IsEmailVerified,
		IsPhoneVerified:  user.IsPhoneVerified,
		ProfileCompleted: user.ProfileCompleted,
		LastLogin:        user.LastLogin,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		profile := *user.DoctorProfile
		profile.User = *user
		response.DoctorProfile = DoctorProfileToResponse(&profile)
	}
	if user.PatientProfile != nil {
		profile := *user.PatientProfile
		profile.User = *user
		response.PatientProfile = PatientProfileToResponse(&profile)
	}

	return response
}

func UserToSummary(user *entity.User) *dto.UserSummary {
	return &dto.UserSummary{
		ID:               user.ID,
		FullName:         user.FullName,
		Email:            user.Email,
		PhoneNumber:      user.PhoneNumber,
		Role:             user.RoleName(),
		ProfileCompleted: user.ProfileCompleted,
	}
}

// UserToParticipant returns nil when the association was not loaded.
func UserToParticipant(user *entity.User) *dto.ParticipantResponse {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	return &dto.ParticipantResponse{
		ID:          user.ID.String(),
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}
}

package usecase

import (
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPatientProfileUsecase(db *gorm.DB) PatientProfileUsecase {
	log := quietLogger()
	return NewPatientProfileUsecase(db, log,
		repository.NewUserRepository(),
		repository.NewPatientProfileRepository(),
		service.NewAuditService(log, repository.NewAuditLogRepository()),
	)
}

func TestPatientProfileUsecase_GetMyProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	uc := newPatientProfileUsecase(db)
	patient := testutil.CreatePatient(t, db, "Rima", "rima@example.com")

	profile, err := uc.GetMyProfile(asUser(patient))
	require.NoError(t, err)
	assert.Equal(t, "Rima", profile.FullName)
	assert.Equal(t, entity.DefaultPreferredLanguage, profile.PreferredLanguage)
	assert.Nil(t, profile.DateOfBirth)
	assert.False(t, profile.ProfileCompleted)

	doctor := testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Dr. No Profile"})
	_, err = uc.GetMyProfile(asUser(doctor))
	assert.ErrorIs(t, err, ErrPatientProfileNotFound)
}

func TestPatientProfileUsecase_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	uc := newPatientProfileUsecase(db)
	patient := testutil.CreatePatient(t, db, "Rima", "rima@example.com")
	ctx := asUser(patient)

	_, err := uc.UpdateMyProfile(ctx, &dto.UpdatePatientProfileRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = uc.UpdateMyProfile(ctx, &dto.UpdatePatientProfileRequest{DateOfBirth: strPtr("1990/05/14")})
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	updated, err := uc.UpdateMyProfile(ctx, &dto.UpdatePatientProfileRequest{
		DateOfBirth: strPtr("1990-05-14"),
		Gender:      strPtr(entity.GenderFemale),
		BloodType:   strPtr("O+"),
		MedicalHistory: &dto.MedicalHistoryInput{
			Allergies: []string{"Penicillin"},
		},
		EmergencyContact: &dto.EmergencyContactInput{
			Name:         "Sami",
			Relationship: "brother",
			PhoneNumber:  "0991234567",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "1990-05-14", *updated.DateOfBirth)
	assert.True(t, updated.ProfileCompleted)
	require.NotNil(t, updated.MedicalHistory)
	assert.Equal(t, []string{"Penicillin"}, updated.MedicalHistory.Allergies)
	assert.Equal(t, []string{}, updated.MedicalHistory.ChronicDiseases)

	var user entity.User
	require.NoError(t, db.First(&user, "id = ?", patient.ID).Error)
	assert.True(t, user.ProfileCompleted)

	// medical history is replaced, not merged
	updated, err = uc.UpdateMyProfile(ctx, &dto.UpdatePatientProfileRequest{
		MedicalHistory:    &dto.MedicalHistoryInput{ChronicDiseases: []string{"Asthma"}},
		PreferredLanguage: strPtr("en"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthma"}, updated.MedicalHistory.ChronicDiseases)
	assert.Empty(t, updated.MedicalHistory.Allergies)
	assert.Equal(t, "en", updated.PreferredLanguage)
	assert.Equal(t, "O+", updated.BloodType)
	require.NotNil(t, updated.EmergencyContact)
	assert.Equal(t, "Sami", updated.EmergencyContact.Name)

	var logs []entity.AuditLog
	require.NoError(t, db.Where("action = ?", entity.AuditActionPatientProfile).Find(&logs).Error)
	assert.Len(t, logs, 2)
}

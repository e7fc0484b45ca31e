package repository

import (
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDoctorProfileRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorProfileRepository()

	cardio := testutil.CreateDoctor(t, db, testutil.DoctorFixture{
		Name: "Dr. Sami Haddad", Specialty: "Cardiology", City: "Damascus", Fee: 50000, Rating: 4.8, Verified: true,
	})
	derma := testutil.CreateDoctor(t, db, testutil.DoctorFixture{
		Name: "Dr. Lina Khoury", Specialty: "Dermatology", City: "Aleppo", Fee: 30000, Rating: 4.2, Verified: true,
	})
	testutil.CreateDoctor(t, db, testutil.DoctorFixture{
		Name: "Dr. Unverified", Specialty: "Cardiology", City: "Damascus", Fee: 10000, Rating: 5, Verified: false,
	})
	testutil.CreateDoctor(t, db, testutil.DoctorFixture{
		Name: "Dr. Blocked", Specialty: "Cardiology", City: "Damascus", Fee: 10000, Rating: 5, Verified: true,
		Status: entity.UserStatusBlocked,
	})

	t.Run("active verified doctors ordered by rating", func(t *testing.T) {
		profiles, total, err := repo.Search(db, entity.DoctorSearchFilter{Page: entity.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, profiles, 2)
		assert.Equal(t, cardio.ID, profiles[0].UserID)
		assert.Equal(t, derma.ID, profiles[1].UserID)
		assert.Equal(t, "Dr. Sami Haddad", profiles[0].User.FullName)
		assert.Equal(t, "Cardiology", profiles[0].MainSpecialty())
	})

	t.Run("case-insensitive substring filters", func(t *testing.T) {
		profiles, total, err := repo.Search(db, entity.DoctorSearchFilter{
			Specialty: "derma", City: "ALEP", Name: "lina",
			Page: entity.Page{Page: 1, Limit: 20},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, profiles, 1)
		assert.Equal(t, derma.ID, profiles[0].UserID)
	})

	t.Run("rating and fee bounds", func(t *testing.T) {
		minRating := 4.5
		profiles, _, err := repo.Search(db, entity.DoctorSearchFilter{MinRating: &minRating, Page: entity.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, cardio.ID, profiles[0].UserID)

		maxFee := decimal.NewFromInt(30000)
		profiles, _, err = repo.Search(db, entity.DoctorSearchFilter{MaxFee: &maxFee, Page: entity.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, derma.ID, profiles[0].UserID)
	})

	t.Run("wildcards in the search text match literally", func(t *testing.T) {
		for _, term := range []string{"%", "_", `\`, "Dr.%Haddad"} {
			profiles, total, err := repo.Search(db, entity.DoctorSearchFilter{Name: term, Page: entity.Page{Page: 1, Limit: 20}})
			require.NoError(t, err, term)
			assert.Zero(t, total, term)
			assert.Empty(t, profiles, term)
		}

		profiles, _, err := repo.Search(db, entity.DoctorSearchFilter{City: "_amascus", Page: entity.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("pagination keeps the total", func(t *testing.T) {
		profiles, total, err := repo.Search(db, entity.DoctorSearchFilter{Page: entity.Page{Page: 2, Limit: 1}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, profiles, 1)
		assert.Equal(t, derma.ID, profiles[0].UserID)
	})
}

func TestDoctorProfileRepository_DistinctValues(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorProfileRepository()

	testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "A", Specialty: "Pediatrics", City: "Homs"})
	testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "B", Specialty: "Cardiology", City: "Damascus"})
	testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "C", Specialty: "Cardiology", City: "Damascus"})
	testutil.CreateDoctor(t, db, testutil.DoctorFixture{
		Name: "D", Specialty: "Neurology", City: "Latakia", Status: entity.UserStatusDeactivated,
	})

	specialties, err := repo.DistinctSpecialties(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Pediatrics"}, specialties)

	cities, err := repo.DistinctCities(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"Damascus", "Homs"}, cities)
}

func TestDoctorProfileRepository_FindActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorProfileRepository()

	active := testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Active", Specialty: "ENT"})
	pending := testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Pending", Status: entity.UserStatusPending})

	profile, err := repo.FindActive(db, active.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Active", profile.User.FullName)
	assert.Equal(t, entity.RoleDoctor, profile.User.Role.RoleName)

	profile, err = repo.FindActive(db, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, profile)

	profile, err = repo.FindByUserID(db, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
}

func TestDoctorProfileRepository_LockForBooking(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorProfileRepository()
	doctor := testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Dr. Lock", Specialty: "ENT"})

	tx := db.Begin()
	defer tx.Rollback()
	require.NoError(t, repo.LockForBooking(tx, doctor.ID))
	assert.ErrorIs(t, repo.LockForBooking(tx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestDoctorProfileRepository_ReplaceSpecialtiesAndVerify(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorProfileRepository()
	doctor := testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Dr. Replace", Specialty: "Old"})

	err := repo.ReplaceSpecialties(db, doctor.ID, []entity.DoctorSpecialty{
		{MainSpecialty: "Orthopedics", SubSpecialty: "Sports"},
		{MainSpecialty: "Rheumatology"},
	})
	require.NoError(t, err)

	profile, err := repo.FindByUserID(db, doctor.ID)
	require.NoError(t, err)
	require.Len(t, profile.Specialties, 2)
	assert.Equal(t, "Orthopedics", profile.MainSpecialty())
	assert.Equal(t, entity.VerificationPending, profile.Specialties[0].VerificationStatus)

	require.NoError(t, repo.UpdateSpecialtiesStatus(db, doctor.ID, entity.VerificationRejected, "blurry scan"))
	profile, err = repo.FindByUserID(db, doctor.ID)
	require.NoError(t, err)
	for _, s := range profile.Specialties {
		assert.Equal(t, entity.VerificationRejected, s.VerificationStatus)
		assert.Equal(t, "blurry scan", s.RejectionReason)
		assert.Nil(t, s.VerifiedAt)
	}

	require.NoError(t, repo.UpdateSpecialtiesStatus(db, doctor.ID, entity.VerificationApproved, ""))
	profile, err = repo.FindByUserID(db, doctor.ID)
	require.NoError(t, err)
	for _, s := range profile.Specialties {
		assert.Equal(t, entity.VerificationApproved, s.VerificationStatus)
		assert.NotNil(t, s.VerifiedAt)
	}
}

func TestPatientProfileRepository_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPatientProfileRepository()
	patient := testutil.CreatePatient(t, db, "Rana", "rana@example.com")

	profile, err := repo.FindByUserID(db, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.False(t, profile.IsComplete())

	dob := testutil.Date(1990, 5, 17)
	profile.DateOfBirth = &dob
	profile.Gender = entity.GenderFemale
	profile.EmergencyContact = &entity.EmergencyContact{Name: "Omar", Relationship: "brother", PhoneNumber: "0933123456"}
	require.NoError(t, repo.Update(db, profile))

	reloaded, err := repo.FindByUserID(db, patient.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsComplete())
	require.NotNil(t, reloaded.EmergencyContact)
	assert.Equal(t, "Omar", reloaded.EmergencyContact.Name)

	missing, err := repo.FindByUserID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

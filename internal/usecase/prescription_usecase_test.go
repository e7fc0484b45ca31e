package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type prescriptionFixture struct {
	uc      *prescriptionUsecase
	db      *gorm.DB
	doctor  *entity.User
	patient *entity.User
}

func newPrescriptionFixture(t *testing.T) *prescriptionFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := quietLogger()

	uc := NewPrescriptionUsecase(db, log, testConfig(),
		repository.NewUserRepository(),
		repository.NewAppointmentRepository(),
		repository.NewPrescriptionRepository(),
		repository.NewMedicineRepository(),
		service.NewAuditService(log, repository.NewAuditLogRepository()),
	).(*prescriptionUsecase)
	uc.now = fixedNow

	return &prescriptionFixture{
		uc:      uc,
		db:      db,
		doctor:  testutil.CreateDoctor(t, db, testutil.DoctorFixture{Name: "Dr. Rx", Specialty: "Internal Medicine", City: "Damascus", Fee: 30000, Verified: true}),
		patient: testutil.CreatePatient(t, db, "Mona", "mona@example.com"),
	}
}

func amoxicillin() []dto.MedicineInput {
	return []dto.MedicineInput{{
		Name:      "Amoxicillin",
		NameAr:    "أموكسيسيلين",
		Dosage:    "500mg",
		Frequency: "3 times daily",
		Duration:  "7 days",
	}}
}

// sequence returns the given numbers in order, repeating the last one.
func sequence(numbers ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		n := numbers[i]
		if i < len(numbers)-1 {
			i++
		}
		return n, nil
	}
}

func TestPrescriptionUsecase_Create(t *testing.T) {
	f := newPrescriptionFixture(t)

	resp, err := f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{
		PatientID: f.patient.ID.String(),
		Diagnosis: "Acute sinusitis",
		Medicines: amoxicillin(),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^RX-2026-\d{6}$`, resp.PrescriptionNumber)

	got, err := f.uc.GetPrescription(asUser(f.patient), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-02", got.ValidUntil)
	assert.Equal(t, "Acute sinusitis", got.Diagnosis)
	require.Len(t, got.Medicines, 1)
	assert.Equal(t, "أموكسيسيلين", got.Medicines[0].NameAr)
	assert.Nil(t, got.AppointmentID)

	var logs int64
	require.NoError(t, f.db.Model(&entity.AuditLog{}).Where("action = ?", entity.AuditActionPrescriptionCreate).Count(&logs).Error)
	assert.Equal(t, int64(1), logs)
}

func TestPrescriptionUsecase_CreateWithAppointment(t *testing.T) {
	f := newPrescriptionFixture(t)
	other := testutil.CreatePatient(t, f.db, "Other", "other@example.com")
	appt := insertAppointment(t, f.db, f.doctor, f.patient, testutil.Date(2026, 11, 2), "09:00", "09:30", entity.AppointmentStatusCompleted)
	ctx := asUser(f.doctor)

	_, err := f.uc.CreatePrescription(ctx, &dto.CreatePrescriptionRequest{
		PatientID:     other.ID.String(),
		AppointmentID: appt.ID.String(),
		Medicines:     amoxicillin(),
	})
	assert.ErrorIs(t, err, ErrAppointmentMismatch)

	_, err = f.uc.CreatePrescription(ctx, &dto.CreatePrescriptionRequest{
		PatientID:     f.patient.ID.String(),
		AppointmentID: uuid.NewString(),
		Medicines:     amoxicillin(),
	})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	resp, err := f.uc.CreatePrescription(ctx, &dto.CreatePrescriptionRequest{
		PatientID:     f.patient.ID.String(),
		AppointmentID: appt.ID.String(),
		Medicines:     amoxicillin(),
		ValidUntil:    "2027-01-15",
	})
	require.NoError(t, err)

	got, err := f.uc.GetPrescription(ctx, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AppointmentID)
	assert.Equal(t, appt.ID, *got.AppointmentID)
	assert.Equal(t, "2027-01-15", got.ValidUntil)
}

func TestPrescriptionUsecase_CreateRejectsNonPatients(t *testing.T) {
	f := newPrescriptionFixture(t)
	colleague := testutil.CreateDoctor(t, f.db, testutil.DoctorFixture{Name: "Dr. Colleague"})
	blocked := testutil.CreatePatient(t, f.db, "Blocked", "blocked@example.com")
	require.NoError(t, f.db.Model(blocked).Update("status", entity.UserStatusBlocked).Error)

	for _, id := range []string{colleague.ID.String(), blocked.ID.String(), uuid.NewString()} {
		_, err := f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{PatientID: id, Medicines: amoxicillin()})
		assert.ErrorIs(t, err, ErrPatientNotFound)
	}

	_, err := f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{PatientID: "nope", Medicines: amoxicillin()})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestPrescriptionUsecase_NumberRetry(t *testing.T) {
	f := newPrescriptionFixture(t)
	insertPrescription(t, f.db, f.doctor, f.patient, "RX-2026-000001")

	f.uc.newNumber = sequence("RX-2026-000001", "RX-2026-000001", "RX-2026-000002")
	resp, err := f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{PatientID: f.patient.ID.String(), Medicines: amoxicillin()})
	require.NoError(t, err)
	assert.Equal(t, "RX-2026-000002", resp.PrescriptionNumber)

	f.uc.newNumber = sequence("RX-2026-000001")
	_, err = f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{PatientID: f.patient.ID.String(), Medicines: amoxicillin()})
	assert.ErrorIs(t, err, ErrPrescriptionNumberGen)
}

func TestPrescriptionUsecase_NumberUsesClinicYear(t *testing.T) {
	f := newPrescriptionFixture(t)
	var years []int
	f.uc.newNumber = func(year int) (string, error) {
		years = append(years, year)
		return fmt.Sprintf("RX-%d-123456", year), nil
	}
	f.uc.now = func() time.Time { return time.Date(2026, 12, 31, 23, 30, 0, 0, time.UTC) }
	f.uc.loc = time.FixedZone("UTC+3", 3*60*60)

	resp, err := f.uc.CreatePrescription(asUser(f.doctor), &dto.CreatePrescriptionRequest{PatientID: f.patient.ID.String(), Medicines: amoxicillin()})
	require.NoError(t, err)
	assert.Equal(t, "RX-2027-123456", resp.PrescriptionNumber)
	assert.Equal(t, []int{2027}, years)
}

func TestPrescriptionUsecase_Access(t *testing.T) {
	f := newPrescriptionFixture(t)
	stranger := testutil.CreatePatient(t, f.db, "Stranger", "stranger@example.com")
	otherDoctor := testutil.CreateDoctor(t, f.db, testutil.DoctorFixture{Name: "Dr. Other"})
	p := insertPrescription(t, f.db, f.doctor, f.patient, "RX-2026-000010")

	_, err := f.uc.GetPrescription(asUser(stranger), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.GetPrescription(asUser(f.doctor), uuid.New())
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)

	_, err = f.uc.UpdatePrescription(asUser(otherDoctor), p.ID, &dto.UpdatePrescriptionRequest{Diagnosis: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.UpdatePrescription(asUser(f.doctor), p.ID, &dto.UpdatePrescriptionRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestPrescriptionUsecase_Update(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := insertPrescription(t, f.db, f.doctor, f.patient, "RX-2026-000020")

	updated, err := f.uc.UpdatePrescription(asUser(f.doctor), p.ID, &dto.UpdatePrescriptionRequest{
		DiagnosisAr: strPtr("التهاب الجيوب"),
		Medicines: []dto.MedicineInput{
			{Name: "Ibuprofen", Dosage: "400mg", Frequency: "twice daily", Duration: "5 days"},
			{Name: "Saline spray", Dosage: "2 puffs", Frequency: "4 times daily", Duration: "10 days"},
		},
		ValidUntil: strPtr("2026-12-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "RX-2026-000020", updated.PrescriptionNumber)
	assert.Equal(t, "2026-12-20", updated.ValidUntil)
	require.Len(t, updated.Medicines, 2)
	assert.Equal(t, "Ibuprofen", updated.Medicines[0].Name)

	got, err := f.uc.GetPrescription(asUser(f.patient), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "التهاب الجيوب", got.DiagnosisAr)
	assert.Equal(t, "Saline spray", got.Medicines[1].Name)

	_, err = f.uc.UpdatePrescription(asUser(f.doctor), p.ID, &dto.UpdatePrescriptionRequest{ValidUntil: strPtr("20-12-2026")})
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestPrescriptionUsecase_Listings(t *testing.T) {
	f := newPrescriptionFixture(t)
	other := testutil.CreatePatient(t, f.db, "Other", "other@example.com")
	otherDoctor := testutil.CreateDoctor(t, f.db, testutil.DoctorFixture{Name: "Dr. Other"})
	insertPrescription(t, f.db, f.doctor, f.patient, "RX-2026-000101")
	insertPrescription(t, f.db, f.doctor, f.patient, "RX-2026-000102")
	insertPrescription(t, f.db, f.doctor, other, "RX-2026-000103")
	insertPrescription(t, f.db, otherDoctor, f.patient, "RX-2026-000104")

	mine, err := f.uc.GetMyPrescriptions(asUser(f.patient), page(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.Total)
	assert.Equal(t, 2, mine.Pages)
	assert.Len(t, mine.Prescriptions, 2)

	written, err := f.uc.GetMyPrescriptions(asUser(f.doctor), page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), written.Total)

	// another doctor's prescription for the same patient is not visible
	forPatient, err := f.uc.GetPatientPrescriptions(asUser(f.doctor), f.patient.ID, page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), forPatient.Total)
	for _, p := range forPatient.Prescriptions {
		assert.Equal(t, f.doctor.ID, p.DoctorID)
		assert.Equal(t, f.patient.ID, p.PatientID)
	}

	admin := &entity.User{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
	_, err = f.uc.GetMyPrescriptions(asUser(admin), page(1, 10))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPrescriptionUsecase_SearchMedicines(t *testing.T) {
	f := newPrescriptionFixture(t)
	require.NoError(t, f.db.Create(&[]entity.Medicine{
		{Name: "Amoxicillin", NameAr: "أموكسيسيلين", DosageForms: []string{"capsule"}, Category: "Antibiotic"},
		{Name: "Amlodipine", NameAr: "أملوديبين", DosageForms: []string{"tablet"}, Category: "Antihypertensive"},
		{Name: "Paracetamol", NameAr: "باراسيتامول", DosageForms: []string{"tablet", "syrup"}, Category: "Analgesic"},
	}).Error)
	ctx := context.Background()

	found, err := f.uc.SearchMedicines(ctx, &dto.MedicineSearchRequest{Query: "AM"})
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "Amlodipine", found[0].Name)

	limited, err := f.uc.SearchMedicines(ctx, &dto.MedicineSearchRequest{Query: "am", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	arabic, err := f.uc.SearchMedicines(ctx, &dto.MedicineSearchRequest{Query: "باراسيتامول"})
	require.NoError(t, err)
	require.Len(t, arabic, 1)
	assert.Equal(t, []string{"tablet", "syrup"}, arabic[0].DosageForms)
}

func TestPrescriptionUsecase_Stats(t *testing.T) {
	f := newPrescriptionFixture(t)
	created := []time.Time{
		time.Date(2026, 11, 2, 7, 0, 0, 0, time.UTC),  // today
		time.Date(2026, 11, 1, 15, 0, 0, 0, time.UTC), // this month, last week
		time.Date(2026, 10, 30, 9, 0, 0, 0, time.UTC), // last month
	}
	for i, at := range created {
		p := &entity.Prescription{
			PrescriptionNumber: fmt.Sprintf("RX-2026-%06d", 500+i),
			DoctorID:           f.doctor.ID,
			PatientID:          f.patient.ID,
			Medicines:          []entity.PrescribedMedicine{{Name: "Zinc", Dosage: "50mg", Frequency: "daily", Duration: "30 days"}},
			ValidUntil:         testutil.Date(2026, 12, 1),
			CreatedAt:          at,
		}
		require.NoError(t, f.db.Omit("Doctor", "Patient", "Appointment").Create(p).Error)
	}

	stats, err := f.uc.GetStats(asUser(f.doctor))
	require.NoError(t, err)
	assert.Equal(t, &dto.PrescriptionStatsResponse{Today: 1, ThisWeek: 1, ThisMonth: 2, Total: 3}, stats)
}

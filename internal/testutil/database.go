// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens an isolated in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.DoctorSpecialty{},
		&entity.PatientProfile{},
		&entity.Appointment{},
		&entity.Prescription{},
		&entity.Medicine{},
		&entity.VerificationToken{},
		&entity.AuditLog{},
	))

	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX idx_appointments_active_slot
		ON appointments (doctor_id, appointment_date, start_time)
		WHERE status NOT IN ('cancelled', 'no_show')`).Error)

	require.NoError(t, db.Create(entity.DefaultRoles()).Error)

	return db
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func strPtr(s string) *string { return &s }

// CreatePatient inserts an active, verified patient with an empty profile.
func CreatePatient(t *testing.T, db *gorm.DB, name, email string) *entity.User {
	t.Helper()
	user := &entity.User{
		RoleID:          entity.RoleIDPatient,
		FullName:        name,
		Email:           strPtr(email),
		Password:        HashPassword(t, "Secret123"),
		AuthMethod:      entity.AuthMethodEmail,
		Status:          entity.UserStatusActive,
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&entity.PatientProfile{
		UserID:            user.ID,
		PreferredLanguage: entity.DefaultPreferredLanguage,
	}).Error)
	return user
}

// DoctorFixture describes a doctor to insert.
type DoctorFixture struct {
	Name      string
	Email     string
	Specialty string
	City      string
	Fee       int64
	Rating    float64
	Verified  bool
	Status    entity.UserStatus
	Schedule  entity.WeeklySchedule
	Session   int
}

// ClinicWeek is Sun-Thu 09:00-12:00 and 16:00-20:00, Saturday 10:00-14:00.
func ClinicWeek() entity.WeeklySchedule {
	weekday := entity.DaySchedule{IsWorking: true, TimeSlots: []entity.TimeSlot{
		{StartTime: "09:00", EndTime: "12:00"},
		{StartTime: "16:00", EndTime: "20:00"},
	}}
	return entity.WeeklySchedule{
		"sunday":    weekday,
		"monday":    weekday,
		"tuesday":   weekday,
		"wednesday": weekday,
		"thursday":  weekday,
		"friday":    {IsWorking: false},
		"saturday": {IsWorking: true, TimeSlots: []entity.TimeSlot{
			{StartTime: "10:00", EndTime: "14:00"},
		}},
	}
}

// CreateDoctor inserts a doctor user, profile and specialty.
func CreateDoctor(t *testing.T, db *gorm.DB, f DoctorFixture) *entity.User {
	t.Helper()
	if f.Status == "" {
		f.Status = entity.UserStatusActive
	}
	if f.Schedule == nil {
		f.Schedule = ClinicWeek()
	}
	if f.Session == 0 {
		f.Session = entity.DefaultSessionDuration
	}
	if f.Email == "" {
		f.Email = uuid.NewString() + "@doctors.test"
	}

	user := &entity.User{
		RoleID:          entity.RoleIDDoctor,
		FullName:        f.Name,
		Email:           strPtr(f.Email),
		Password:        HashPassword(t, "Secret123"),
		AuthMethod:      entity.AuthMethodEmail,
		Status:          f.Status,
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)

	var verifiedAt *time.Time
	if f.Verified {
		now := time.Now()
		verifiedAt = &now
	}
	profile := &entity.DoctorProfile{
		UserID:            user.ID,
		SessionDuration:   f.Session,
		Schedule:          f.Schedule,
		City:              f.City,
		ConsultationFee:   decimal.NewFromInt(f.Fee),
		Rating:            f.Rating,
		DocumentsVerified: f.Verified,
		VerifiedAt:        verifiedAt,
	}
	require.NoError(t, db.Create(profile).Error)

	if f.Specialty != "" {
		require.NoError(t, db.Create(&entity.DoctorSpecialty{
			DoctorID:      user.ID,
			MainSpecialty: f.Specialty,
		}).Error)
	}
	return user
}

// Date returns midnight UTC of the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

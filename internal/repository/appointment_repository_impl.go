package repository

import (
	"errors"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	domainRepo "github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.
		Preload("Doctor").
		Preload("Patient").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Where("status NOT IN ?", entity.InactiveAppointmentStatuses).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	query := db.Model(&entity.Appointment{})

	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.From != nil {
		query = query.Where("appointment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("appointment_date <= ?", *filter.To)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []entity.Appointment
	query = query.
		Preload("Doctor").
		Preload("Patient").
		Order("appointment_date ASC, start_time ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit)
	}
	if err := query.Find(&appointments).Error; err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Save(appointment).Error
}

func (r *appointmentRepository) CountByDoctor(db *gorm.DB, doctorID uuid.UUID, from, to *time.Time, activeOnly bool) (int64, error) {
	query := db.Model(&entity.Appointment{}).Where("doctor_id = ?", doctorID)
	if from != nil {
		query = query.Where("appointment_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("appointment_date <= ?", *to)
	}
	if activeOnly {
		query = query.Where("status <> ?", entity.AppointmentStatusCancelled)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountDistinctPatients(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Count(&count).Error
	return count, err
}

type doctorPatientRow struct {
	PatientID       string
	FullName        string
	Email           *string
	PhoneNumber     *string
	Appointments    int64
	LastAppointment string
}

func (r *appointmentRepository) FindDoctorPatients(db *gorm.DB, doctorID uuid.UUID, page entity.Page) ([]entity.DoctorPatient, int64, error) {
	var total int64
	if err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Table("appointments").
		Select(`appointments.patient_id AS patient_id,
			users.full_name AS full_name,
			users.email AS email,
			users.phone_number AS phone_number,
			COUNT(appointments.id) AS appointments,
			MAX(appointments.appointment_date) AS last_appointment`).
		Joins("JOIN users ON users.id = appointments.patient_id").
		Where("appointments.doctor_id = ?", doctorID).
		Group("appointments.patient_id, users.full_name, users.email, users.phone_number").
		Order("last_appointment DESC, users.full_name ASC")
	if page.Limit > 0 {
		query = query.Offset(page.Offset()).Limit(page.Limit)
	}

	var rows []doctorPatientRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	patients := make([]entity.DoctorPatient, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.PatientID)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, entity.DoctorPatient{
			PatientID:       id,
			FullName:        row.FullName,
			Email:           row.Email,
			PhoneNumber:     row.PhoneNumber,
			Appointments:    row.Appointments,
			LastAppointment: parseAggregateDate(row.LastAppointment),
		})
	}
	return patients, total, nil
}

// parseAggregateDate reads MAX(date) which drivers return as text.
func parseAggregateDate(value string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	if len(value) >= 10 {
		if t, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r *appointmentRepository) HasRelationship(db *gorm.DB, doctorID, patientID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	return count > 0, err
}

func (r *appointmentRepository) FindDueReminders(db *gorm.DB, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Preload("Doctor").
		Preload("Patient").
		Where("appointment_date = ? AND reminder_sent_at IS NULL", date).
		Where("status IN ?", []entity.AppointmentStatus{
			entity.AppointmentStatusPending,
			entity.AppointmentStatusConfirmed,
		}).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error
}

package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON is a free-form object stored as jsonb.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	result := JSON{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Audit actions
const (
	AuditActionUserRegister        = "user.register"
	AuditActionUserVerify          = "user.verify"
	AuditActionUserLogin           = "user.login"
	AuditActionPasswordReset       = "user.password_reset"
	AuditActionAdminCreate         = "admin.create"
	AuditActionAppointmentCreate   = "appointment.create"
	AuditActionAppointmentStatus   = "appointment.status"
	AuditActionAppointmentCancel   = "appointment.cancel"
	AuditActionPrescriptionCreate  = "prescription.create"
	AuditActionPrescriptionUpdate  = "prescription.update"
	AuditActionDoctorProfileUpdate = "doctor.profile_update"
	AuditActionDoctorSchedule      = "doctor.schedule_update"
	AuditActionDoctorVerification  = "doctor.verification"
	AuditActionPatientProfile      = "patient.profile_update"
)

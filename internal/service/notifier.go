package service

import (
	"context"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Notifier delivers out-of-band messages to users.
type Notifier interface {
	SendOTP(ctx context.Context, user *entity.User, destination string, code string) error
	SendPasswordReset(ctx context.Context, user *entity.User, destination string, token string) error
	SendAppointmentReminder(ctx context.Context, appointment *entity.Appointment) error
}

// logNotifier writes every message to the log instead of an SMS or email gateway.
type logNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) SendOTP(ctx context.Context, user *entity.User, destination string, code string) error {
	n.log.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"destination": destination,
		"otp":         code,
	}).Info("[MOCK] OTP sent")
	return nil
}

func (n *logNotifier) SendPasswordReset(ctx context.Context, user *entity.User, destination string, token string) error {
	n.log.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"destination": destination,
		"reset_token": token,
	}).Info("[MOCK] Password reset token sent")
	return nil
}

func (n *logNotifier) SendAppointmentReminder(ctx context.Context, appointment *entity.Appointment) error {
	n.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"patient":        appointment.Patient.FullName,
		"doctor":         appointment.Doctor.FullName,
		"date":           appointment.AppointmentDate.Format("2006-01-02"),
		"start_time":     appointment.StartTime,
	}).Info("[MOCK] Appointment reminder sent")
	return nil
}

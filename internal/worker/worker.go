package worker

import (
	"context"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Worker runs the periodic maintenance jobs: next-day appointment reminders
// and removal of expired verification tokens.
type Worker struct {
	db              *gorm.DB
	log             *logrus.Logger
	cfg             config.JobConfig
	loc             *time.Location
	appointmentRepo repository.AppointmentRepository
	tokenRepo       repository.VerificationTokenRepository
	notifier        service.Notifier
	scheduler       *gocron.Scheduler
	now             func() time.Time
}

func NewWorker(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	appointmentRepo repository.AppointmentRepository,
	tokenRepo repository.VerificationTokenRepository,
	notifier service.Notifier,
) *Worker {
	loc := cfg.Location()
	scheduler := gocron.NewScheduler(loc)
	scheduler.SingletonModeAll()

	return &Worker{
		db:              db,
		log:             log,
		cfg:             cfg.Jobs,
		loc:             loc,
		appointmentRepo: appointmentRepo,
		tokenRepo:       tokenRepo,
		notifier:        notifier,
		scheduler:       scheduler,
		now:             time.Now,
	}
}

// Start registers the jobs and runs the scheduler in the background.
// It does nothing when jobs are disabled.
func (w *Worker) Start() error {
	if !w.cfg.Enabled {
		w.log.Info("Background jobs disabled")
		return nil
	}

	if _, err := w.scheduler.Every(w.cfg.ReminderInterval).Tag("reminders").Do(func() {
		if _, err := w.SendReminders(context.Background()); err != nil {
			w.log.Warnf("Failed to send appointment reminders: %+v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := w.scheduler.Every(w.cfg.TokenPurgeInterval).Tag("token-purge").Do(func() {
		if _, err := w.PurgeExpiredTokens(context.Background()); err != nil {
			w.log.Warnf("Failed to purge verification tokens: %+v", err)
		}
	}); err != nil {
		return err
	}

	w.scheduler.StartAsync()
	w.log.Infof("Background jobs started: reminders every %s, token purge every %s", w.cfg.ReminderInterval, w.cfg.TokenPurgeInterval)
	return nil
}

func (w *Worker) Stop() {
	if w.scheduler.IsRunning() {
		w.scheduler.Stop()
		w.log.Info("Background jobs stopped")
	}
}

// SendReminders notifies patients of tomorrow's pending and confirmed
// appointments. Each appointment is reminded at most once; a failed delivery
// is retried on the next run.
func (w *Worker) SendReminders(ctx context.Context) (int, error) {
	now := w.now()
	local := now.In(w.loc).AddDate(0, 0, 1)
	tomorrow := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	db := w.db.WithContext(ctx)
	appointments, err := w.appointmentRepo.FindDueReminders(db, tomorrow)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range appointments {
		appointment := &appointments[i]
		if err := w.notifier.SendAppointmentReminder(ctx, appointment); err != nil {
			w.log.Warnf("Failed to send reminder for appointment %s: %+v", appointment.ID, err)
			continue
		}
		if err := w.appointmentRepo.MarkReminderSent(db, appointment.ID, now.UTC()); err != nil {
			w.log.Warnf("Failed to mark reminder sent for appointment %s: %+v", appointment.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		w.log.Infof("Appointment reminders sent: %d of %d", sent, len(appointments))
	}
	return sent, nil
}

func (w *Worker) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := w.tokenRepo.DeleteExpired(w.db.WithContext(ctx), w.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.log.Infof("Expired verification tokens purged: %d", n)
	}
	return n, nil
}

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	deliveryHttp "github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/handler"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/middleware"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/infrastructure/cache"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/infrastructure/database"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/worker"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/jwt"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Worker      *worker.Worker
	Validator   *validator.CustomValidator

	AuthUsecase  usecase.AuthUsecase
	AdminUsecase usecase.AdminUsecase

	slotGuard *service.SlotGuard
}

// Load reads the configuration and opens the database. Commands that only
// touch the schema stop here.
func Load(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &App{Config: cfg, Log: setupLogger(cfg.App.Debug)}
	app.Log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, cfg.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	return app, nil
}

// New creates a new App instance with all dependencies initialized
func New(configPath string) (*App, error) {
	app, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(app.Config.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	app.initialize()
	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(debug bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// initialize builds every layer on top of the open connections.
func (app *App) initialize() {
	cfg, db, log, rdb := app.Config, app.DB, app.Log, app.RedisClient

	jwtService := jwt.NewJWTService(cfg.JWT)
	app.Validator = validator.NewValidator()

	// Repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	prescriptionRepo := repository.NewPrescriptionRepository()
	medicineRepo := repository.NewMedicineRepository()
	tokenRepo := repository.NewVerificationTokenRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	tokenStore := service.NewTokenStore(rdb, log)
	app.slotGuard = service.NewSlotGuard(rdb, log, cfg.Slots.HoldTTL, cfg.Slots.CacheTTL)
	notifier := service.NewLogNotifier(log)
	auditService := service.NewAuditService(log, auditLogRepo)

	// Usecases
	app.AuthUsecase = usecase.NewAuthUsecase(db, log, cfg, userRepo, roleRepo, doctorProfileRepo, patientProfileRepo, tokenRepo, jwtService, tokenStore, notifier, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, cfg, appointmentRepo, doctorProfileRepo, app.slotGuard, auditService)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, cfg, userRepo, doctorProfileRepo, appointmentRepo, prescriptionRepo, app.slotGuard, auditService)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(db, log, cfg, userRepo, appointmentRepo, prescriptionRepo, medicineRepo, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	app.AdminUsecase = usecase.NewAdminUsecase(db, log, doctorProfileRepo, medicineRepo, auditService)
	systemUsecase := usecase.NewSystemUsecase(db, rdb, log, cfg)

	// Handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(app.AuthUsecase, app.Validator),
		Doctor:       handler.NewDoctorHandler(doctorProfileUsecase, app.Validator),
		Appointment:  handler.NewAppointmentHandler(appointmentUsecase, app.Validator),
		Prescription: handler.NewPrescriptionHandler(prescriptionUsecase, app.Validator),
		Patient:      handler.NewPatientHandler(patientProfileUsecase, app.Validator),
		AuditLog:     handler.NewAuditLogHandler(auditLogUsecase, app.Validator),
		Admin:        handler.NewAdminHandler(app.AdminUsecase, app.Validator),
		System:       handler.NewSystemHandler(systemUsecase),
	}

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	loggerMiddleware := middleware.NewLoggerMiddleware(log)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rdb, log, cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.TrustedProxies)

	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, loggerMiddleware, rateLimitMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.Worker = worker.NewWorker(db, log, cfg, appointmentRepo, tokenRepo, notifier)
}

// Run starts the HTTP server and background jobs, then blocks until shutdown
func (app *App) Run() {
	app.Worker.Start()

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Worker.Stop()
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases the slot guard, the database and Redis.
func (app *App) Close() {
	if app.slotGuard != nil {
		app.slotGuard.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

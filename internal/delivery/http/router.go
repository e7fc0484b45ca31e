package http

import (
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/handler"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	appointmentHandler  *handler.AppointmentHandler
	prescriptionHandler *handler.PrescriptionHandler
	patientHandler      *handler.PatientHandler
	auditLogHandler     *handler.AuditLogHandler
	adminHandler        *handler.AdminHandler
	systemHandler       *handler.SystemHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	loggerMiddleware    *middleware.LoggerMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Doctor       *handler.DoctorHandler
	Appointment  *handler.AppointmentHandler
	Prescription *handler.PrescriptionHandler
	Patient      *handler.PatientHandler
	AuditLog     *handler.AuditLogHandler
	Admin        *handler.AdminHandler
	System       *handler.SystemHandler
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggerMiddleware *middleware.LoggerMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         handlers.Auth,
		doctorHandler:       handlers.Doctor,
		appointmentHandler:  handlers.Appointment,
		prescriptionHandler: handlers.Prescription,
		patientHandler:      handlers.Patient,
		auditLogHandler:     handlers.AuditLog,
		adminHandler:        handlers.Admin,
		systemHandler:       handlers.System,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		loggerMiddleware:    loggerMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

// Setup registers every route and returns the router wrapped in the CORS and
// request logging middleware, so preflight requests are answered even when no
// route matches them.
func (r *Router) Setup() http.Handler {
	r.router.HandleFunc("/", r.systemHandler.Root).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", r.systemHandler.Health).Methods(http.MethodGet)

	// Auth routes (public, rate limited)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.rateLimitMiddleware.Handle)
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/verify", r.authHandler.Verify).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/resend-otp", r.authHandler.ResendOTP).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", r.authHandler.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", r.authHandler.ResetPassword).Methods(http.MethodPost)

	// Auth routes (public)
	api.HandleFunc("/auth/refresh", r.authHandler.RefreshToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/method", r.authHandler.Methods).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Doctor routes (public)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.HandleFunc("/search", r.doctorHandler.Search).Methods(http.MethodGet)
	doctors.HandleFunc("/specialties", r.doctorHandler.Specialties).Methods(http.MethodGet)
	doctors.HandleFunc("/cities", r.doctorHandler.Cities).Methods(http.MethodGet)

	// Doctor routes (protected - doctor only)
	doctorOwn := api.PathPrefix("/doctors").Subrouter()
	doctorOwn.Use(r.authMiddleware.Authenticate)
	doctorOwn.Use(middleware.RequireDoctor)
	doctorOwn.HandleFunc("/me", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctorOwn.HandleFunc("/profile", r.doctorHandler.UpdateProfile).Methods(http.MethodPut)
	doctorOwn.HandleFunc("/profile/stats", r.doctorHandler.GetStats).Methods(http.MethodGet)
	doctorOwn.HandleFunc("/schedule", r.doctorHandler.UpdateSchedule).Methods(http.MethodPut)
	doctorOwn.HandleFunc("/patients", r.doctorHandler.MyPatients).Methods(http.MethodGet)

	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Appointment routes
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Handle("", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.Create))).Methods(http.MethodPost)
	appointments.HandleFunc("/doctors/{doctor_id}/slots", r.appointmentHandler.AvailableSlots).Methods(http.MethodGet)

	participant := appointments.NewRoute().Subrouter()
	participant.Use(middleware.RequireDoctorOrPatient)
	participant.HandleFunc("/my", r.appointmentHandler.GetMy).Methods(http.MethodGet)
	participant.HandleFunc("/today", r.appointmentHandler.GetToday).Methods(http.MethodGet)
	participant.HandleFunc("/{id}", r.appointmentHandler.GetByID).Methods(http.MethodGet)
	participant.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	appointments.Handle("/{id}/status", middleware.RequireDoctor(http.HandlerFunc(r.appointmentHandler.UpdateStatus))).Methods(http.MethodPut)

	// Prescription routes
	prescriptions := api.PathPrefix("/prescriptions").Subrouter()
	prescriptions.Use(r.authMiddleware.Authenticate)

	prescriber := prescriptions.NewRoute().Subrouter()
	prescriber.Use(middleware.RequireDoctor)
	prescriber.HandleFunc("", r.prescriptionHandler.Create).Methods(http.MethodPost)
	prescriber.HandleFunc("/medicines/search", r.prescriptionHandler.SearchMedicines).Methods(http.MethodGet)
	prescriber.HandleFunc("/stats/doctor", r.prescriptionHandler.GetStats).Methods(http.MethodGet)
	prescriber.HandleFunc("/patient/{patient_id}", r.prescriptionHandler.GetPatientPrescriptions).Methods(http.MethodGet)
	prescriber.HandleFunc("/{id}", r.prescriptionHandler.Update).Methods(http.MethodPut)

	prescriptionReader := prescriptions.NewRoute().Subrouter()
	prescriptionReader.Use(middleware.RequireDoctorOrPatient)
	prescriptionReader.HandleFunc("/my", r.prescriptionHandler.GetMy).Methods(http.MethodGet)
	prescriptionReader.HandleFunc("/{id}", r.prescriptionHandler.GetByID).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Use(middleware.RequirePatient)
	patients.HandleFunc("/profile", r.patientHandler.GetMyProfile).Methods(http.MethodGet)
	patients.HandleFunc("/profile", r.patientHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/verify", r.adminHandler.VerifyDoctorDocuments).Methods(http.MethodPut)

	return r.corsMiddleware.Handle(r.loggerMiddleware.Handle(r.router))
}

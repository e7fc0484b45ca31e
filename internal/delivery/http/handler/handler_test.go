package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
	Meta    *response.Meta    `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func withVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

type stubAuth struct {
	usecase.AuthUsecase
	loginErr error
	calls    int
}

func (s *stubAuth) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	s.calls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil
}

func (s *stubAuth) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"success", `{"identifier":"a@b.c","password":"x"}`, nil, http.StatusOK, "Login successful"},
		{"malformed body", `{`, nil, http.StatusBadRequest, "Invalid request body"},
		{"missing password", `{"identifier":"a@b.c"}`, nil, http.StatusBadRequest, "Validation failed"},
		{"bad credentials", `{"identifier":"a@b.c","password":"x"}`, usecase.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"blocked", `{"identifier":"a@b.c","password":"x"}`, &usecase.AccountStatusError{Status: entity.UserStatusBlocked}, http.StatusUnauthorized, "Account is blocked"},
		{"unverified", `{"identifier":"a@b.c","password":"x"}`, usecase.ErrEmailNotVerified, http.StatusUnauthorized, "Email not verified"},
		{"unexpected", `{"identifier":"a@b.c","password":"x"}`, errors.New("boom"), http.StatusInternalServerError, "Failed to login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuth{loginErr: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.status == http.StatusOK, env.Success)
		})
	}
}

func TestAuthHandlerLogoutWithoutBody(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, validator.NewValidator())
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubAppointments struct {
	usecase.AppointmentUsecase
	err      error
	listReq  *dto.AppointmentListRequest
	slotsFor uuid.UUID
}

func (s *stubAppointments) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: uuid.New(), Status: string(entity.AppointmentStatusPending)}, nil
}

func (s *stubAppointments) GetMyAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	s.listReq = req
	return &dto.AppointmentListResponse{}, s.err
}

func (s *stubAppointments) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: id}, nil
}

func (s *stubAppointments) AvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error) {
	s.slotsFor = doctorID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AvailableSlotsResponse{DoctorID: doctorID, Date: req.Date, IsWorking: true}, nil
}

func TestAppointmentHandlerCreateErrors(t *testing.T) {
	body := fmt.Sprintf(`{"doctor_id":%q,"appointment_date":"2026-11-03","time_slot":{"start_time":"09:00","end_time":"09:30"}}`, uuid.New())

	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusCreated},
		{usecase.ErrDoctorUnavailable, http.StatusNotFound},
		{usecase.ErrSlotAlreadyBooked, http.StatusConflict},
		{usecase.ErrSlotBeingBooked, http.StatusConflict},
		{usecase.ErrScheduleNotConfigured, http.StatusUnprocessableEntity},
		{usecase.ErrDoctorNotWorking, http.StatusUnprocessableEntity},
		{usecase.ErrOutsideWorkingHours, http.StatusUnprocessableEntity},
		{usecase.ErrPastDate, http.StatusBadRequest},
		{usecase.ErrInvalidTimeSlot, http.StatusBadRequest},
		{usecase.ErrForbidden, http.StatusForbidden},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		name := "ok"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			h := NewAppointmentHandler(&stubAppointments{err: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAppointmentHandlerCreateValidation(t *testing.T) {
	h := NewAppointmentHandler(&stubAppointments{}, validator.NewValidator())
	body := `{"doctor_id":"nope","appointment_date":"03-11-2026","time_slot":{"start_time":"9am","end_time":"09:30"}}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Error, "doctor_id")
	assert.Contains(t, env.Error, "appointment_date")
}

func TestAppointmentHandlerGetMyQuery(t *testing.T) {
	stub := &stubAppointments{}
	h := NewAppointmentHandler(stub, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.GetMy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/my?status=confirmed&page=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listReq)
	assert.Equal(t, "confirmed", stub.listReq.Status)
	assert.Equal(t, 2, stub.listReq.Page)
	assert.Equal(t, defaultLimit, stub.listReq.Limit)

	rec = httptest.NewRecorder()
	h.GetMy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/my?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.GetMy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/my?page=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid page", decodeEnvelope(t, rec).Message)
}

func TestAppointmentHandlerCancel(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		id     string
		body   string
		err    error
		status int
	}{
		{"ok", id.String(), `{"reason":"travel"}`, nil, http.StatusOK},
		{"bad id", "123", `{"reason":"travel"}`, nil, http.StatusBadRequest},
		{"missing reason", id.String(), `{}`, nil, http.StatusBadRequest},
		{"not found", id.String(), `{"reason":"travel"}`, usecase.ErrAppointmentNotFound, http.StatusNotFound},
		{"closed", id.String(), `{"reason":"travel"}`, entity.ErrAppointmentClosed, http.StatusBadRequest},
		{"stranger", id.String(), `{"reason":"travel"}`, usecase.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&stubAppointments{err: tt.err}, validator.NewValidator())
			req := withVars(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			h.Cancel(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAppointmentHandlerAvailableSlots(t *testing.T) {
	doctorID := uuid.New()
	stub := &stubAppointments{}
	h := NewAppointmentHandler(stub, validator.NewValidator())

	req := withVars(httptest.NewRequest(http.MethodGet, "/?date=2026-11-03", nil), map[string]string{"doctor_id": doctorID.String()})
	rec := httptest.NewRecorder()
	h.AvailableSlots(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, doctorID, stub.slotsFor)

	var slots dto.AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &slots))
	assert.Equal(t, "2026-11-03", slots.Date)

	req = withVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"doctor_id": doctorID.String()})
	rec = httptest.NewRecorder()
	h.AvailableSlots(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub.err = usecase.ErrDoctorUnavailable
	req = withVars(httptest.NewRequest(http.MethodGet, "/?date=2026-11-03", nil), map[string]string{"doctor_id": doctorID.String()})
	rec = httptest.NewRecorder()
	h.AvailableSlots(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubPrescriptions struct {
	usecase.PrescriptionUsecase
	searchReq *dto.MedicineSearchRequest
}

func (s *stubPrescriptions) SearchMedicines(ctx context.Context, req *dto.MedicineSearchRequest) ([]dto.MedicineResponse, error) {
	s.searchReq = req
	return []dto.MedicineResponse{}, nil
}

func TestPrescriptionHandlerSearchMedicines(t *testing.T) {
	stub := &stubPrescriptions{}
	h := NewPrescriptionHandler(stub, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.SearchMedicines(rec, httptest.NewRequest(http.MethodGet, "/?q=amox", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.searchReq)
	assert.Equal(t, "amox", stub.searchReq.Query)
	assert.Equal(t, defaultMedicineSearchLimit, stub.searchReq.Limit)
	assert.JSONEq(t, `{"medicines":[]}`, string(decodeEnvelope(t, rec).Data))

	rec = httptest.NewRecorder()
	h.SearchMedicines(rec, httptest.NewRequest(http.MethodGet, "/?q=amox&limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubAuditLogs struct {
	usecase.AuditLogUsecase
}

func (s *stubAuditLogs) GetAllAuditLogs(ctx context.Context, req *dto.PageRequest) (*dto.AuditLogListResponse, error) {
	return &dto.AuditLogListResponse{
		Logs:       []dto.AuditLogResponse{{}, {}},
		Pagination: dto.NewPagination(req.Page, req.Limit, 45),
	}, nil
}

func (s *stubAuditLogs) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	if id != 7 {
		return nil, usecase.ErrAuditLogNotFound
	}
	return &dto.AuditLogResponse{}, nil
}

func TestAuditLogHandler(t *testing.T) {
	h := NewAuditLogHandler(&stubAuditLogs{}, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/?page=2&limit=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, response.Meta{Page: 2, Limit: 10, Total: 45, TotalPages: 5}, *env.Meta)

	tests := []struct {
		id     string
		status int
	}{
		{"7", http.StatusOK},
		{"8", http.StatusNotFound},
		{"abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.GetAuditLog(rec, withVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.id}))
		assert.Equal(t, tt.status, rec.Code, tt.id)
	}
}

type stubAdmin struct {
	usecase.AdminUsecase
	err error
}

func (s *stubAdmin) VerifyDoctorDocuments(ctx context.Context, doctorID uuid.UUID, req *dto.VerifyDoctorDocumentsRequest) (*dto.VerifyDoctorDocumentsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.VerifyDoctorDocumentsResponse{}, nil
}

func TestAdminHandlerVerifyDoctorDocuments(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"approve", `{"approved":true}`, nil, http.StatusOK},
		{"approved missing", `{}`, nil, http.StatusBadRequest},
		{"reason required", `{"approved":false}`, usecase.ErrRejectionReasonRequired, http.StatusBadRequest},
		{"unknown doctor", `{"approved":true}`, usecase.ErrDoctorNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdminHandler(&stubAdmin{err: tt.err}, validator.NewValidator())
			req := withVars(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body)), map[string]string{"id": id})
			rec := httptest.NewRecorder()
			h.VerifyDoctorDocuments(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

type stubSystem struct {
	usecase.SystemUsecase
	healthy bool
}

func (s *stubSystem) Health(ctx context.Context) (*dto.HealthResponse, bool) {
	res := &dto.HealthResponse{Status: "ok", Database: "up", Redis: "up"}
	if !s.healthy {
		res.Status, res.Redis = "degraded", "down"
	}
	return res, s.healthy
}

func TestSystemHandlerHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSystemHandler(&stubSystem{healthy: true}).Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewSystemHandler(&stubSystem{}).Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), `"redis":"down"`)
}

func TestCommonError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{usecase.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", usecase.ErrForbidden), http.StatusForbidden},
		{usecase.ErrInvalidID, http.StatusBadRequest},
		{usecase.ErrInvalidDateFormat, http.StatusBadRequest},
		{usecase.ErrNothingToUpdate, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		commonError(rec, tt.err, "fallback")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}
}

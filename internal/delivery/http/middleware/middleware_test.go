package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/jwt"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	userID := uuid.New()
	access, err := jwtService.GenerateAccessToken(userID, entity.RoleIDDoctor)
	require.NoError(t, err)
	refresh, err := jwtService.GenerateRefreshToken(userID, entity.RoleIDDoctor)
	require.NoError(t, err)
	key := "access_token:" + userID.String() + ":" + access.ID

	t.Run("missing header", func(t *testing.T) {
		db, _ := redismock.NewClientMock()
		m := NewAuthMiddleware(jwtService, service.NewTokenStore(db, quietLogger()), quietLogger())
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		db, _ := redismock.NewClientMock()
		m := NewAuthMiddleware(jwtService, service.NewTokenStore(db, quietLogger()), quietLogger())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+refresh.Token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(0)
		m := NewAuthMiddleware(jwtService, service.NewTokenStore(db, quietLogger()), quietLogger())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access.Token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetErr(errors.New("down"))
		m := NewAuthMiddleware(jwtService, service.NewTokenStore(db, quietLogger()), quietLogger())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access.Token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("valid token populates context", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectExists(key).SetVal(1)
		m := NewAuthMiddleware(jwtService, service.NewTokenStore(db, quietLogger()), quietLogger())

		var gotUser uuid.UUID
		var gotRole int
		var gotToken string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = GetUserIDFromContext(r.Context())
			gotRole, _ = GetRoleIDFromContext(r.Context())
			gotToken, _ = GetTokenIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+access.Token)
		rec := httptest.NewRecorder()
		m.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, entity.RoleIDDoctor, gotRole)
		assert.Equal(t, access.ID, gotToken)
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		role   *int
		guard  func(http.Handler) http.Handler
		status int
	}{
		{"no role", nil, RequireDoctor, http.StatusUnauthorized},
		{"patient on doctor route", intPtr(entity.RoleIDPatient), RequireDoctor, http.StatusForbidden},
		{"doctor on doctor route", intPtr(entity.RoleIDDoctor), RequireDoctor, http.StatusNoContent},
		{"admin route", intPtr(entity.RoleIDAdmin), RequireAdmin, http.StatusNoContent},
		{"admin on shared route", intPtr(entity.RoleIDAdmin), RequireDoctorOrPatient, http.StatusForbidden},
		{"patient on shared route", intPtr(entity.RoleIDPatient), RequireDoctorOrPatient, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != nil {
				req = req.WithContext(WithUser(req.Context(), uuid.New(), *tt.role, "tid"))
			}
			rec := httptest.NewRecorder()
			tt.guard(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func intPtr(v int) *int { return &v }

func TestCORS(t *testing.T) {
	m := NewCORSMiddleware([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	m.Handle(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	m.Handle(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRateLimitMiddleware(db, quietLogger(), 2, time.Minute, nil)
	key := "ratelimit:/api/v1/auth/login:10.0.0.1"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)
	mock.ExpectIncr(key).SetErr(errors.New("down"))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		m.Handle(okHandler()).ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRateLimitMiddleware(db, quietLogger(), 2, time.Minute, []string{"192.168.1.10"})
	key := "ratelimit:/api/v1/auth/login:10.0.0.1"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	for n := int64(2); n <= 5; n++ {
		mock.ExpectIncr(key).SetVal(n)
	}

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.1.1.%d", i))
		rec := httptest.NewRecorder()
		m.Handle(okHandler()).ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusNoContent, http.StatusNoContent,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitClientIP(t *testing.T) {
	m := NewRateLimitMiddleware(nil, quietLogger(), 2, time.Minute, []string{"10.0.0.0/8", "172.17.0.1", "not-an-ip"})
	assert.Len(t, m.trustedProxies, 2)

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  []string
		want       string
	}{
		{"untrusted peer keeps its own address", "203.0.113.7:4000", []string{"1.1.1.1"}, "203.0.113.7"},
		{"trusted proxy forwards the client", "10.1.2.3:4000", []string{"198.51.100.4"}, "198.51.100.4"},
		{"spoofed left hops are skipped", "10.1.2.3:4000", []string{"6.6.6.6, 198.51.100.4"}, "198.51.100.4"},
		{"proxy chain is unwound", "172.17.0.1:4000", []string{"198.51.100.4, 10.9.9.9"}, "198.51.100.4"},
		{"repeated headers are joined", "10.1.2.3:4000", []string{"6.6.6.6", "198.51.100.4"}, "198.51.100.4"},
		{"trusted proxy without header", "10.1.2.3:4000", nil, "10.1.2.3"},
		{"every hop trusted", "10.1.2.3:4000", []string{"10.4.4.4"}, "10.4.4.4"},
		{"mapped ipv4 peer", "[::ffff:10.1.2.3]:4000", []string{"198.51.100.4"}, "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, m.clientIP(req))
		})
	}
}

func TestLoggerMiddleware(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	m := NewLoggerMiddleware(log)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	m.Handle(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])
	assert.Equal(t, "/api/v1/health", entry.Data["path"])

	m.Handle(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/boom", nil))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

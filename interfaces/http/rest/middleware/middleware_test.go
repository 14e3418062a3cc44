package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"mindmap/pkg/auth"
	"mindmap/pkg/common"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "middleware-secret"

func tokenFor(t *testing.T, userID string, expiry time.Duration) string {
	t.Helper()
	generator, err := auth.NewJWTGenerator(secret, "mindmap", expiry)
	require.NoError(t, err)
	token, err := generator.GenerateToken(userID, "", nil)
	require.NoError(t, err)
	return token
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	userID, _ := common.GetUserID(r.Context())
	_, _ = w.Write([]byte(user.UserID + "|" + userID))
}

func TestAuthenticate(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: "mindmap"})
	require.NoError(t, err)
	handler := Authenticate(validator, nil, zap.NewNop())(http.HandlerFunc(echoUser))

	tests := []struct {
		name    string
		prepare func(*http.Request)
		status  int
		message string
	}{
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tokenFor(t, "user123", time.Minute)) },
			status:  http.StatusOK,
		},
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenFor(t, "user123", time.Minute)}) },
			status:  http.StatusOK,
		},
		{
			name:    "missing",
			prepare: func(*http.Request) {},
			status:  http.StatusUnauthorized,
			message: "Missing authentication token",
		},
		{
			name:    "expired",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tokenFor(t, "user123", -time.Minute)) },
			status:  http.StatusUnauthorized,
			message: "Token has expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user123|user123", rec.Body.String())
				return
			}
			var resp common.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestAuthenticate_RateLimit(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: "mindmap"})
	require.NoError(t, err)
	handler := Authenticate(validator, auth.NewUserRateLimiter(1), zap.NewNop())(http.HandlerFunc(echoUser))
	token := tokenFor(t, "user123", time.Minute)

	codes := make([]int, 0, 2)
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	retry, err := strconv.Atoi(last.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 60, retry, 1)
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	handler := Authenticate(nil, nil, zap.NewNop())(http.HandlerFunc(echoUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoggerAndRequestContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.GetRequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := middleware.RequestID(RequestContext(Logger(zap.New(core))(inner)))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v2/sessions", nil))

	assert.NotEmpty(t, seen)
	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
}

package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"

	"io"
	"log/slog"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type APIKeyServiceMock struct {
	mock.Mock
}

func (m *APIKeyServiceMock) Authenticate(ctx context.Context, plaintext string) (*models.User, error) {
	args := m.Called(ctx, plaintext)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type RateLimitServiceMock struct {
	mock.Mock
}

func (m *RateLimitServiceMock) RateLimitFor(ctx context.Context, userUID string) int {
	args := m.Called(ctx, userUID)
	return args.Int(0)
}

type MinuteCounterMock struct {
	mock.Mock
}

func (m *MinuteCounterMock) CountPerMinute(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handlerCalled := false

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "uid-123", r.Context().Value(middlewarectx.UserUID))
		assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
		assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.JWTMiddleware(authMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockUser:       nil,
			mockErr:        errors.New("token expired"),
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockUser:       &models.User{UID: "uid-123", Username: "testuser", Role: "user"},
			mockErr:        nil,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			authMock.ExpectedCalls = nil
			authMock.Calls = nil
			if tt.mockUser != nil || tt.mockErr != nil {
				authMock.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockUser, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	logger := newNoopLogger()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := middlewarectx.AdminOnlyMiddleware(logger)(nextHandler)

	tests := []struct {
		name           string
		role           any
		wantStatusCode int
	}{
		{name: "admin passes", role: "admin", wantStatusCode: http.StatusOK},
		{name: "user forbidden", role: "user", wantStatusCode: http.StatusForbidden},
		{name: "missing role forbidden", role: nil, wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Role, tt.role))
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	logger := newNoopLogger()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "uid-ent", r.Context().Value(middlewarectx.UserUID))
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		key            string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
	}{
		{
			name:           "missing key",
			key:            "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid key",
			key:            "ent_badkey",
			mockErr:        errors.New("invalid api key"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid key",
			key:            "ent_goodkey",
			mockUser:       &models.User{UID: "uid-ent", Username: "enterprise", Role: "user"},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keysMock := new(APIKeyServiceMock)
			if tt.key != "" {
				keysMock.On("Authenticate", mock.Anything, tt.key).Return(tt.mockUser, tt.mockErr).Once()
			}
			mw := middlewarectx.APIKeyMiddleware(keysMock, logger)(nextHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/enterprise/bulk-analysis", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			keysMock.AssertExpectations(t)
		})
	}
}

func TestPlanRateLimitMiddleware(t *testing.T) {
	logger := newNoopLogger()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		count          int64
		countErr       error
		limit          int
		wantStatusCode int
		wantRemaining  string
	}{
		{
			name:           "under limit",
			count:          5,
			limit:          10,
			wantStatusCode: http.StatusOK,
			wantRemaining:  "5",
		},
		{
			name:           "over limit",
			count:          11,
			limit:          10,
			wantStatusCode: http.StatusTooManyRequests,
			wantRemaining:  "0",
		},
		{
			name:           "counter failure passes request through",
			count:          0,
			countErr:       errors.New("redis down"),
			limit:          10,
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limitsMock := new(RateLimitServiceMock)
			counterMock := new(MinuteCounterMock)
			limitsMock.On("RateLimitFor", mock.Anything, "uid-123").Return(tt.limit).Once()
			counterMock.On("CountPerMinute", mock.Anything, mock.AnythingOfType("string")).
				Return(tt.count, tt.countErr).Once()

			mw := middlewarectx.PlanRateLimitMiddleware(limitsMock, counterMock, logger)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-123"))
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantRemaining != "" {
				assert.Equal(t, tt.wantRemaining, rec.Header().Get("X-RateLimit-Remaining"))
			}
		})
	}
}

func TestPlanRateLimitMiddleware_NoUser(t *testing.T) {
	logger := newNoopLogger()
	limitsMock := new(RateLimitServiceMock)
	counterMock := new(MinuteCounterMock)

	mw := middlewarectx.PlanRateLimitMiddleware(limitsMock, counterMock, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

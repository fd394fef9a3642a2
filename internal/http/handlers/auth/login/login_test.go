package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, req models.DummyLogin) (string, string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockRole       string
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    models.DummyLogin{Username: "grower1", Password: "password123"},
			mockToken:      "tok",
			mockRole:       "user",
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":    "tok",
				"role":     "user",
				"username": "grower1",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    models.DummyLogin{Username: "grower1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "invalid credentials",
			requestBody:    models.DummyLogin{Username: "grower1", Password: "wrongpass123"},
			mockErr:        auth.ErrInvalidCredentials,
			mockCalled:     true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name:           "disabled account",
			requestBody:    models.DummyLogin{Username: "grower1", Password: "password123"},
			mockErr:        auth.ErrUserDisabled,
			mockCalled:     true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name:           "internal error",
			requestBody:    models.DummyLogin{Username: "grower1", Password: "password123"},
			mockErr:        errors.New("db down"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not login",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockCalled {
				serviceMock.On("Login", mock.Anything, tt.requestBody.(models.DummyLogin)).
					Return(tt.mockToken, tt.mockRole, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			if tt.mockCalled {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}

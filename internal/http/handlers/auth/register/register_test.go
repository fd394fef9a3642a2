package register

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
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type SubscriptionsMock struct {
	mock.Mock
}

func (m *SubscriptionsMock) SubscribeFree(ctx context.Context, userUID, username string) error {
	args := m.Called(ctx, userUID, username)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummyRegister{
		Email:    "grower@example.com",
		Username: "grower1",
		Password: "password123",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUID        string
		mockErr        error
		mockCalled     bool
		freeErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "successful registration",
			requestBody:    validReq,
			mockUID:        "uid-new",
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "free plan assignment failure does not break registration",
			requestBody:    validReq,
			mockUID:        "uid-new",
			mockCalled:     true,
			freeErr:        errors.New("no free plan seeded"),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid email",
			requestBody:    models.DummyRegister{Email: "not-an-email", Username: "grower1", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email address",
		},
		{
			name:           "short password",
			requestBody:    models.DummyRegister{Email: "grower@example.com", Username: "grower1", Password: "short"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
		},
		{
			name:           "registration failure",
			requestBody:    validReq,
			mockErr:        errors.New("username taken"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			subsMock := new(SubscriptionsMock)
			handler := New(newNoopLogger(), serviceMock, subsMock)

			if tt.mockCalled {
				serviceMock.On("Register", mock.Anything, tt.requestBody.(models.DummyRegister)).
					Return(tt.mockUID, tt.mockErr).Once()
				if tt.mockErr == nil {
					subsMock.On("SubscribeFree", mock.Anything, tt.mockUID, "grower1").
						Return(tt.freeErr).Once()
				}
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockUID, data["uid"])
				assert.Equal(t, "grower1", data["username"])
			}

			serviceMock.AssertExpectations(t)
			subsMock.AssertExpectations(t)
		})
	}
}

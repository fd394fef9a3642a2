package apikeycreate

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

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/apikey"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userUID string, req models.DummyAPIKeyCreate) (string, *models.APIKey, error) {
	args := m.Called(ctx, userUID, req)
	key, _ := args.Get(1).(*models.APIKey)
	return args.String(0), key, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateAPIKeyHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummyAPIKeyCreate{Name: "production"}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockPlaintext  string
		mockKey        *models.APIKey
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:          "key created",
			requestBody:   validReq,
			mockPlaintext: "lc_live_secret",
			mockKey: &models.APIKey{
				ID:        4,
				Name:      "production",
				KeyPrefix: "lc_live_",
			},
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing name",
			requestBody:    models.DummyAPIKeyCreate{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Name is a required field",
		},
		{
			name:           "plan without api access",
			requestBody:    validReq,
			mockErr:        apikey.ErrNotEnterprise,
			mockCalled:     true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "current plan does not include api access",
		},
		{
			name:           "internal error",
			requestBody:    validReq,
			mockErr:        errors.New("db down"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not create api key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				serviceMock.On("Create", mock.Anything, "uid-1", tt.requestBody.(models.DummyAPIKeyCreate)).
					Return(tt.mockPlaintext, tt.mockKey, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/enterprise/api-keys", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
			req = req.WithContext(ctx)

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
				assert.Equal(t, "lc_live_secret", data["api_key"])
				assert.Equal(t, float64(4), data["key_id"])
				assert.Equal(t, "lc_live_", data["key_prefix"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

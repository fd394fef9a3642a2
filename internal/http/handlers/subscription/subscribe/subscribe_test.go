package subscribe

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
	"github.com/magabrotheeeer/leafcare-backend/internal/services/subscription"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, userUID, username string, req models.DummySubscribe) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, username, req)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummySubscribe{
		PlanID:        2,
		BillingCycle:  "monthly",
		PaymentMethod: "card",
		TransactionID: "txn-42",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		withUser       bool
		mockSub        *models.Subscription
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid subscribe",
			requestBody:    validReq,
			withUser:       true,
			mockSub:        &models.Subscription{ID: 7, UserUID: "uid-1", PlanID: 2, Status: models.SubscriptionStatusActive},
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json",
			requestBody:    "{bad",
			withUser:       true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "unsupported billing cycle",
			requestBody:    models.DummySubscribe{PlanID: 2, BillingCycle: "weekly", PaymentMethod: "card", TransactionID: "txn-42"},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field BillingCycle has an unsupported value",
			wantStatus:     "Error",
		},
		{
			name:           "no user in context",
			requestBody:    validReq,
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:           "plan not found",
			requestBody:    validReq,
			withUser:       true,
			mockErr:        subscription.ErrPlanNotFound,
			mockCalled:     true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "plan not found",
			wantStatus:     "Error",
		},
		{
			name:           "internal error",
			requestBody:    validReq,
			withUser:       true,
			mockErr:        errors.New("db down"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not create subscription",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				serviceMock.On("Subscribe", mock.Anything, "uid-1", "grower1", tt.requestBody.(models.DummySubscribe)).
					Return(tt.mockSub, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
				ctx = context.WithValue(ctx, middlewarectx.User, "grower1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				sub, ok := data["subscription"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(tt.mockSub.ID), sub["ID"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

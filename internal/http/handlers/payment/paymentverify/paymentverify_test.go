package paymentverify

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
	"github.com/magabrotheeeer/leafcare-backend/internal/services/payment"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) VerifyPayment(ctx context.Context, userUID, username string, req models.DummyPaymentVerify) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, username, req)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerifyPaymentHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummyPaymentVerify{
		OrderID:       "order_abc",
		PaymentID:     "pay_abc",
		Signature:     "sig",
		PlanID:        3,
		BillingCycle:  "yearly",
		PaymentMethod: "upi",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockSub        *models.Subscription
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "payment verified",
			requestBody:    validReq,
			mockSub:        &models.Subscription{ID: 9, Status: models.SubscriptionStatusActive},
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid signature",
			requestBody:    validReq,
			mockErr:        payment.ErrInvalidSignature,
			mockCalled:     true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid payment signature",
		},
		{
			name:           "missing order id",
			requestBody:    models.DummyPaymentVerify{PaymentID: "pay_abc", Signature: "sig", PlanID: 3, BillingCycle: "yearly", PaymentMethod: "upi"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field OrderID is a required field",
		},
		{
			name:           "gateway error",
			requestBody:    validReq,
			mockErr:        errors.New("gateway timeout"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not verify payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				serviceMock.On("VerifyPayment", mock.Anything, "uid-1", "grower1", tt.requestBody.(models.DummyPaymentVerify)).
					Return(tt.mockSub, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/payments/verify", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
			ctx = context.WithValue(ctx, middlewarectx.User, "grower1")
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
				assert.NotNil(t, data["subscription"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

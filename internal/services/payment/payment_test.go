package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/paymentprovider"
)

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreateOrder(req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*paymentprovider.CreateOrderResponse)
	return resp, args.Error(1)
}

func (m *GatewayMock) VerifySignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *GatewayMock) FetchPayment(paymentID string) (*paymentprovider.PaymentDetails, error) {
	args := m.Called(paymentID)
	details, _ := args.Get(0).(*paymentprovider.PaymentDetails)
	return details, args.Error(1)
}

type SubscriptionsMock struct {
	mock.Mock
}

func (m *SubscriptionsMock) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *SubscriptionsMock) Subscribe(ctx context.Context, userUID, username string, req models.DummySubscribe) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, username, req)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) UpdatePaymentStatus(ctx context.Context, transactionID, status string) (int, error) {
	args := m.Called(ctx, transactionID, status)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateOrder_AmountInPaise(t *testing.T) {
	gateway := new(GatewayMock)
	subs := new(SubscriptionsMock)
	repo := new(RepoMock)
	svc := New(gateway, subs, repo, newNoopLogger())

	subs.On("GetPlan", mock.Anything, 2).
		Return(&models.Plan{ID: 2, MonthlyPrice: 499, IsActive: true}, nil).Once()
	gateway.On("CreateOrder", mock.MatchedBy(func(req paymentprovider.CreateOrderRequest) bool {
		return req.Amount == 49900 && req.Currency == "INR"
	})).Return(&paymentprovider.CreateOrderResponse{ID: "order_abc"}, nil).Once()

	order, err := svc.CreateOrder(context.Background(), "uid-1", models.DummyOrderCreate{
		PlanID:       2,
		BillingCycle: models.BillingCycleMonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, 499.0, order.Amount)
	assert.Equal(t, "INR", order.Currency)

	gateway.AssertExpectations(t)
}

func TestVerifyPayment(t *testing.T) {
	verifyReq := models.DummyPaymentVerify{
		OrderID:       "order_abc",
		PaymentID:     "pay_abc",
		Signature:     "sig",
		PlanID:        2,
		BillingCycle:  models.BillingCycleMonthly,
		PaymentMethod: "upi",
	}

	t.Run("valid signature activates subscription", func(t *testing.T) {
		gateway := new(GatewayMock)
		subs := new(SubscriptionsMock)
		svc := New(gateway, subs, new(RepoMock), newNoopLogger())

		gateway.On("VerifySignature", "order_abc", "pay_abc", "sig").Return(true).Once()
		subs.On("Subscribe", mock.Anything, "uid-1", "grower1", models.DummySubscribe{
			PlanID:        2,
			BillingCycle:  models.BillingCycleMonthly,
			PaymentMethod: "upi",
			TransactionID: "pay_abc",
		}).Return(&models.Subscription{ID: 5}, nil).Once()

		sub, err := svc.VerifyPayment(context.Background(), "uid-1", "grower1", verifyReq)
		require.NoError(t, err)
		assert.Equal(t, 5, sub.ID)
		subs.AssertExpectations(t)
	})

	t.Run("invalid signature", func(t *testing.T) {
		gateway := new(GatewayMock)
		subs := new(SubscriptionsMock)
		svc := New(gateway, subs, new(RepoMock), newNoopLogger())

		gateway.On("VerifySignature", "order_abc", "pay_abc", "sig").Return(false).Once()

		_, err := svc.VerifyPayment(context.Background(), "uid-1", "grower1", verifyReq)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		subs.AssertNotCalled(t, "Subscribe")
	})
}

func TestHandleWebhook(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		wantStatus string
	}{
		{"captured", "payment.captured", models.PaymentStatusCompleted},
		{"failed", "payment.failed", models.PaymentStatusFailed},
		{"refunded", "refund.processed", models.PaymentStatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(new(GatewayMock), new(SubscriptionsMock), repo, newNoopLogger())

			repo.On("UpdatePaymentStatus", mock.Anything, "pay_abc", tt.wantStatus).
				Return(1, nil).Once()

			assert.NoError(t, svc.HandleWebhook(context.Background(), "pay_abc", tt.event))
			repo.AssertExpectations(t)
		})
	}

	t.Run("unknown event is ignored", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(new(GatewayMock), new(SubscriptionsMock), repo, newNoopLogger())

		assert.NoError(t, svc.HandleWebhook(context.Background(), "pay_abc", "order.paid"))
		repo.AssertNotCalled(t, "UpdatePaymentStatus")
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(new(GatewayMock), new(SubscriptionsMock), repo, newNoopLogger())

		repo.On("UpdatePaymentStatus", mock.Anything, "pay_abc", models.PaymentStatusCompleted).
			Return(0, errors.New("db down")).Once()

		assert.Error(t, svc.HandleWebhook(context.Background(), "pay_abc", "payment.captured"))
	})
}

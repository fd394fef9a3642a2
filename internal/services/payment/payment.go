// Package payment реализует интеграцию с платёжным шлюзом: создание заказов,
// подтверждение платежей и обработку вебхуков.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/paymentprovider"
)

// ErrInvalidSignature возвращается при неверной подписи платежа.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Gateway описывает клиент платёжного шлюза.
type Gateway interface {
	CreateOrder(req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
	VerifySignature(orderID, paymentID, signature string) bool
	FetchPayment(paymentID string) (*paymentprovider.PaymentDetails, error)
}

// SubscriptionService описывает оформление подписки после успешного платежа.
type SubscriptionService interface {
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	Subscribe(ctx context.Context, userUID, username string, req models.DummySubscribe) (*models.Subscription, error)
}

// Repository определяет методы хранилища, необходимые платёжному сервису.
type Repository interface {
	UpdatePaymentStatus(ctx context.Context, transactionID, status string) (int, error)
}

// Service реализует платёжные сценарии.
type Service struct {
	gateway       Gateway
	subscriptions SubscriptionService
	repo          Repository
	log           *slog.Logger
}

func New(gateway Gateway, subscriptions SubscriptionService, repo Repository, log *slog.Logger) *Service {
	return &Service{
		gateway:       gateway,
		subscriptions: subscriptions,
		repo:          repo,
		log:           log,
	}
}

// Order содержит данные созданного платёжного заказа для клиента.
type Order struct {
	OrderID  string  `json:"order_id"` // Идентификатор заказа в шлюзе
	Amount   float64 `json:"amount"`   // Сумма в рупиях
	Currency string  `json:"currency"` // Валюта заказа
	PlanID   int     `json:"plan_id"`  // Идентификатор плана
}

// CreateOrder создаёт заказ в платёжном шлюзе на сумму выбранного плана
// и цикла оплаты. Сумма передаётся шлюзу в пайсах.
func (s *Service) CreateOrder(ctx context.Context, userUID string, req models.DummyOrderCreate) (*Order, error) {
	plan, err := s.subscriptions.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	amount := plan.PriceFor(req.BillingCycle)
	resp, err := s.gateway.CreateOrder(paymentprovider.CreateOrderRequest{
		Amount:   int64(amount * 100),
		Currency: "INR",
		Receipt:  fmt.Sprintf("rcpt_%s_%d", userUID, plan.ID),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment order created",
		slog.String("order_id", resp.ID),
		slog.Int("plan_id", plan.ID),
		slog.String("billing_cycle", req.BillingCycle))

	return &Order{
		OrderID:  resp.ID,
		Amount:   amount,
		Currency: "INR",
		PlanID:   plan.ID,
	}, nil
}

// VerifyPayment проверяет подпись платежа и при успехе оформляет подписку.
func (s *Service) VerifyPayment(ctx context.Context, userUID, username string, req models.DummyPaymentVerify) (*models.Subscription, error) {
	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.log.Warn("payment signature verification failed",
			slog.String("order_id", req.OrderID),
			slog.String("payment_id", req.PaymentID))
		return nil, ErrInvalidSignature
	}

	sub, err := s.subscriptions.Subscribe(ctx, userUID, username, models.DummySubscribe{
		PlanID:        req.PlanID,
		BillingCycle:  req.BillingCycle,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.PaymentID,
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// HandleWebhook обновляет статус платежа по уведомлению шлюза.
func (s *Service) HandleWebhook(ctx context.Context, paymentID, event string) error {
	var status string
	switch event {
	case "payment.captured":
		status = models.PaymentStatusCompleted
	case "payment.failed":
		status = models.PaymentStatusFailed
	case "refund.processed":
		status = models.PaymentStatusRefunded
	default:
		s.log.Info("ignoring webhook event", slog.String("event", event))
		return nil
	}

	count, err := s.repo.UpdatePaymentStatus(ctx, paymentID, status)
	if err != nil {
		return err
	}
	if count == 0 {
		s.log.Warn("webhook for unknown payment", slog.String("payment_id", paymentID))
	}
	return nil
}

// FetchPayment запрашивает у шлюза актуальные сведения о платеже.
func (s *Service) FetchPayment(paymentID string) (*paymentprovider.PaymentDetails, error) {
	details, err := s.gateway.FetchPayment(paymentID)
	if err != nil {
		s.log.Warn("failed to fetch payment from gateway", sl.Err(err))
		return nil, err
	}
	return details, nil
}

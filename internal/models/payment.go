package models

import "time"

// Статусы платежа в журнале платежей.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PaymentRecord представляет запись журнала платежей. Записи не изменяются
// после создания, кроме перехода статуса.
type PaymentRecord struct {
	ID             int        // Идентификатор записи
	UserUID        string     // Идентификатор пользователя
	Username       string     // Имя пользователя
	SubscriptionID int        // Идентификатор подписки
	Amount         float64    // Сумма платежа, INR
	Currency       string     // Валюта, по умолчанию INR
	PaymentMethod  string     // Способ оплаты
	TransactionID  string     // Идентификатор транзакции
	GatewayOrderID string     // Идентификатор заказа в платёжном шлюзе
	Status         string     // Статус платежа
	BillingCycle   string     // Цикл оплаты
	PeriodStart    time.Time  // Начало оплаченного периода
	PeriodEnd      time.Time  // Конец оплаченного периода
	PaymentDate    *time.Time // Дата успешного платежа
	CreatedAt      time.Time  // Дата создания записи
}

// DummyOrderCreate используется для приёма данных создания платёжного заказа.
type DummyOrderCreate struct {
	PlanID       int    `json:"plan_id" validate:"required"`                                      // Идентификатор плана
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=monthly quarterly yearly"` // Цикл оплаты
}

// DummyPaymentVerify используется для приёма данных подтверждения платежа.
type DummyPaymentVerify struct {
	OrderID       string `json:"order_id" validate:"required"`   // Идентификатор заказа в шлюзе
	PaymentID     string `json:"payment_id" validate:"required"` // Идентификатор платежа в шлюзе
	Signature     string `json:"signature" validate:"required"`  // Подпись платежа
	PlanID        int    `json:"plan_id" validate:"required"`    // Идентификатор плана
	BillingCycle  string `json:"billing_cycle" validate:"required,oneof=monthly quarterly yearly"`
	PaymentMethod string `json:"payment_method" validate:"required"` // Способ оплаты
}

// RevenueSummary содержит сводку по выручке для административной панели.
type RevenueSummary struct {
	TotalRevenue      float64            `json:"total_revenue"`      // Суммарная выручка по завершённым платежам
	CompletedPayments int                `json:"completed_payments"` // Количество завершённых платежей
	RevenueByPlanType map[string]float64 `json:"revenue_by_plan_type"`
}

package models

import "time"

// Статусы подписки пользователя. Смена плана и отмена не удаляют запись,
// а переводят её в соответствующий статус, сохраняя историю.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusCancelled  = "cancelled"
	SubscriptionStatusSuperseded = "superseded"
	SubscriptionStatusExpired    = "expired"
)

// Subscription представляет подписку пользователя на тарифный план.
// У пользователя может быть не более одной подписки в статусе active.
type Subscription struct {
	ID              int        // Идентификатор подписки
	UserUID         string     // Идентификатор пользователя
	Username        string     // Имя пользователя
	PlanID          int        // Идентификатор плана
	PlanType        string     // Тип плана на момент покупки
	Status          string     // Статус подписки
	BillingCycle    string     // Цикл оплаты: monthly, quarterly, yearly
	AmountPaid      float64    // Оплаченная сумма, INR
	StartDate       time.Time  // Дата начала подписки
	EndDate         time.Time  // Дата окончания оплаченного периода
	NextBillingDate time.Time  // Дата следующего списания
	PaymentMethod   string     // Способ оплаты
	TransactionID   string     // Идентификатор транзакции
	AutoRenewal     bool       // Автопродление
	CancelledAt     *time.Time // Дата отмены, nil если не отменялась
	CreatedAt       time.Time  // Дата создания записи
}

// DummySubscribe используется для приёма данных оформления подписки из JSON-запроса.
type DummySubscribe struct {
	PlanID        int    `json:"plan_id" validate:"required"`                                      // Идентификатор плана
	BillingCycle  string `json:"billing_cycle" validate:"required,oneof=monthly quarterly yearly"` // Цикл оплаты
	PaymentMethod string `json:"payment_method" validate:"required"`                               // Способ оплаты
	TransactionID string `json:"transaction_id" validate:"required"`                               // Идентификатор транзакции
}

package paymentprovider

// Запрос на создание заказа в платёжном шлюзе. Сумма указывается
// в минимальных единицах валюты (пайсы для INR).
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Ответ шлюза на создание заказа.
type CreateOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Сведения о платеже, полученные от шлюза.
type PaymentDetails struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Method  string `json:"method"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

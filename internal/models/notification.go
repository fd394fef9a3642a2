package models

import "time"

// Notification представляет уведомление пользователя в приложении.
type Notification struct {
	ID        int       `json:"id"`         // Идентификатор уведомления
	UserUID   string    `json:"-"`          // Идентификатор пользователя
	Title     string    `json:"title"`      // Заголовок
	Message   string    `json:"message"`    // Текст уведомления
	Type      string    `json:"type"`       // Тип: payment, subscription, system
	IsRead    bool      `json:"is_read"`    // Прочитано ли
	CreatedAt time.Time `json:"created_at"` // Дата создания
}

// SubscriptionExpiryInfo передаётся через очередь сообщений сервису рассылки
// при скором окончании подписки.
type SubscriptionExpiryInfo struct {
	Email    string    `json:"email"`     // Электронная почта пользователя
	Username string    `json:"username"`  // Имя пользователя
	PlanName string    `json:"plan_name"` // Название плана
	EndDate  time.Time `json:"end_date"`  // Дата окончания подписки
}

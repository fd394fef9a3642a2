package models

import "time"

// APIKey представляет программный ключ доступа корпоративного клиента.
// Сам ключ хранится только в виде sha256-хэша; открытый текст показывается
// один раз при создании.
type APIKey struct {
	ID         int        // Идентификатор ключа
	UserUID    string     // Идентификатор владельца
	Name       string     // Название ключа, заданное пользователем
	KeyPrefix  string     // Первые символы ключа для отображения в списках
	KeyHash    string     // sha256-хэш ключа
	IsActive   bool       // Активен ли ключ
	UsageCount int        // Количество использований
	LastUsed   *time.Time // Момент последнего использования
	ExpiresAt  time.Time  // Срок действия ключа
	CreatedAt  time.Time  // Дата создания
}

// DummyAPIKeyCreate используется для приёма данных создания API-ключа.
type DummyAPIKeyCreate struct {
	Name string `json:"name" validate:"required"` // Название ключа
}

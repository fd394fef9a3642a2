package models

import "time"

// UsageQuota представляет счётчик использований пользователя за период (месяц, год).
// Пара (user_uid, месяц, год) уникальна; новый период создаёт новую запись,
// что и является неявным ежемесячным сбросом.
type UsageQuota struct {
	ID             int       // Идентификатор записи
	UserUID        string    // Идентификатор пользователя
	Username       string    // Имя пользователя
	SubscriptionID int       // Идентификатор подписки
	Month          int       // Месяц периода (1-12)
	Year           int       // Год периода
	AnalysesUsed   int       // Использовано анализов за период
	AnalysesLimit  int       // Лимит анализов, 0 — безлимит
	TotalAPICalls  int       // Всего обращений к внешним API
	TotalTokens    int64     // Всего израсходовано токенов
	TotalCost      float64   // Оценочная стоимость внешних вызовов, USD
	NextResetDate  time.Time // Дата начала следующего периода
	CreatedAt      time.Time // Дата создания записи
}

// UsageSummary содержит сводку использования квоты для ответа API.
type UsageSummary struct {
	AnalysesUsed  int       `json:"analyses_used"`      // Использовано анализов
	AnalysesLimit int       `json:"analyses_limit"`     // Лимит анализов, 0 — безлимит
	Remaining     int       `json:"remaining_analyses"` // Осталось анализов, -1 при безлимите
	UsagePercent  float64   `json:"usage_percentage"`   // Доля использованной квоты
	NextResetDate time.Time `json:"next_reset_date"`    // Дата следующего сброса
}

// APIUsage представляет запись об обращении к внешнему API с оценкой стоимости.
type APIUsage struct {
	ID            int       // Идентификатор записи
	UserUID       string    // Идентификатор пользователя
	Username      string    // Имя пользователя
	APIType       string    // Тип API: vision или videosearch
	Endpoint      string    // Конечная точка, вызвавшая обращение
	Model         string    // Название модели
	TokensUsed    int       // Всего токенов
	InputTokens   int       // Токены запроса
	OutputTokens  int       // Токены ответа
	EstimatedCost float64   // Оценочная стоимость, USD
	Success       bool      // Был ли вызов успешным
	ErrorMessage  string    // Текст ошибки при неуспехе
	CreatedAt     time.Time // Момент обращения
}

package models

import "time"

// Статусы обращений пользователей.
const (
	FeedbackStatusNew      = "new"
	FeedbackStatusReviewed = "reviewed"
	FeedbackStatusResolved = "resolved"
)

// Feedback представляет отзыв пользователя о результате анализа или сервисе.
type Feedback struct {
	ID         int       // Идентификатор отзыва
	UserUID    string    // Идентификатор пользователя
	Username   string    // Имя пользователя
	AnalysisID *int      // Идентификатор анализа, nil для общего отзыва
	Rating     int       // Оценка 1-5
	Comment    string    // Комментарий
	Status     string    // Статус обработки
	CreatedAt  time.Time // Дата создания
}

// DummyFeedback используется для приёма отзыва из JSON-запроса.
type DummyFeedback struct {
	AnalysisID *int   `json:"analysis_id,omitempty"`                  // Идентификатор анализа (опционально)
	Rating     int    `json:"rating" validate:"required,min=1,max=5"` // Оценка 1-5
	Comment    string `json:"comment" validate:"required"`            // Комментарий
}

// DummyFeedbackStatus используется для смены статуса отзыва администратором.
type DummyFeedbackStatus struct {
	Status string `json:"status" validate:"required,oneof=new reviewed resolved"` // Новый статус
}

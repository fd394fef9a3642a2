// Package notification реализует уведомления пользователей в приложении.
package notification

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Repository определяет методы хранилища, необходимые сервису уведомлений.
type Repository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
	ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userUID string) (int, error)
	MarkNotificationRead(ctx context.Context, id int, userUID string) (int, error)
	MarkAllNotificationsRead(ctx context.Context, userUID string) (int, error)
}

// Service реализует работу с уведомлениями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Notify создаёт уведомление пользователю. Ошибка логируется и не
// возвращается: уведомления не должны прерывать основной сценарий.
func (s *Service) Notify(ctx context.Context, userUID, title, message, notifType string) {
	_, err := s.repo.CreateNotification(ctx, models.Notification{
		UserUID: userUID,
		Title:   title,
		Message: message,
		Type:    notifType,
	})
	if err != nil {
		s.log.Warn("failed to create notification", sl.Err(err),
			slog.String("title", title))
	}
}

// List возвращает уведомления пользователя с пагинацией.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx, userUID, limit, offset)
}

// UnreadCount возвращает количество непрочитанных уведомлений.
func (s *Service) UnreadCount(ctx context.Context, userUID string) (int, error) {
	return s.repo.CountUnreadNotifications(ctx, userUID)
}

// MarkRead помечает уведомление прочитанным. Возвращает количество
// изменённых строк.
func (s *Service) MarkRead(ctx context.Context, id int, userUID string) (int, error) {
	return s.repo.MarkNotificationRead(ctx, id, userUID)
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *Service) MarkAllRead(ctx context.Context, userUID string) (int, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userUID)
}

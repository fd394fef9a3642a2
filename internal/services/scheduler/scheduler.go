// Package scheduler реализует фоновые задачи: поиск подписок с истекающим
// сроком для рассылки напоминаний и перевод просроченных записей
// в конечные статусы.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/rabbitmq"
)

// Repository определяет методы хранилища, необходимые планировщику.
type Repository interface {
	FindSubscriptionsExpiringSoon(ctx context.Context, days int) ([]*models.SubscriptionExpiryInfo, error)
	MarkExpiredSubscriptions(ctx context.Context) (int, error)
	MarkExpiredPrescriptions(ctx context.Context) (int, error)
}

// Service реализует периодические задачи обслуживания подписок.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// PublishExpiringSubscriptions раз в 12 часов находит подписки, истекающие
// через три дня, и публикует их в очередь рассылки.
func (s *Service) PublishExpiringSubscriptions(ctx context.Context, channel *amqp.Channel) {
	s.runPublishExpiringSubscriptions(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runPublishExpiringSubscriptions(ctx, channel)
	}
}

func (s *Service) runPublishExpiringSubscriptions(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("looking for subscriptions expiring soon")
	infos, err := s.repo.FindSubscriptionsExpiringSoon(ctx, 3)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(infos) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(infos))
	for _, info := range infos {
		err = rabbitmq.PublishExpiryNotification(channel, info)
		if err != nil {
			s.log.Error("failed to publish expiry notification", sl.Err(err))
		}
	}
}

// ExpireOverdueRecords раз в сутки переводит просроченные подписки и рецепты
// в статус expired.
func (s *Service) ExpireOverdueRecords(ctx context.Context) {
	s.runExpireOverdueRecords(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runExpireOverdueRecords(ctx)
	}
}

func (s *Service) runExpireOverdueRecords(ctx context.Context) {
	subs, err := s.repo.MarkExpiredSubscriptions(ctx)
	if err != nil {
		s.log.Error("failed to mark expired subscriptions", sl.Err(err))
	} else if subs > 0 {
		s.log.Info("marked expired subscriptions", "count", subs)
	}

	rx, err := s.repo.MarkExpiredPrescriptions(ctx)
	if err != nil {
		s.log.Error("failed to mark expired prescriptions", sl.Err(err))
	} else if rx > 0 {
		s.log.Info("marked expired prescriptions", "count", rx)
	}
}

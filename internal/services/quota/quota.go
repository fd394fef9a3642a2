// Package quota реализует учёт месячных квот анализов и расхода внешних API.
package quota

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/quotaperiod"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// ErrQuotaExceeded возвращается при исчерпанной месячной квоте анализов.
var ErrQuotaExceeded = errors.New("monthly analysis quota exceeded")

// ErrNoSubscription возвращается, когда у пользователя нет активной подписки.
var ErrNoSubscription = errors.New("no active subscription")

// Repository определяет методы хранилища, необходимые сервису квот.
type Repository interface {
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	GetQuota(ctx context.Context, userUID string, month, year int) (*models.UsageQuota, error)
	EnsureQuota(ctx context.Context, q models.UsageQuota) error
	ConsumeQuota(ctx context.Context, userUID string, month, year int) (bool, error)
	AddAPIUsageToQuota(ctx context.Context, userUID string, month, year int, calls int, tokens int64, cost float64) error
	TrackAPIUsage(ctx context.Context, u models.APIUsage) error
	UsageTotalsForUser(ctx context.Context, userUID string) (calls int, tokens int64, cost float64, err error)
}

// UsageStats содержит сводный расход пользователя для корпоративного API.
type UsageStats struct {
	AnalysesUsed  int       `json:"analyses_used"`   // Использовано анализов в текущем периоде
	AnalysesLimit int       `json:"analyses_limit"`  // Лимит анализов, 0 — безлимит
	TotalAPICalls int       `json:"total_api_calls"` // Всего обращений к внешним API
	TotalTokens   int64     `json:"total_tokens"`    // Всего израсходовано токенов
	TotalCost     float64   `json:"total_cost_usd"`  // Оценочная стоимость внешних вызовов, USD
	NextResetDate time.Time `json:"next_reset_date"` // Дата следующего сброса квоты
}

// Service реализует учёт квот.
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

// Consume атомарно списывает один анализ из квоты текущего периода.
// Запись квоты при необходимости создаётся по лимитам активной подписки,
// так что смена месяца работает как неявный сброс счётчика.
func (s *Service) Consume(ctx context.Context, userUID, username string) (*models.Plan, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return nil, ErrNoSubscription
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	month, year := quotaperiod.Current(now)
	quota := models.UsageQuota{
		UserUID:        userUID,
		Username:       username,
		SubscriptionID: sub.ID,
		Month:          month,
		Year:           year,
		AnalysesLimit:  plan.MaxAnalysesPerMonth,
		NextResetDate:  quotaperiod.NextReset(now),
	}
	if err := s.repo.EnsureQuota(ctx, quota); err != nil {
		return nil, err
	}

	consumed, err := s.repo.ConsumeQuota(ctx, userUID, month, year)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrQuotaExceeded
	}
	return plan, nil
}

// PlanFor возвращает текущий план пользователя по его активной подписке.
func (s *Service) PlanFor(ctx context.Context, userUID string) (*models.Plan, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return nil, ErrNoSubscription
	}
	return s.repo.GetPlan(ctx, sub.PlanID)
}

// RateLimitFor возвращает лимит запросов в минуту текущего плана пользователя.
// Без активной подписки действует лимит бесплатного плана.
func (s *Service) RateLimitFor(ctx context.Context, userUID string) int {
	const freeLimit = 10

	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return freeLimit
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return freeLimit
	}
	return plan.APIRateLimitPerMinute
}

// UsageStats возвращает сводный расход пользователя: квоту текущего периода
// и суммарный расход внешних API за всё время.
func (s *Service) UsageStats(ctx context.Context, userUID string) (*UsageStats, error) {
	now := time.Now().UTC()
	month, year := quotaperiod.Current(now)

	stats := &UsageStats{NextResetDate: quotaperiod.NextReset(now)}
	if q, err := s.repo.GetQuota(ctx, userUID, month, year); err == nil {
		stats.AnalysesUsed = q.AnalysesUsed
		stats.AnalysesLimit = q.AnalysesLimit
		stats.NextResetDate = q.NextResetDate
	}

	calls, tokens, cost, err := s.repo.UsageTotalsForUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	stats.TotalAPICalls = calls
	stats.TotalTokens = tokens
	stats.TotalCost = cost
	return stats, nil
}

// TrackUsage сохраняет запись об обращении к внешнему API и накапливает
// расход в квоте периода. Ошибки учёта не прерывают основной сценарий.
func (s *Service) TrackUsage(ctx context.Context, usage models.APIUsage) {
	if err := s.repo.TrackAPIUsage(ctx, usage); err != nil {
		s.log.Warn("failed to track api usage", sl.Err(err),
			slog.String("api_type", usage.APIType))
	}

	month, year := quotaperiod.Current(time.Now().UTC())
	if err := s.repo.AddAPIUsageToQuota(ctx, usage.UserUID, month, year,
		1, int64(usage.TokensUsed), usage.EstimatedCost); err != nil {
		s.log.Warn("failed to add api usage to quota", sl.Err(err))
	}
}

// Package subscription реализует бизнес-логику тарифных планов и подписок:
// каталог планов, оформление, отмену и сводку использования.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/quotaperiod"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// ErrPlanNotFound возвращается при запросе несуществующего или отключённого плана.
var ErrPlanNotFound = errors.New("plan not found")

// ErrNoActiveSubscription возвращается, когда у пользователя нет активной подписки.
var ErrNoActiveSubscription = errors.New("no active subscription")

const plansCacheKey = "plans:active"

// Repository определяет методы хранилища, необходимые сервису подписок.
type Repository interface {
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	GetPlanByType(ctx context.Context, planType string) (*models.Plan, error)
	CreateSubscriptionWithQuota(ctx context.Context, sub models.Subscription, quota models.UsageQuota) (int, error)
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, userUID string, cancelledAt time.Time) (int, error)
	ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error)
	CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (int, error)
	ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentRecord, error)
	GetQuota(ctx context.Context, userUID string, month, year int) (*models.UsageQuota, error)
	EnsureQuota(ctx context.Context, q models.UsageQuota) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику подписок.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListPlans возвращает каталог доступных планов, используя кэш.
func (s *Service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	var cached []*models.Plan
	found, err := s.cache.Get(plansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(plansCacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// GetPlan возвращает план по ID. Отключённые планы считаются несуществующими.
func (s *Service) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// Subscribe оформляет подписку на план: прежняя активная подписка переходит
// в статус superseded, создаётся запись квоты текущего периода и запись
// журнала платежей. Возвращает оформленную подписку.
func (s *Service) Subscribe(ctx context.Context, userUID, username string, req models.DummySubscribe) (*models.Subscription, error) {
	plan, err := s.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	amount := plan.PriceFor(req.BillingCycle)
	endDate := now.AddDate(0, 0, models.PeriodDays(req.BillingCycle))

	sub := models.Subscription{
		UserUID:         userUID,
		Username:        username,
		PlanID:          plan.ID,
		PlanType:        plan.PlanType,
		Status:          models.SubscriptionStatusActive,
		BillingCycle:    req.BillingCycle,
		AmountPaid:      amount,
		StartDate:       now,
		EndDate:         endDate,
		NextBillingDate: endDate,
		PaymentMethod:   req.PaymentMethod,
		TransactionID:   req.TransactionID,
		AutoRenewal:     true,
	}

	month, year := quotaperiod.Current(now)
	quota := models.UsageQuota{
		UserUID:       userUID,
		Username:      username,
		Month:         month,
		Year:          year,
		AnalysesLimit: plan.MaxAnalysesPerMonth,
		NextResetDate: quotaperiod.NextReset(now),
	}

	subID, err := s.repo.CreateSubscriptionWithQuota(ctx, sub, quota)
	if err != nil {
		return nil, err
	}
	sub.ID = subID

	if amount > 0 {
		paymentDate := now
		payment := models.PaymentRecord{
			UserUID:        userUID,
			Username:       username,
			SubscriptionID: subID,
			Amount:         amount,
			Currency:       "INR",
			PaymentMethod:  req.PaymentMethod,
			TransactionID:  req.TransactionID,
			Status:         models.PaymentStatusCompleted,
			BillingCycle:   req.BillingCycle,
			PeriodStart:    now,
			PeriodEnd:      endDate,
			PaymentDate:    &paymentDate,
		}
		if _, err := s.repo.CreatePaymentRecord(ctx, payment); err != nil {
			s.log.Error("failed to record payment", sl.Err(err),
				slog.String("transaction_id", req.TransactionID))
			return nil, fmt.Errorf("record payment: %w", err)
		}
	}

	s.log.Info("subscription created",
		slog.Int("subscription_id", subID),
		slog.String("plan_type", plan.PlanType),
		slog.String("billing_cycle", req.BillingCycle))

	if err := s.cache.Invalidate(usageCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate usage cache", sl.Err(err))
	}
	return &sub, nil
}

// SubscribeFree оформляет бесплатный план новому пользователю.
func (s *Service) SubscribeFree(ctx context.Context, userUID, username string) error {
	plan, err := s.repo.GetPlanByType(ctx, models.PlanTypeFree)
	if err != nil {
		return ErrPlanNotFound
	}

	now := time.Now().UTC()
	endDate := now.AddDate(0, 0, models.PeriodDays(models.BillingCycleMonthly))
	sub := models.Subscription{
		UserUID:         userUID,
		Username:        username,
		PlanID:          plan.ID,
		PlanType:        plan.PlanType,
		Status:          models.SubscriptionStatusActive,
		BillingCycle:    models.BillingCycleMonthly,
		StartDate:       now,
		EndDate:         endDate,
		NextBillingDate: endDate,
		AutoRenewal:     true,
	}

	month, year := quotaperiod.Current(now)
	quota := models.UsageQuota{
		UserUID:       userUID,
		Username:      username,
		Month:         month,
		Year:          year,
		AnalysesLimit: plan.MaxAnalysesPerMonth,
		NextResetDate: quotaperiod.NextReset(now),
	}

	_, err = s.repo.CreateSubscriptionWithQuota(ctx, sub, quota)
	return err
}

// Cancel отменяет активную подписку пользователя. Доступ сохраняется
// до конца оплаченного периода.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	count, err := s.repo.CancelSubscription(ctx, userUID, time.Now().UTC())
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoActiveSubscription
	}
	if err := s.cache.Invalidate(usageCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate usage cache", sl.Err(err))
	}
	return nil
}

// GetMySubscription возвращает активную подписку пользователя вместе с планом.
func (s *Service) GetMySubscription(ctx context.Context, userUID string) (*models.Subscription, *models.Plan, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return nil, nil, ErrNoActiveSubscription
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return sub, plan, nil
}

// ListPayments возвращает историю платежей пользователя.
func (s *Service) ListPayments(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentRecord, error) {
	return s.repo.ListPaymentsByUser(ctx, userUID, limit, offset)
}

// Usage возвращает сводку использования квоты текущего периода. Если записи
// квоты ещё нет, она создаётся по лимитам активной подписки.
func (s *Service) Usage(ctx context.Context, userUID string) (*models.UsageSummary, error) {
	now := time.Now().UTC()
	month, year := quotaperiod.Current(now)

	quota, err := s.repo.GetQuota(ctx, userUID, month, year)
	if err != nil {
		sub, subErr := s.repo.GetActiveSubscription(ctx, userUID)
		if subErr != nil {
			return nil, ErrNoActiveSubscription
		}
		plan, planErr := s.repo.GetPlan(ctx, sub.PlanID)
		if planErr != nil {
			return nil, planErr
		}
		fresh := models.UsageQuota{
			UserUID:        userUID,
			Username:       sub.Username,
			SubscriptionID: sub.ID,
			Month:          month,
			Year:           year,
			AnalysesLimit:  plan.MaxAnalysesPerMonth,
			NextResetDate:  quotaperiod.NextReset(now),
		}
		if err := s.repo.EnsureQuota(ctx, fresh); err != nil {
			return nil, err
		}
		quota = &fresh
	}

	summary := &models.UsageSummary{
		AnalysesUsed:  quota.AnalysesUsed,
		AnalysesLimit: quota.AnalysesLimit,
		NextResetDate: quota.NextResetDate,
	}
	if quota.AnalysesLimit == 0 {
		summary.Remaining = -1
	} else {
		summary.Remaining = quota.AnalysesLimit - quota.AnalysesUsed
		if summary.Remaining < 0 {
			summary.Remaining = 0
		}
		summary.UsagePercent = float64(quota.AnalysesUsed) / float64(quota.AnalysesLimit) * 100
	}
	return summary, nil
}

func usageCacheKey(userUID string) string {
	return fmt.Sprintf("usage:%s", userUID)
}

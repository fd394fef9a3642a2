// Package analytics реализует агрегацию показателей для панели администратора:
// тренды по дням, сводную статистику и отчёт по выручке.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// trendsCacheTTL ограничивает частоту тяжёлых агрегирующих запросов.
const trendsCacheTTL = 60 * time.Second

// Repository определяет методы хранилища, необходимые сервису аналитики.
type Repository interface {
	CountUsers(ctx context.Context) (total int, active int, err error)
	CountAnalyses(ctx context.Context) (total int, detected int, err error)
	CountActiveSubscriptionsByPlanType(ctx context.Context) (map[string]int, error)
	DailyAnalysisTrends(ctx context.Context, days int) ([]*models.DailyTrend, error)
	DailyAPIUsageStats(ctx context.Context, days int) (map[string]*models.DailyTrend, error)
	DiseaseDistribution(ctx context.Context, days, limit int) ([]models.DiseaseCount, error)
	RevenueSummary(ctx context.Context) (*models.RevenueSummary, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service реализует аналитику для администраторов.
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

// Trends возвращает отчёт по трендам за последние days дней. Отчёт кэшируется
// на минуту, так что частые обращения панели не нагружают базу.
func (s *Service) Trends(ctx context.Context, days int) (*models.TrendsReport, error) {
	cacheKey := fmt.Sprintf("analytics:trends:%d", days)

	var cached models.TrendsReport
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read trends from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	report, err := s.buildTrends(ctx, days)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, report, trendsCacheTTL); err != nil {
		s.log.Warn("failed to cache trends", sl.Err(err))
	}
	return report, nil
}

func (s *Service) buildTrends(ctx context.Context, days int) (*models.TrendsReport, error) {
	analysisTrends, err := s.repo.DailyAnalysisTrends(ctx, days)
	if err != nil {
		return nil, err
	}
	usageByDay, err := s.repo.DailyAPIUsageStats(ctx, days)
	if err != nil {
		return nil, err
	}
	topDiseases, err := s.repo.DiseaseDistribution(ctx, days, 10)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &models.TrendsReport{
		PeriodStart: now.AddDate(0, 0, -days),
		PeriodEnd:   now,
		Days:        days,
		TopDiseases: topDiseases,
	}

	for _, trend := range analysisTrends {
		day := *trend
		if usage, ok := usageByDay[day.Date]; ok {
			day.APICalls = usage.APICalls
			day.Tokens = usage.Tokens
			day.Cost = usage.Cost
		}
		report.DailyTrends = append(report.DailyTrends, day)
		report.TotalAnalyses += day.Analyses
		report.TotalAPICalls += day.APICalls
		report.TotalTokens += day.Tokens
		report.TotalCost += day.Cost
	}

	report.HasData = len(report.DailyTrends) > 0
	report.GrowthRatePct = growthRate(report.DailyTrends)
	return report, nil
}

// growthRate считает рост количества анализов второй половины окна
// относительно первой, в процентах.
func growthRate(trends []models.DailyTrend) float64 {
	if len(trends) < 2 {
		return 0
	}
	half := len(trends) / 2
	var first, second int
	for i, day := range trends {
		if i < half {
			first += day.Analyses
		} else {
			second += day.Analyses
		}
	}
	if first == 0 {
		return 0
	}
	return (float64(second) - float64(first)) / float64(first) * 100
}

// Overview возвращает сводные показатели системы.
func (s *Service) Overview(ctx context.Context) (*models.StatsOverview, error) {
	totalUsers, activeUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalAnalyses, detected, err := s.repo.CountAnalyses(ctx)
	if err != nil {
		return nil, err
	}
	subsByPlan, err := s.repo.CountActiveSubscriptionsByPlanType(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.RevenueSummary(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsOverview{
		TotalUsers:          totalUsers,
		ActiveUsers:         activeUsers,
		TotalAnalyses:       totalAnalyses,
		DiseasesDetected:    detected,
		ActiveSubscriptions: subsByPlan,
		TotalRevenue:        revenue.TotalRevenue,
	}, nil
}

// Revenue возвращает сводку по выручке.
func (s *Service) Revenue(ctx context.Context) (*models.RevenueSummary, error) {
	return s.repo.RevenueSummary(ctx)
}

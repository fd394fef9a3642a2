package models

import "time"

// Типы тарифных планов.
const (
	PlanTypeFree       = "free"
	PlanTypeBasic      = "basic"
	PlanTypePremium    = "premium"
	PlanTypeEnterprise = "enterprise"
)

// Циклы оплаты подписки.
const (
	BillingCycleMonthly   = "monthly"
	BillingCycleQuarterly = "quarterly"
	BillingCycleYearly    = "yearly"
)

// Plan представляет тарифный план из каталога.
// Записи каталога создаются при миграции и почти не изменяются.
type Plan struct {
	ID                    int       // Идентификатор плана
	Name                  string    // Название плана
	PlanType              string    // Тип плана: free, basic, premium, enterprise
	Description           string    // Описание плана
	MonthlyPrice          float64   // Цена за месяц, INR
	QuarterlyPrice        float64   // Цена за квартал, INR
	YearlyPrice           float64   // Цена за год, INR
	MaxAnalysesPerMonth   int       // Квота анализов в месяц, 0 — безлимит
	MaxImageSizeMB        int       // Максимальный размер изображения, МБ
	APIRateLimitPerMinute int       // Лимит запросов в минуту
	Features              []string  // Список возможностей плана
	HasPrioritySupport    bool      // Приоритетная поддержка
	HasAPIAccess          bool      // Доступ к программному API
	HasBulkAnalysis       bool      // Пакетный анализ изображений
	HasAdvancedAnalytics  bool      // Расширенная аналитика
	HasPrescriptionExport bool      // Экспорт рецептов
	IsActive              bool      // Доступен ли план для покупки
	CreatedAt             time.Time // Дата создания
}

// PriceFor возвращает цену плана для указанного цикла оплаты.
func (p *Plan) PriceFor(billingCycle string) float64 {
	switch billingCycle {
	case BillingCycleQuarterly:
		return p.QuarterlyPrice
	case BillingCycleYearly:
		return p.YearlyPrice
	default:
		return p.MonthlyPrice
	}
}

// PeriodDays возвращает длительность оплаченного периода в днях
// для указанного цикла оплаты: 30, 90 или 365.
func PeriodDays(billingCycle string) int {
	switch billingCycle {
	case BillingCycleQuarterly:
		return 90
	case BillingCycleYearly:
		return 365
	default:
		return 30
	}
}

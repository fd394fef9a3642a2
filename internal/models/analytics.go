package models

import "time"

// DailyTrend содержит агрегированные показатели одного дня для аналитики.
type DailyTrend struct {
	Date             string  `json:"date"`              // Дата YYYY-MM-DD
	APICalls         int     `json:"api_calls"`         // Всего обращений к внешним API
	Analyses         int     `json:"analyses"`          // Всего анализов
	DiseasesDetected int     `json:"diseases_detected"` // Анализов с обнаруженной болезнью
	HealthyPlants    int     `json:"healthy_plants"`    // Анализов здоровых растений
	Cost             float64 `json:"cost"`              // Стоимость внешних вызовов за день
	Tokens           int64   `json:"tokens"`            // Израсходовано токенов за день
}

// DiseaseCount содержит частоту обнаружения болезни за период.
type DiseaseCount struct {
	DiseaseName string `json:"disease_name"` // Название болезни
	Count       int    `json:"count"`        // Количество обнаружений
}

// TrendsReport содержит данные трендов для панели администратора.
type TrendsReport struct {
	PeriodStart   time.Time      `json:"period_start"`    // Начало окна
	PeriodEnd     time.Time      `json:"period_end"`      // Конец окна
	Days          int            `json:"days"`            // Размер окна в днях
	DailyTrends   []DailyTrend   `json:"daily_trends"`    // Показатели по дням
	TotalAPICalls int            `json:"total_api_calls"` // Сумма обращений за окно
	TotalAnalyses int            `json:"total_analyses"`  // Сумма анализов за окно
	TotalCost     float64        `json:"total_cost"`      // Сумма стоимости за окно
	TotalTokens   int64          `json:"total_tokens"`    // Сумма токенов за окно
	GrowthRatePct float64        `json:"growth_rate_pct"` // Рост второй половины окна к первой, %
	TopDiseases   []DiseaseCount `json:"top_diseases"`    // Самые частые болезни
	HasData       bool           `json:"has_data"`        // Есть ли данные в окне
}

// StatsOverview содержит сводные показатели системы для панели администратора.
type StatsOverview struct {
	TotalUsers          int            `json:"total_users"`          // Всего пользователей
	ActiveUsers         int            `json:"active_users"`         // Пользователей с активной учётной записью
	TotalAnalyses       int            `json:"total_analyses"`       // Всего анализов
	DiseasesDetected    int            `json:"diseases_detected"`    // Анализов с болезнью
	ActiveSubscriptions map[string]int `json:"active_subscriptions"` // Активные подписки по типам планов
	TotalRevenue        float64        `json:"total_revenue"`        // Суммарная выручка
}

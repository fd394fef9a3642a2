package models

import "time"

// Статусы рецепта.
const (
	PrescriptionStatusActive    = "active"
	PrescriptionStatusCompleted = "completed"
	PrescriptionStatusExpired   = "expired"
)

// TreatmentStep представляет один шаг плана лечения.
type TreatmentStep struct {
	StepNumber        int      `json:"step_number"`        // Порядковый номер шага
	Title             string   `json:"title"`              // Название шага
	Description       string   `json:"description"`        // Что нужно сделать
	Timing            string   `json:"timing"`             // Когда выполнять
	ProductsNeeded    []string `json:"products_needed"`    // Необходимые препараты и инструменты
	EstimatedDuration string   `json:"estimated_duration"` // Оценка длительности
}

// ProductRecommendation представляет рекомендацию препарата с дозировкой.
type ProductRecommendation struct {
	Name              string   `json:"name"`               // Название препарата
	Type              string   `json:"type"`               // Тип: fungicide, bactericide, organic и пр.
	ActiveIngredient  string   `json:"active_ingredient"`  // Действующее вещество
	Dosage            string   `json:"dosage"`             // Дозировка
	ApplicationMethod string   `json:"application_method"` // Способ применения
	Frequency         string   `json:"frequency"`          // Частота обработки
	Duration          string   `json:"duration"`           // Количество обработок
	SafetyPrecautions []string `json:"safety_precautions"` // Меры предосторожности
	EstimatedCost     string   `json:"estimated_cost"`     // Оценочная стоимость
}

// Prescription представляет сгенерированный план лечения, привязанный
// один к одному к анализу. После создания изменяется только статус.
type Prescription struct {
	ID                 int                     // Внутренний идентификатор
	PrescriptionID     string                  // Публичный идентификатор RX-<YYYYMMDD>-<hex>
	UserUID            string                  // Идентификатор пользователя
	Username           string                  // Имя пользователя
	AnalysisID         int                     // Идентификатор анализа
	DiseaseName        string                  // Название болезни
	DiseaseType        string                  // Тип болезни
	Severity           string                  // Степень поражения
	Confidence         float64                 // Уверенность диагноза
	TreatmentPriority  string                  // Приоритет лечения: low, moderate, urgent
	TreatmentDuration  string                  // Общая длительность лечения
	Steps              []TreatmentStep         // Упорядоченные шаги лечения
	Products           []ProductRecommendation // Рекомендации препаратов
	PreventionTips     []string                // Профилактика
	MonitoringSchedule []string                // График наблюдений
	WarningSigns       []string                // Тревожные признаки
	SuccessIndicators  []string                // Признаки успеха лечения
	Status             string                  // Статус рецепта
	ExpiresAt          time.Time               // Срок действия (создание + 90 дней)
	CreatedAt          time.Time               // Дата создания
}

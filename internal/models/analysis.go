package models

import "time"

// Video представляет ссылку на обучающее видео по лечению болезни.
type Video struct {
	Title   string `json:"title"`   // Название видео
	URL     string `json:"url"`     // Ссылка на видео
	Channel string `json:"channel"` // Название канала
}

// Diagnosis представляет структурированный результат распознавания болезни,
// возвращаемый внешним vision-сервисом.
type Diagnosis struct {
	DiseaseDetected bool     `json:"disease_detected"` // Обнаружена ли болезнь
	DiseaseName     string   `json:"disease_name"`     // Название болезни
	DiseaseType     string   `json:"disease_type"`     // Тип болезни: fungal, bacterial, viral и пр.
	Severity        string   `json:"severity"`         // Степень поражения: mild, moderate, severe
	Confidence      float64  `json:"confidence"`       // Уверенность модели, 0..1
	Symptoms        []string `json:"symptoms"`         // Наблюдаемые симптомы
	PossibleCauses  []string `json:"possible_causes"`  // Возможные причины
	Treatment       []string `json:"treatment"`        // Краткие рекомендации по лечению
	Description     string   `json:"description"`      // Текстовое описание диагноза

	TokenUsage TokenUsage `json:"-"` // Расход токенов vision-модели
}

// TokenUsage содержит количество токенов, израсходованных внешним API.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Analysis представляет сохранённый результат анализа изображения листа.
type Analysis struct {
	ID              int       // Идентификатор анализа
	UserUID         string    // Идентификатор пользователя
	Username        string    // Имя пользователя
	ImageFilename   string    // Имя сохранённого файла изображения
	DiseaseDetected bool      // Обнаружена ли болезнь
	DiseaseName     string    // Название болезни
	DiseaseType     string    // Тип болезни
	Severity        string    // Степень поражения
	Confidence      float64   // Уверенность модели
	Symptoms        []string  // Наблюдаемые симптомы
	PossibleCauses  []string  // Возможные причины
	Treatment       []string  // Краткие рекомендации
	Description     string    // Описание диагноза
	Videos          []Video   // Подобранные обучающие видео
	BatchID         string    // Идентификатор пакета при пакетном анализе
	BatchName       string    // Название пакета
	CreatedAt       time.Time // Момент анализа
}

// BulkFile представляет одно изображение из пакетного запроса.
type BulkFile struct {
	Filename string // Имя файла
	Contents []byte // Содержимое файла
}

// BulkItemResult представляет результат анализа одного изображения из пакета.
type BulkItemResult struct {
	Index    int       `json:"index"`              // Позиция файла в запросе
	Filename string    `json:"filename"`           // Имя файла
	Success  bool      `json:"success"`            // Успешен ли анализ
	Analysis *Analysis `json:"analysis,omitempty"` // Результат анализа при успехе
	Error    string    `json:"error,omitempty"`    // Текст ошибки при неуспехе
}

// BulkResult представляет итог пакетного анализа.
type BulkResult struct {
	BatchID        string           `json:"batch_id"`                // Идентификатор пакета
	BatchName      string           `json:"batch_name,omitempty"`    // Название пакета
	TotalImages    int              `json:"total_images"`            // Всего файлов в запросе
	ProcessedCount int              `json:"processed_images"`        // Успешно обработано
	FailedCount    int              `json:"failed_images"`           // Завершилось ошибкой
	Results        []BulkItemResult `json:"results"`                 // Результаты в порядке исходных файлов
	ProcessingSecs float64          `json:"processing_time_seconds"` // Длительность обработки
}

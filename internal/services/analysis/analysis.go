// Package analysis реализует основной сценарий диагностики: распознавание
// болезни по изображению листа, учёт квот и расхода, подбор видео,
// генерацию рецепта и пакетную обработку.
package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Цены vision-модели за миллион токенов, USD.
const (
	visionInputPricePerMillion  = 0.05
	visionOutputPricePerMillion = 0.08
)

// bulkWorkers ограничивает параллелизм пакетного анализа.
const bulkWorkers = 5

// ErrImageTooLarge возвращается, когда изображение превышает лимит плана.
var ErrImageTooLarge = errors.New("image exceeds plan size limit")

// Vision описывает клиент распознавания болезней.
type Vision interface {
	Diagnose(ctx context.Context, imageBase64 string) (*models.Diagnosis, error)
	Model() string
}

// VideoSearch описывает клиент подбора обучающих видео.
type VideoSearch interface {
	FindVideos(ctx context.Context, diseaseName string) ([]models.Video, error)
}

// QuotaService описывает учёт квот и расхода внешних API.
type QuotaService interface {
	Consume(ctx context.Context, userUID, username string) (*models.Plan, error)
	PlanFor(ctx context.Context, userUID string) (*models.Plan, error)
	TrackUsage(ctx context.Context, usage models.APIUsage)
}

// PrescriptionService описывает генерацию рецептов.
type PrescriptionService interface {
	Generate(ctx context.Context, userUID, username string, analysisID int, diagnosis *models.Diagnosis) (*models.Prescription, error)
}

// Repository определяет методы хранилища, необходимые сервису анализов.
type Repository interface {
	CreateAnalysis(ctx context.Context, a models.Analysis) (int, error)
	ReadAnalysis(ctx context.Context, id int, userUID string) (*models.Analysis, error)
	ListAnalyses(ctx context.Context, userUID string, limit, offset int) ([]*models.Analysis, error)
	RemoveAnalysis(ctx context.Context, id int, userUID string) (int, error)
}

// Service реализует сценарии анализа изображений.
type Service struct {
	repo          Repository
	vision        Vision
	videos        VideoSearch
	quotas        QuotaService
	prescriptions PrescriptionService
	log           *slog.Logger
}

func New(repo Repository, vision Vision, videos VideoSearch,
	quotas QuotaService, prescriptions PrescriptionService, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		vision:        vision,
		videos:        videos,
		quotas:        quotas,
		prescriptions: prescriptions,
		log:           log,
	}
}

// Detect выполняет полный цикл анализа одного изображения: списывает квоту,
// распознаёт болезнь, учитывает расход токенов, подбирает видео, сохраняет
// результат и генерирует рецепт. Подбор видео и рецепт не критичны:
// их ошибки логируются, но не прерывают анализ.
func (s *Service) Detect(ctx context.Context, userUID, username, filename string, image []byte) (*models.Analysis, error) {
	return s.detect(ctx, userUID, username, filename, "", "", image)
}

// detect реализует общий сценарий для одиночного и пакетного анализа.
// Для пакетного анализа batchID и batchName сохраняются вместе с записью.
func (s *Service) detect(ctx context.Context, userUID, username, filename,
	batchID, batchName string, image []byte) (*models.Analysis, error) {
	plan, err := s.quotas.PlanFor(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if len(image) > plan.MaxImageSizeMB*1024*1024 {
		return nil, ErrImageTooLarge
	}
	if _, err := s.quotas.Consume(ctx, userUID, username); err != nil {
		return nil, err
	}

	imageBase64 := base64.StdEncoding.EncodeToString(image)
	diagnosis, diagErr := s.vision.Diagnose(ctx, imageBase64)

	usage := models.APIUsage{
		UserUID:  userUID,
		Username: username,
		APIType:  "vision",
		Endpoint: "disease-detection",
		Model:    s.vision.Model(),
		Success:  diagErr == nil,
	}
	if diagnosis != nil {
		usage.TokensUsed = diagnosis.TokenUsage.TotalTokens
		usage.InputTokens = diagnosis.TokenUsage.PromptTokens
		usage.OutputTokens = diagnosis.TokenUsage.CompletionTokens
		usage.EstimatedCost = estimateVisionCost(diagnosis.TokenUsage)
	}
	if diagErr != nil {
		usage.ErrorMessage = diagErr.Error()
	}
	s.quotas.TrackUsage(ctx, usage)

	if diagErr != nil {
		return nil, diagErr
	}

	analysis := models.Analysis{
		UserUID:         userUID,
		Username:        username,
		ImageFilename:   filename,
		DiseaseDetected: diagnosis.DiseaseDetected,
		DiseaseName:     diagnosis.DiseaseName,
		DiseaseType:     diagnosis.DiseaseType,
		Severity:        diagnosis.Severity,
		Confidence:      diagnosis.Confidence,
		Symptoms:        diagnosis.Symptoms,
		PossibleCauses:  diagnosis.PossibleCauses,
		Treatment:       diagnosis.Treatment,
		Description:     diagnosis.Description,
		BatchID:         batchID,
		BatchName:       batchName,
		CreatedAt:       time.Now().UTC(),
	}

	if diagnosis.DiseaseDetected {
		videos, err := s.videos.FindVideos(ctx, diagnosis.DiseaseName)
		if err != nil {
			s.log.Warn("failed to find tutorial videos", sl.Err(err),
				slog.String("disease", diagnosis.DiseaseName))
		} else {
			analysis.Videos = videos
		}
	}

	id, err := s.repo.CreateAnalysis(ctx, analysis)
	if err != nil {
		return nil, err
	}
	analysis.ID = id

	if _, err := s.prescriptions.Generate(ctx, userUID, username, id, diagnosis); err != nil {
		s.log.Warn("failed to generate prescription", sl.Err(err),
			slog.Int("analysis_id", id))
	}

	s.log.Info("analysis completed",
		slog.Int("analysis_id", id),
		slog.String("disease", diagnosis.DiseaseName),
		slog.String("severity", diagnosis.Severity))
	return &analysis, nil
}

// Bulk анализирует пакет изображений пулом воркеров. Результаты возвращаются
// в порядке исходных файлов; ошибка одного файла не прерывает остальные.
func (s *Service) Bulk(ctx context.Context, userUID, username, batchName string, files []models.BulkFile) *models.BulkResult {
	start := time.Now()
	batchID := uuid.New().String()

	results := make([]models.BulkItemResult, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range bulkWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				file := files[i]
				analysis, err := s.detect(ctx, userUID, username, file.Filename, batchID, batchName, file.Contents)
				if err != nil {
					results[i] = models.BulkItemResult{
						Index:    i,
						Filename: file.Filename,
						Success:  false,
						Error:    err.Error(),
					}
					continue
				}
				results[i] = models.BulkItemResult{
					Index:    i,
					Filename: file.Filename,
					Success:  true,
					Analysis: analysis,
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := &models.BulkResult{
		BatchID:     batchID,
		BatchName:   batchName,
		TotalImages: len(files),
		Results:     results,
	}
	for _, item := range results {
		if item.Success {
			result.ProcessedCount++
		} else {
			result.FailedCount++
		}
	}
	result.ProcessingSecs = time.Since(start).Seconds()

	s.log.Info("bulk analysis finished",
		slog.String("batch_id", batchID),
		slog.Int("processed", result.ProcessedCount),
		slog.Int("failed", result.FailedCount))
	return result
}

// List возвращает историю анализов пользователя.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Analysis, error) {
	return s.repo.ListAnalyses(ctx, userUID, limit, offset)
}

// Get возвращает анализ пользователя по ID.
func (s *Service) Get(ctx context.Context, id int, userUID string) (*models.Analysis, error) {
	return s.repo.ReadAnalysis(ctx, id, userUID)
}

// Delete удаляет анализ пользователя и возвращает количество удалённых строк.
func (s *Service) Delete(ctx context.Context, id int, userUID string) (int, error) {
	return s.repo.RemoveAnalysis(ctx, id, userUID)
}

func estimateVisionCost(usage models.TokenUsage) float64 {
	inputCost := float64(usage.PromptTokens) / 1_000_000 * visionInputPricePerMillion
	outputCost := float64(usage.CompletionTokens) / 1_000_000 * visionOutputPricePerMillion
	return inputCost + outputCost
}

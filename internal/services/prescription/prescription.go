// Package prescription реализует генерацию планов лечения по результату
// анализа на основе протоколов лечения болезней.
package prescription

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/rxid"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Repository определяет методы хранилища, необходимые сервису рецептов.
type Repository interface {
	CreatePrescription(ctx context.Context, p models.Prescription) (int, error)
	GetPrescriptionByAnalysisID(ctx context.Context, analysisID int, userUID string) (*models.Prescription, error)
	GetPrescriptionByPublicID(ctx context.Context, prescriptionID, userUID string) (*models.Prescription, error)
	ListPrescriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Prescription, error)
}

// Service реализует генерацию и выдачу рецептов.
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

// Generate строит рецепт по диагнозу анализа и сохраняет его. Рецепт
// действителен 90 дней; на один анализ создаётся не более одного рецепта.
func (s *Service) Generate(ctx context.Context, userUID, username string,
	analysisID int, diagnosis *models.Diagnosis) (*models.Prescription, error) {
	now := time.Now().UTC()
	adjusted := adjustForSeverity(protocolFor(diagnosis.DiseaseName), diagnosis.Severity)

	p := models.Prescription{
		PrescriptionID:     rxid.New(now),
		UserUID:            userUID,
		Username:           username,
		AnalysisID:         analysisID,
		DiseaseName:        diagnosis.DiseaseName,
		DiseaseType:        diagnosis.DiseaseType,
		Severity:           diagnosis.Severity,
		Confidence:         diagnosis.Confidence,
		TreatmentPriority:  adjusted.Priority,
		TreatmentDuration:  adjusted.Duration,
		Steps:              adjusted.Steps,
		Products:           adjusted.Products,
		PreventionTips:     adjusted.PreventionTips,
		MonitoringSchedule: adjusted.MonitoringSchedule,
		WarningSigns:       adjusted.WarningSigns,
		SuccessIndicators:  adjusted.SuccessIndicators,
		Status:             models.PrescriptionStatusActive,
		ExpiresAt:          now.AddDate(0, 0, 90),
		CreatedAt:          now,
	}

	id, err := s.repo.CreatePrescription(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.log.Info("prescription generated",
		slog.String("prescription_id", p.PrescriptionID),
		slog.Int("analysis_id", analysisID))
	return &p, nil
}

// GetByAnalysisID возвращает рецепт по идентификатору анализа.
func (s *Service) GetByAnalysisID(ctx context.Context, analysisID int, userUID string) (*models.Prescription, error) {
	return s.repo.GetPrescriptionByAnalysisID(ctx, analysisID, userUID)
}

// GetByPublicID возвращает рецепт по публичному идентификатору.
func (s *Service) GetByPublicID(ctx context.Context, prescriptionID, userUID string) (*models.Prescription, error) {
	return s.repo.GetPrescriptionByPublicID(ctx, prescriptionID, userUID)
}

// List возвращает рецепты пользователя с пагинацией.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Prescription, error) {
	return s.repo.ListPrescriptions(ctx, userUID, limit, offset)
}

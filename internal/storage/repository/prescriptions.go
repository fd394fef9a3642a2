package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreatePrescription вставляет рецепт лечения и возвращает его внутренний ID.
// Ограничение UNIQUE(analysis_id) гарантирует не более одного рецепта на анализ.
func (s *Storage) CreatePrescription(ctx context.Context, p models.Prescription) (int, error) {
	const op = "storage.CreatePrescription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	steps, err := json.Marshal(p.Steps)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	products, err := json.Marshal(p.Products)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	prevention, err := json.Marshal(p.PreventionTips)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	monitoring, err := json.Marshal(p.MonitoringSchedule)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	warnings, err := json.Marshal(p.WarningSigns)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	success, err := json.Marshal(p.SuccessIndicators)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO prescriptions (prescription_id, user_uid, username, analysis_id,
				  disease_name, disease_type, severity, confidence, treatment_priority,
				  treatment_duration, steps, products, prevention_tips, monitoring_schedule,
				  warning_signs, success_indicators, status, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		p.PrescriptionID, p.UserUID, p.Username, p.AnalysisID,
		p.DiseaseName, p.DiseaseType, p.Severity, p.Confidence, p.TreatmentPriority,
		p.TreatmentDuration, steps, products, prevention, monitoring,
		warnings, success, p.Status, p.ExpiresAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPrescriptionByAnalysisID возвращает рецепт, привязанный к анализу пользователя.
func (s *Storage) GetPrescriptionByAnalysisID(ctx context.Context, analysisID int, userUID string) (*models.Prescription, error) {
	const op = "storage.GetPrescriptionByAnalysisID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, prescription_id, user_uid, username, analysis_id, disease_name,
				  disease_type, severity, confidence, treatment_priority, treatment_duration,
				  steps, products, prevention_tips, monitoring_schedule, warning_signs,
				  success_indicators, status, expires_at, created_at
			  FROM prescriptions
			  WHERE analysis_id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, analysisID, userUID)
	item, err := scanPrescription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetPrescriptionByPublicID возвращает рецепт пользователя по публичному
// идентификатору вида RX-YYYYMMDD-xxxxxxxx.
func (s *Storage) GetPrescriptionByPublicID(ctx context.Context, prescriptionID, userUID string) (*models.Prescription, error) {
	const op = "storage.GetPrescriptionByPublicID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, prescription_id, user_uid, username, analysis_id, disease_name,
				  disease_type, severity, confidence, treatment_priority, treatment_duration,
				  steps, products, prevention_tips, monitoring_schedule, warning_signs,
				  success_indicators, status, expires_at, created_at
			  FROM prescriptions
			  WHERE prescription_id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, prescriptionID, userUID)
	item, err := scanPrescription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ListPrescriptions возвращает рецепты пользователя от новых к старым.
func (s *Storage) ListPrescriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Prescription, error) {
	const op = "storage.ListPrescriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, prescription_id, user_uid, username, analysis_id, disease_name,
				  disease_type, severity, confidence, treatment_priority, treatment_duration,
				  steps, products, prevention_tips, monitoring_schedule, warning_signs,
				  success_indicators, status, expires_at, created_at
			  FROM prescriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Prescription
	for rows.Next() {
		item, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkExpiredPrescriptions переводит активные рецепты с прошедшей датой
// окончания в статус expired. Возвращает количество изменённых строк.
func (s *Storage) MarkExpiredPrescriptions(ctx context.Context) (int, error) {
	const op = "storage.MarkExpiredPrescriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE prescriptions
			  SET status = $1
			  WHERE status = $2 AND expires_at < NOW()`
	result, err := s.DB.ExecContext(ctx, query,
		models.PrescriptionStatusExpired, models.PrescriptionStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanPrescription(row rowScanner) (*models.Prescription, error) {
	var p models.Prescription
	var steps, products, prevention, monitoring, warnings, success []byte
	if err := row.Scan(&p.ID, &p.PrescriptionID, &p.UserUID, &p.Username, &p.AnalysisID,
		&p.DiseaseName, &p.DiseaseType, &p.Severity, &p.Confidence, &p.TreatmentPriority,
		&p.TreatmentDuration, &steps, &products, &prevention, &monitoring,
		&warnings, &success, &p.Status, &p.ExpiresAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{steps, &p.Steps},
		{products, &p.Products},
		{prevention, &p.PreventionTips},
		{monitoring, &p.MonitoringSchedule},
		{warnings, &p.WarningSigns},
		{success, &p.SuccessIndicators},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreateAnalysis вставляет результат анализа изображения и возвращает его ID.
// Списочные поля диагноза хранятся в JSONB.
func (s *Storage) CreateAnalysis(ctx context.Context, a models.Analysis) (int, error) {
	const op = "storage.CreateAnalysis"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	symptoms, err := json.Marshal(a.Symptoms)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	causes, err := json.Marshal(a.PossibleCauses)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	treatment, err := json.Marshal(a.Treatment)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	videos, err := json.Marshal(a.Videos)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO analyses (user_uid, username, image_filename, disease_detected,
				  disease_name, disease_type, severity, confidence, symptoms, possible_causes,
				  treatment, description, videos, batch_id, batch_name)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		a.UserUID, a.Username, a.ImageFilename, a.DiseaseDetected,
		a.DiseaseName, a.DiseaseType, a.Severity, a.Confidence, symptoms, causes,
		treatment, a.Description, videos, a.BatchID, a.BatchName).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadAnalysis возвращает анализ по ID, ограничивая выдачу владельцем.
func (s *Storage) ReadAnalysis(ctx context.Context, id int, userUID string) (*models.Analysis, error) {
	const op = "storage.ReadAnalysis"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, image_filename, disease_detected, disease_name,
				  disease_type, severity, confidence, symptoms, possible_causes, treatment,
				  description, videos, batch_id, batch_name, created_at
			  FROM analyses
			  WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)
	item, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ListAnalyses возвращает историю анализов пользователя от новых к старым.
func (s *Storage) ListAnalyses(ctx context.Context, userUID string, limit, offset int) ([]*models.Analysis, error) {
	const op = "storage.ListAnalyses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, image_filename, disease_detected, disease_name,
				  disease_type, severity, confidence, symptoms, possible_causes, treatment,
				  description, videos, batch_id, batch_name, created_at
			  FROM analyses
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

	var result []*models.Analysis
	for rows.Next() {
		item, err := scanAnalysis(rows)
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

// RemoveAnalysis удаляет анализ пользователя по ID и возвращает количество
// удалённых строк. Привязанный рецепт удаляется каскадно.
func (s *Storage) RemoveAnalysis(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveAnalysis"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM analyses WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountAnalyses возвращает общее количество анализов и количество анализов
// с обнаруженной болезнью.
func (s *Storage) CountAnalyses(ctx context.Context) (total int, detected int, err error) {
	const op = "storage.CountAnalyses"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE disease_detected) FROM analyses`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&total, &detected); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, detected, nil
}

// DailyAnalysisTrends возвращает агрегированные показатели анализов по дням
// за последние days дней.
func (s *Storage) DailyAnalysisTrends(ctx context.Context, days int) ([]*models.DailyTrend, error) {
	const op = "storage.DailyAnalysisTrends"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT TO_CHAR(created_at::DATE, 'YYYY-MM-DD') AS day,
				  COUNT(*),
				  COUNT(*) FILTER (WHERE disease_detected),
				  COUNT(*) FILTER (WHERE NOT disease_detected)
			  FROM analyses
			  WHERE created_at >= CURRENT_DATE - ($1 || ' days')::INTERVAL
			  GROUP BY day
			  ORDER BY day`
	rows, err := s.DB.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DailyTrend
	for rows.Next() {
		var t models.DailyTrend
		if err := rows.Scan(&t.Date, &t.Analyses, &t.DiseasesDetected, &t.HealthyPlants); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DiseaseDistribution возвращает самые частые болезни за последние days дней.
func (s *Storage) DiseaseDistribution(ctx context.Context, days, limit int) ([]models.DiseaseCount, error) {
	const op = "storage.DiseaseDistribution"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT disease_name, COUNT(*)
			  FROM analyses
			  WHERE disease_detected
			    AND created_at >= CURRENT_DATE - ($1 || ' days')::INTERVAL
			  GROUP BY disease_name
			  ORDER BY COUNT(*) DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, days, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.DiseaseCount
	for rows.Next() {
		var dc models.DiseaseCount
		if err := rows.Scan(&dc.DiseaseName, &dc.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, dc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var a models.Analysis
	var symptoms, causes, treatment, videos []byte
	if err := row.Scan(&a.ID, &a.UserUID, &a.Username, &a.ImageFilename, &a.DiseaseDetected,
		&a.DiseaseName, &a.DiseaseType, &a.Severity, &a.Confidence, &symptoms, &causes,
		&treatment, &a.Description, &videos, &a.BatchID, &a.BatchName, &a.CreatedAt); err != nil {
		return nil, err
	}
	if len(symptoms) > 0 {
		if err := json.Unmarshal(symptoms, &a.Symptoms); err != nil {
			return nil, err
		}
	}
	if len(causes) > 0 {
		if err := json.Unmarshal(causes, &a.PossibleCauses); err != nil {
			return nil, err
		}
	}
	if len(treatment) > 0 {
		if err := json.Unmarshal(treatment, &a.Treatment); err != nil {
			return nil, err
		}
	}
	if len(videos) > 0 {
		if err := json.Unmarshal(videos, &a.Videos); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

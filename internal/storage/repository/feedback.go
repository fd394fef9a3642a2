package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreateFeedback сохраняет отзыв пользователя и возвращает его ID.
func (s *Storage) CreateFeedback(ctx context.Context, f models.Feedback) (int, error) {
	const op = "storage.CreateFeedback"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO feedback (user_uid, username, analysis_id, rating, comment, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		f.UserUID, f.Username, f.AnalysisID, f.Rating, f.Comment, f.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListFeedback возвращает отзывы от новых к старым, при необходимости
// фильтруя по статусу. Пустой статус означает отсутствие фильтра.
func (s *Storage) ListFeedback(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error) {
	const op = "storage.ListFeedback"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, analysis_id, rating, comment, status, created_at
			  FROM feedback
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Feedback
	for rows.Next() {
		var f models.Feedback
		var analysisID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.UserUID, &f.Username, &analysisID,
			&f.Rating, &f.Comment, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if analysisID.Valid {
			id := int(analysisID.Int64)
			f.AnalysisID = &id
		}
		result = append(result, &f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateFeedbackStatus обновляет статус отзыва и возвращает количество
// изменённых строк.
func (s *Storage) UpdateFeedbackStatus(ctx context.Context, id int, status string) (int, error) {
	const op = "storage.UpdateFeedbackStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE feedback
			  SET status = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreateNotification сохраняет уведомление пользователя и возвращает его ID.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (user_uid, title, message, type)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, n.UserUID, n.Title, n.Message, n.Type).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotifications возвращает уведомления пользователя от новых к старым.
func (s *Storage) ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, title, message, type, is_read, created_at
			  FROM notifications
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

	var result []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserUID, &n.Title, &n.Message, &n.Type,
			&n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUnreadNotifications возвращает количество непрочитанных уведомлений.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountUnreadNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM notifications WHERE user_uid = $1 AND is_read = false`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// MarkNotificationRead помечает уведомление пользователя прочитанным
// и возвращает количество изменённых строк.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
			  SET is_read = true
			  WHERE id = $1 AND user_uid = $2`
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

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными
// и возвращает количество изменённых строк.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userUID string) (int, error) {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
			  SET is_read = true
			  WHERE user_uid = $1 AND is_read = false`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreateAPIKey сохраняет API-ключ корпоративного клиента и возвращает его ID.
func (s *Storage) CreateAPIKey(ctx context.Context, key models.APIKey) (int, error) {
	const op = "storage.CreateAPIKey"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO api_keys (user_uid, name, key_prefix, key_hash, is_active, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		key.UserUID, key.Name, key.KeyPrefix, key.KeyHash, key.IsActive, key.ExpiresAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindActiveAPIKeyByHash находит действующий API-ключ по его хэшу
// и атомарно обновляет счётчик использований и момент последнего вызова.
func (s *Storage) FindActiveAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	const op = "storage.FindActiveAPIKeyByHash"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE api_keys
			  SET usage_count = usage_count + 1, last_used = NOW()
			  WHERE key_hash = $1 AND is_active = true AND expires_at > NOW()
			  RETURNING id, user_uid, name, key_prefix, key_hash, is_active, usage_count,
				  last_used, expires_at, created_at`
	var key models.APIKey
	var lastUsed sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, keyHash)
	if err := row.Scan(&key.ID, &key.UserUID, &key.Name, &key.KeyPrefix, &key.KeyHash,
		&key.IsActive, &key.UsageCount, &lastUsed, &key.ExpiresAt, &key.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lastUsed.Valid {
		key.LastUsed = &lastUsed.Time
	}
	return &key, nil
}

// ListAPIKeys возвращает ключи пользователя от новых к старым.
func (s *Storage) ListAPIKeys(ctx context.Context, userUID string) ([]*models.APIKey, error) {
	const op = "storage.ListAPIKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, key_prefix, key_hash, is_active, usage_count,
				  last_used, expires_at, created_at
			  FROM api_keys
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.APIKey
	for rows.Next() {
		var key models.APIKey
		var lastUsed sql.NullTime
		if err := rows.Scan(&key.ID, &key.UserUID, &key.Name, &key.KeyPrefix, &key.KeyHash,
			&key.IsActive, &key.UsageCount, &lastUsed, &key.ExpiresAt, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lastUsed.Valid {
			key.LastUsed = &lastUsed.Time
		}
		result = append(result, &key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevokeAPIKey деактивирует ключ пользователя и возвращает количество
// изменённых строк.
func (s *Storage) RevokeAPIKey(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RevokeAPIKey"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE api_keys
			  SET is_active = false
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

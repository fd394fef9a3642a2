package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// GetQuota возвращает запись квоты пользователя за указанный период.
func (s *Storage) GetQuota(ctx context.Context, userUID string, month, year int) (*models.UsageQuota, error) {
	const op = "storage.GetQuota"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, subscription_id, month, year, analyses_used,
				  analyses_limit, total_api_calls, total_tokens, total_cost, next_reset_date, created_at
			  FROM usage_quotas
			  WHERE user_uid = $1 AND month = $2 AND year = $3`
	var q models.UsageQuota
	var subID sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, userUID, month, year)
	if err := row.Scan(&q.ID, &q.UserUID, &q.Username, &subID, &q.Month, &q.Year,
		&q.AnalysesUsed, &q.AnalysesLimit, &q.TotalAPICalls, &q.TotalTokens, &q.TotalCost,
		&q.NextResetDate, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q.SubscriptionID = int(subID.Int64)
	return &q, nil
}

// EnsureQuota создаёт запись квоты периода, если её ещё нет.
// Повторный вызов для того же периода ничего не меняет.
func (s *Storage) EnsureQuota(ctx context.Context, q models.UsageQuota) error {
	const op = "storage.EnsureQuota"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO usage_quotas (user_uid, username, subscription_id, month, year,
				  analyses_used, analyses_limit, next_reset_date)
			  VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
			  ON CONFLICT (user_uid, month, year) DO NOTHING`
	subID := sql.NullInt64{Int64: int64(q.SubscriptionID), Valid: q.SubscriptionID != 0}
	_, err := s.DB.ExecContext(ctx, query,
		q.UserUID, q.Username, subID, q.Month, q.Year, q.AnalysesLimit, q.NextResetDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeQuota атомарно увеличивает счётчик использованных анализов,
// если лимит ещё не исчерпан. Лимит 0 означает безлимит. Возвращает true,
// если счётчик был увеличен, и false при исчерпанной квоте.
func (s *Storage) ConsumeQuota(ctx context.Context, userUID string, month, year int) (bool, error) {
	const op = "storage.ConsumeQuota"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE usage_quotas
			  SET analyses_used = analyses_used + 1
			  WHERE user_uid = $1 AND month = $2 AND year = $3
			    AND (analyses_limit = 0 OR analyses_used < analyses_limit)`
	result, err := s.DB.ExecContext(ctx, query, userUID, month, year)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// AddAPIUsageToQuota накапливает расход внешних API в квоте периода.
func (s *Storage) AddAPIUsageToQuota(ctx context.Context, userUID string, month, year int,
	calls int, tokens int64, cost float64) error {
	const op = "storage.AddAPIUsageToQuota"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE usage_quotas
			  SET total_api_calls = total_api_calls + $1,
				  total_tokens = total_tokens + $2,
				  total_cost = total_cost + $3
			  WHERE user_uid = $4 AND month = $5 AND year = $6`
	_, err := s.DB.ExecContext(ctx, query, calls, tokens, cost, userUID, month, year)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

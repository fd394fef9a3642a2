package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// TrackAPIUsage сохраняет запись об обращении к внешнему API.
func (s *Storage) TrackAPIUsage(ctx context.Context, u models.APIUsage) error {
	const op = "storage.TrackAPIUsage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO api_usage (user_uid, username, api_type, endpoint, model,
				  tokens_used, input_tokens, output_tokens, estimated_cost, success, error_message)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.DB.ExecContext(ctx, query,
		u.UserUID, u.Username, u.APIType, u.Endpoint, u.Model,
		u.TokensUsed, u.InputTokens, u.OutputTokens, u.EstimatedCost, u.Success, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DailyAPIUsageStats возвращает расход внешних API по дням за последние days дней:
// количество вызовов, токены и стоимость.
func (s *Storage) DailyAPIUsageStats(ctx context.Context, days int) (map[string]*models.DailyTrend, error) {
	const op = "storage.DailyAPIUsageStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT TO_CHAR(created_at::DATE, 'YYYY-MM-DD') AS day,
				  COUNT(*),
				  COALESCE(SUM(tokens_used), 0),
				  COALESCE(SUM(estimated_cost), 0)
			  FROM api_usage
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

	result := make(map[string]*models.DailyTrend)
	for rows.Next() {
		var t models.DailyTrend
		if err := rows.Scan(&t.Date, &t.APICalls, &t.Tokens, &t.Cost); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[t.Date] = &t
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UsageTotalsForUser возвращает суммарный расход внешних API пользователя:
// количество вызовов, токены и стоимость.
func (s *Storage) UsageTotalsForUser(ctx context.Context, userUID string) (calls int, tokens int64, cost float64, err error) {
	const op = "storage.UsageTotalsForUser"
	select {
	case <-ctx.Done():
		return 0, 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*), COALESCE(SUM(tokens_used), 0), COALESCE(SUM(estimated_cost), 0)
			  FROM api_usage
			  WHERE user_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&calls, &tokens, &cost); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return calls, tokens, cost, nil
}

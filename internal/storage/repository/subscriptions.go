package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreateSubscriptionWithQuota в одной транзакции переводит прежнюю активную
// подписку пользователя в статус superseded, вставляет новую подписку и
// создаёт для неё запись квоты текущего периода. Возвращает ID новой подписки.
func (s *Storage) CreateSubscriptionWithQuota(ctx context.Context,
	sub models.Subscription, quota models.UsageQuota) (int, error) {
	const op = "storage.CreateSubscriptionWithQuota"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	supersede := `UPDATE subscriptions
				  SET status = $1
				  WHERE user_uid = $2 AND status = $3`
	if _, err = tx.ExecContext(ctx, supersede,
		models.SubscriptionStatusSuperseded, sub.UserUID, models.SubscriptionStatusActive); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	insert := `INSERT INTO subscriptions (user_uid, username, plan_id, plan_type, status,
				   billing_cycle, amount_paid, start_date, end_date, next_billing_date,
				   payment_method, transaction_id, auto_renewal)
			   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			   RETURNING id`
	var newID int
	if err = tx.QueryRowContext(ctx, insert,
		sub.UserUID, sub.Username, sub.PlanID, sub.PlanType, sub.Status,
		sub.BillingCycle, sub.AmountPaid, sub.StartDate, sub.EndDate, sub.NextBillingDate,
		sub.PaymentMethod, sub.TransactionID, sub.AutoRenewal).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	insertQuota := `INSERT INTO usage_quotas (user_uid, username, subscription_id, month, year,
						analyses_used, analyses_limit, next_reset_date)
					VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
					ON CONFLICT (user_uid, month, year)
					DO UPDATE SET subscription_id = EXCLUDED.subscription_id,
								  analyses_limit = EXCLUDED.analyses_limit`
	if _, err = tx.ExecContext(ctx, insertQuota,
		quota.UserUID, quota.Username, newID, quota.Month, quota.Year,
		quota.AnalysesLimit, quota.NextResetDate); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetActiveSubscription возвращает активную подписку пользователя.
func (s *Storage) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, plan_id, plan_type, status, billing_cycle,
				  amount_paid, start_date, end_date, next_billing_date, payment_method,
				  transaction_id, auto_renewal, cancelled_at, created_at
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = $2
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID, models.SubscriptionStatusActive)
	item, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// CancelSubscription переводит активную подписку пользователя в статус cancelled
// с отключением автопродления. Возвращает количество изменённых строк.
func (s *Storage) CancelSubscription(ctx context.Context, userUID string, cancelledAt time.Time) (int, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, auto_renewal = false, cancelled_at = $2
			  WHERE user_uid = $3 AND status = $4`
	result, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusCancelled, cancelledAt, userUID, models.SubscriptionStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptions возвращает историю подписок пользователя от новых к старым.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, plan_id, plan_type, status, billing_cycle,
				  amount_paid, start_date, end_date, next_billing_date, payment_method,
				  transaction_id, auto_renewal, cancelled_at, created_at
			  FROM subscriptions
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

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows)
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

// CountActiveSubscriptionsByPlanType возвращает количество активных подписок
// в разрезе типов планов.
func (s *Storage) CountActiveSubscriptionsByPlanType(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountActiveSubscriptionsByPlanType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT plan_type, COUNT(*)
			  FROM subscriptions
			  WHERE status = $1
			  GROUP BY plan_type`
	rows, err := s.DB.QueryContext(ctx, query, models.SubscriptionStatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]int)
	for rows.Next() {
		var planType string
		var count int
		if err := rows.Scan(&planType, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[planType] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkExpiredSubscriptions переводит активные подписки с прошедшей датой
// окончания в статус expired. Возвращает количество изменённых строк.
func (s *Storage) MarkExpiredSubscriptions(ctx context.Context) (int, error) {
	const op = "storage.MarkExpiredSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE status = $2 AND end_date < CURRENT_DATE`
	result, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusExpired, models.SubscriptionStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindSubscriptionsExpiringSoon находит активные подписки, заканчивающиеся
// через указанное количество дней, вместе с почтой владельца.
func (s *Storage) FindSubscriptionsExpiringSoon(ctx context.Context, days int) ([]*models.SubscriptionExpiryInfo, error) {
	const op = "storage.FindSubscriptionsExpiringSoon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, s.username, s.plan_type, s.end_date
			  FROM subscriptions s
			  JOIN users u ON s.user_uid = u.uid
			  WHERE s.status = $1
			    AND s.end_date::DATE = CURRENT_DATE + ($2 || ' days')::INTERVAL`
	rows, err := s.DB.QueryContext(ctx, query, models.SubscriptionStatusActive, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionExpiryInfo
	for rows.Next() {
		var si models.SubscriptionExpiryInfo
		if err = rows.Scan(&si.Email, &si.Username, &si.PlanName, &si.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &si)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var cancelledAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Username, &sub.PlanID, &sub.PlanType,
		&sub.Status, &sub.BillingCycle, &sub.AmountPaid, &sub.StartDate, &sub.EndDate,
		&sub.NextBillingDate, &sub.PaymentMethod, &sub.TransactionID, &sub.AutoRenewal,
		&cancelledAt, &sub.CreatedAt); err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		sub.CancelledAt = &cancelledAt.Time
	}
	return &sub, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// CreatePaymentRecord вставляет запись журнала платежей и возвращает её ID.
func (s *Storage) CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (int, error) {
	const op = "storage.CreatePaymentRecord"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, username, subscription_id, amount, currency,
				  payment_method, transaction_id, gateway_order_id, status, billing_cycle,
				  period_start, period_end, payment_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, p.Username, p.SubscriptionID, p.Amount, p.Currency,
		p.PaymentMethod, p.TransactionID, p.GatewayOrderID, p.Status, p.BillingCycle,
		p.PeriodStart, p.PeriodEnd, p.PaymentDate).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdatePaymentStatus обновляет статус платежа по идентификатору транзакции
// и возвращает количество изменённых строк.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, transactionID, status string) (int, error) {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1,
				  payment_date = CASE WHEN $1 = 'completed' THEN NOW() ELSE payment_date END
			  WHERE transaction_id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, transactionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPaymentsByUser возвращает историю платежей пользователя от новых к старым.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentRecord, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, username, subscription_id, amount, currency, payment_method,
				  transaction_id, gateway_order_id, status, billing_cycle, period_start,
				  period_end, payment_date, created_at
			  FROM payments
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

	var result []*models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		var paymentDate sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserUID, &p.Username, &p.SubscriptionID, &p.Amount,
			&p.Currency, &p.PaymentMethod, &p.TransactionID, &p.GatewayOrderID, &p.Status,
			&p.BillingCycle, &p.PeriodStart, &p.PeriodEnd, &paymentDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if paymentDate.Valid {
			p.PaymentDate = &paymentDate.Time
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevenueSummary возвращает сводку по выручке: сумму и количество завершённых
// платежей, а также выручку в разрезе типов планов.
func (s *Storage) RevenueSummary(ctx context.Context) (*models.RevenueSummary, error) {
	const op = "storage.RevenueSummary"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	summary := &models.RevenueSummary{
		RevenueByPlanType: make(map[string]float64),
	}

	totals := `SELECT COALESCE(SUM(amount), 0), COUNT(*)
			   FROM payments
			   WHERE status = $1`
	if err := s.DB.QueryRowContext(ctx, totals, models.PaymentStatusCompleted).
		Scan(&summary.TotalRevenue, &summary.CompletedPayments); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byPlan := `SELECT s.plan_type, COALESCE(SUM(p.amount), 0)
			   FROM payments p
			   JOIN subscriptions s ON p.subscription_id = s.id
			   WHERE p.status = $1
			   GROUP BY s.plan_type`
	rows, err := s.DB.QueryContext(ctx, byPlan, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var planType string
		var amount float64
		if err := rows.Scan(&planType, &amount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summary.RevenueByPlanType[planType] = amount
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}

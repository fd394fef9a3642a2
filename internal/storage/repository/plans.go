package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// ListActivePlans возвращает доступные для покупки тарифные планы,
// отсортированные по цене за месяц.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, plan_type, description, monthly_price, quarterly_price, yearly_price,
				  max_analyses_per_month, max_image_size_mb, api_rate_limit_per_minute, features,
				  has_priority_support, has_api_access, has_bulk_analysis, has_advanced_analytics,
				  has_prescription_export, is_active, created_at
			  FROM plans
			  WHERE is_active = true
			  ORDER BY monthly_price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		item, err := scanPlan(rows)
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

// GetPlan возвращает тарифный план по его ID.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, plan_type, description, monthly_price, quarterly_price, yearly_price,
				  max_analyses_per_month, max_image_size_mb, api_rate_limit_per_minute, features,
				  has_priority_support, has_api_access, has_bulk_analysis, has_advanced_analytics,
				  has_prescription_export, is_active, created_at
			  FROM plans
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	item, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetPlanByType возвращает тарифный план по его типу.
func (s *Storage) GetPlanByType(ctx context.Context, planType string) (*models.Plan, error) {
	const op = "storage.GetPlanByType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, plan_type, description, monthly_price, quarterly_price, yearly_price,
				  max_analyses_per_month, max_image_size_mb, api_rate_limit_per_minute, features,
				  has_priority_support, has_api_access, has_bulk_analysis, has_advanced_analytics,
				  has_prescription_export, is_active, created_at
			  FROM plans
			  WHERE plan_type = $1`
	row := s.DB.QueryRowContext(ctx, query, planType)
	item, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.PlanType, &p.Description,
		&p.MonthlyPrice, &p.QuarterlyPrice, &p.YearlyPrice,
		&p.MaxAnalysesPerMonth, &p.MaxImageSizeMB, &p.APIRateLimitPerMinute, &features,
		&p.HasPrioritySupport, &p.HasAPIAccess, &p.HasBulkAnalysis, &p.HasAdvancedAnalytics,
		&p.HasPrescriptionExport, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

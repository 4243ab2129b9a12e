package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// UpsertPlan создаёт тарифный план или обновляет существующий.
func (s *Storage) UpsertPlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result := &models.SubscriptionPlan{}
	query := `INSERT INTO subscription_plans (plan_type, price, duration_days)
		  VALUES ($1, $2, $3)
		  ON CONFLICT (plan_type) DO UPDATE
		  SET price = EXCLUDED.price,
		      duration_days = EXCLUDED.duration_days,
		      updated_at = NOW()
		  RETURNING plan_type, price, duration_days, updated_at;`
	if err := s.DB.QueryRowContext(ctx, query, plan.PlanType, plan.Price, plan.DurationDays).
		Scan(&result.PlanType, &result.Price, &result.DurationDays, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает тарифный план по типу.
func (s *Storage) GetPlan(ctx context.Context, planType string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result := &models.SubscriptionPlan{}
	query := `SELECT plan_type, price, duration_days, updated_at
		  FROM subscription_plans WHERE plan_type = $1`
	err := s.DB.QueryRowContext(ctx, query, planType).
		Scan(&result.PlanType, &result.Price, &result.DurationDays, &result.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPlans возвращает все тарифные планы.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT plan_type, price, duration_days, updated_at
		  FROM subscription_plans ORDER BY duration_days ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		p := &models.SubscriptionPlan{}
		if err = rows.Scan(&p.PlanType, &p.Price, &p.DurationDays, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

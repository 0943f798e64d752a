package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

const planColumns = `p.id, p.slug, p.name, p.target_role, p.period, p.base_price, p.discount_percentage,
	p.active, p.featured, p.description, p.display_order`

const periodRank = `CASE p.period
	WHEN 'monthly' THEN 1
	WHEN 'quarterly' THEN 2
	WHEN 'semiannual' THEN 3
	WHEN 'annual' THEN 4
END`

func planDest(p *models.PlanType, role, period *string) []any {
	return []any{&p.ID, &p.Slug, &p.Name, role, period, &p.BasePrice, &p.DiscountPercentage,
		&p.Active, &p.Featured, &p.Description, &p.DisplayOrder}
}

// ListActivePlans возвращает активные планы роли в порядке display_order, затем периода.
func (s *Storage) ListActivePlans(ctx context.Context, role models.Role) ([]models.PlanType, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plan_types p
			  WHERE p.active AND p.target_role = $1
			  ORDER BY p.display_order, ` + periodRank + `, p.id`
	rows, err := s.DB.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.PlanType, 0)
	for rows.Next() {
		var (
			p            models.PlanType
			role, period string
		)
		if err := rows.Scan(planDest(&p, &role, &period)...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.TargetRole = models.Role(role)
		p.Period = models.BillingPeriod(period)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetActivePlan возвращает активный план по ID.
func (s *Storage) GetActivePlan(ctx context.Context, id int64) (*models.PlanType, error) {
	const op = "storage.GetActivePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		p            models.PlanType
		role, period string
	)
	err := s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plan_types p WHERE p.id = $1 AND p.active`, id).
		Scan(planDest(&p, &role, &period)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.TargetRole = models.Role(role)
	p.Period = models.BillingPeriod(period)
	return &p, nil
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/movibes/internal/models"
)

func plan(role models.Role, period models.BillingPeriod, base int64, discount int) models.PlanType {
	return models.PlanType{
		Slug:               string(role) + "-" + string(period),
		TargetRole:         role,
		Period:             period,
		BasePrice:          base,
		DiscountPercentage: discount,
		Active:             true,
	}
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		base     int64
		discount int
		want     int64
	}{
		{"no discount", 2990, 0, 2990},
		{"twenty percent", 10000, 20, 8000},
		{"rounds half up", 2990, 15, 2541},
		{"full discount", 7990, 100, 0},
		{"discount above range is capped", 7990, 150, 0},
		{"negative discount ignored", 7990, -5, 7990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(plan(models.RoleStudent, models.PeriodMonthly, tt.base, tt.discount)))
		})
	}
}

func TestMonthlyEquivalentSavings(t *testing.T) {
	proMonthly := plan(models.RoleProfessional, models.PeriodMonthly, 7990, 0)
	proAnnual := plan(models.RoleProfessional, models.PeriodAnnual, 79990, 0)
	studentMonthly := plan(models.RoleStudent, models.PeriodMonthly, 2990, 0)
	studentQuarterly := plan(models.RoleStudent, models.PeriodQuarterly, 9990, 0)
	studentAnnual := plan(models.RoleStudent, models.PeriodAnnual, 29990, 0)
	inactiveMonthly := plan(models.RoleProfessional, models.PeriodMonthly, 1000, 0)
	inactiveMonthly.Active = false

	catalog := []models.PlanType{studentMonthly, studentAnnual, studentQuarterly, proMonthly, proAnnual}

	tests := []struct {
		name    string
		plan    models.PlanType
		catalog []models.PlanType
		want    int64
	}{
		{"annual professional", proAnnual, catalog, 15890},
		{"annual student", studentAnnual, catalog, 5890},
		{"monthly plan has no savings", proMonthly, catalog, 0},
		{"more expensive than monthly is clamped", studentQuarterly, catalog, 0},
		{"no monthly counterpart", proAnnual, []models.PlanType{studentMonthly, proAnnual}, 0},
		{"inactive monthly ignored", proAnnual, []models.PlanType{inactiveMonthly, proAnnual}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthlyEquivalentSavings(tt.plan, tt.catalog))
		})
	}
}

func TestQuote(t *testing.T) {
	monthly := plan(models.RoleProfessional, models.PeriodMonthly, 7990, 0)
	annual := plan(models.RoleProfessional, models.PeriodAnnual, 79990, 10)

	q := Quote(annual, []models.PlanType{monthly, annual})

	assert.Equal(t, annual, q.Plan)
	assert.Equal(t, int64(71991), q.EffectivePrice)
	assert.Equal(t, int64(95880-71991), q.Savings)
}

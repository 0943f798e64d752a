// Package pricing вычисляет цены тарифных планов. Все суммы в центах.
package pricing

import "github.com/magabrotheeeer/movibes/internal/models"

// EffectivePrice цена плана с учётом скидки: base - base*discount/100.
// Скидка округляется до цента по правилу half-up.
func EffectivePrice(plan models.PlanType) int64 {
	discount := plan.DiscountPercentage
	if discount <= 0 {
		return plan.BasePrice
	}
	if discount > 100 {
		discount = 100
	}
	off := (plan.BasePrice*int64(discount) + 50) / 100
	return plan.BasePrice - off
}

// MonthlyCounterpart ищет в каталоге активный помесячный план той же роли.
func MonthlyCounterpart(plan models.PlanType, catalog []models.PlanType) (models.PlanType, bool) {
	for _, p := range catalog {
		if p.Active && p.TargetRole == plan.TargetRole && p.Period == models.PeriodMonthly {
			return p, true
		}
	}
	return models.PlanType{}, false
}

// MonthlyEquivalentSavings экономия по сравнению с оплатой помесячного плана той же роли
// за тот же срок. Для помесячных планов и при отсутствии помесячного аналога 0.
// Отрицательная разница не показывается.
func MonthlyEquivalentSavings(plan models.PlanType, catalog []models.PlanType) int64 {
	if plan.Period == models.PeriodMonthly {
		return 0
	}
	monthly, ok := MonthlyCounterpart(plan, catalog)
	if !ok {
		return 0
	}
	savings := int64(plan.Period.Months())*EffectivePrice(monthly) - EffectivePrice(plan)
	if savings < 0 {
		return 0
	}
	return savings
}

// Quote собирает цену и экономию плана.
func Quote(plan models.PlanType, catalog []models.PlanType) models.PlanQuote {
	return models.PlanQuote{
		Plan:           plan,
		EffectivePrice: EffectivePrice(plan),
		Savings:        MonthlyEquivalentSavings(plan, catalog),
	}
}

package models

// BillingPeriod период оплаты тарифа.
type BillingPeriod string

const (
	PeriodMonthly    BillingPeriod = "monthly"
	PeriodQuarterly  BillingPeriod = "quarterly"
	PeriodSemiannual BillingPeriod = "semiannual"
	PeriodAnnual     BillingPeriod = "annual"
)

// Months количество месяцев в периоде. Для неизвестного периода 0.
func (p BillingPeriod) Months() int {
	switch p {
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 3
	case PeriodSemiannual:
		return 6
	case PeriodAnnual:
		return 12
	}
	return 0
}

// Rank порядок сортировки периодов: monthly < quarterly < semiannual < annual.
func (p BillingPeriod) Rank() int {
	switch p {
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 2
	case PeriodSemiannual:
		return 3
	case PeriodAnnual:
		return 4
	}
	return 99
}

// PlanType тарифный план каталога. Цены хранятся в центах.
type PlanType struct {
	ID                 int64         `json:"id"`
	Slug               string        `json:"slug"`
	Name               string        `json:"name"`
	TargetRole         Role          `json:"target_role"`
	Period             BillingPeriod `json:"period"`
	BasePrice          int64         `json:"base_price"`
	DiscountPercentage int           `json:"discount_percentage"`
	Active             bool          `json:"active"`
	Featured           bool          `json:"featured"`
	Description        string        `json:"description"`
	DisplayOrder       int           `json:"display_order"`
}

// PlanQuote план вместе с вычисленной ценой и экономией относительно помесячной оплаты.
type PlanQuote struct {
	Plan           PlanType `json:"plan"`
	EffectivePrice int64    `json:"effective_price"`
	Savings        int64    `json:"savings"`
}

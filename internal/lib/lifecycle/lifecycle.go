// Package lifecycle описывает переходы состояний подписки:
// покупка, отмена, продление, активация и истечение.
// Функции не обращаются к хранилищу, это делают сервисы.
package lifecycle

import (
	"time"

	"github.com/magabrotheeeer/movibes/internal/lib/month"
	"github.com/magabrotheeeer/movibes/internal/lib/pricing"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// PurchaseParams данные для оформления подписки.
type PurchaseParams struct {
	UserID                string
	Plan                  models.PlanType
	StartsAt              time.Time
	ExternalTransactionID string
	PaymentMethod         string
	AutoRenew             bool
}

// Purchase создаёт активную подписку: срок от StartsAt (или now) на длину периода плана.
func Purchase(p PurchaseParams, now time.Time) models.Subscription {
	starts := p.StartsAt
	if starts.IsZero() {
		starts = now
	}
	plan := p.Plan
	return models.Subscription{
		UserID:                p.UserID,
		PlanTypeID:            plan.ID,
		Plan:                  &plan,
		Status:                models.StatusActive,
		StartsAt:              starts,
		ExpiresAt:             month.AddMonths(starts, plan.Period.Months()),
		AmountPaid:            pricing.EffectivePrice(plan),
		ExternalTransactionID: p.ExternalTransactionID,
		PaymentMethod:         p.PaymentMethod,
		AutoRenew:             p.AutoRenew,
	}
}

// Cancel отмечает подписку отменённой пользователем. Статус и срок не меняются,
// но отменённая подписка больше не считается активной (entitlement.IsActive),
// поэтому доступ заканчивается сразу. Повторный вызов ничего не меняет.
func Cancel(sub *models.Subscription, now time.Time) {
	if !sub.UserCancelled {
		at := now
		sub.CancelledAt = &at
	}
	sub.UserCancelled = true
	sub.AutoRenew = false
}

// CanRenew подписку можно продлить, если включено автопродление, пользователь её не отменял
// и она активна или истекла.
func CanRenew(sub models.Subscription) bool {
	return sub.AutoRenew && !sub.UserCancelled &&
		(sub.Status == models.StatusActive || sub.Status == models.StatusExpired)
}

// Renewal строит новую подписку в статусе pending, начинающуюся в момент окончания старой.
// Исходная запись не изменяется. Если продление невозможно, возвращает nil.
func Renewal(sub models.Subscription, plan models.PlanType) *models.Subscription {
	if !CanRenew(sub) {
		return nil
	}
	from := sub.ID
	return &models.Subscription{
		UserID:        sub.UserID,
		PlanTypeID:    plan.ID,
		Plan:          &plan,
		Status:        models.StatusPending,
		StartsAt:      sub.ExpiresAt,
		ExpiresAt:     month.AddMonths(sub.ExpiresAt, plan.Period.Months()),
		AmountPaid:    pricing.EffectivePrice(plan),
		PaymentMethod: sub.PaymentMethod,
		AutoRenew:     sub.AutoRenew,
		RenewedFromID: &from,
	}
}

// Activate переводит pending подписку в active после подтверждения оплаты.
func Activate(sub *models.Subscription, transactionID string) bool {
	if sub.Status != models.StatusPending {
		return false
	}
	sub.Status = models.StatusActive
	if transactionID != "" {
		sub.ExternalTransactionID = transactionID
	}
	return true
}

// Expire помечает просроченную активную подписку как expired.
func Expire(sub *models.Subscription, now time.Time) bool {
	if sub.Status != models.StatusActive || !sub.ExpiresAt.Before(now) {
		return false
	}
	sub.Status = models.StatusExpired
	return true
}

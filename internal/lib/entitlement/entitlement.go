// Package entitlement определяет, даёт ли набор подписок пользователю доступ.
// Функции чистые: состояние передаётся целиком, текущее время явно.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/movibes/internal/models"
)

// IsActive подписка активна, если статус active, now внутри [starts_at, expires_at]
// и пользователь её не отменял.
func IsActive(sub models.Subscription, now time.Time) bool {
	return sub.Status == models.StatusActive &&
		!now.Before(sub.StartsAt) &&
		!now.After(sub.ExpiresAt) &&
		!sub.UserCancelled
}

// ActiveSubscription возвращает активную подписку. Если активных несколько,
// выбирается та, что истекает позже.
func ActiveSubscription(subs []models.Subscription, now time.Time) (*models.Subscription, bool) {
	var best *models.Subscription
	for i := range subs {
		if !IsActive(subs[i], now) {
			continue
		}
		if best == nil || subs[i].ExpiresAt.After(best.ExpiresAt) {
			best = &subs[i]
		}
	}
	return best, best != nil
}

// HasActiveSubscription есть ли хотя бы одна активная подписка.
func HasActiveSubscription(subs []models.Subscription, now time.Time) bool {
	_, ok := ActiveSubscription(subs, now)
	return ok
}

// PendingPurchase возвращает покупку, которая ждёт подтверждения оплаты и ещё не истекла.
// Продления (с renewed_from_id) сюда не входят, их оплату ведёт планировщик.
func PendingPurchase(subs []models.Subscription, now time.Time) (*models.Subscription, bool) {
	for i := range subs {
		s := &subs[i]
		if s.Status == models.StatusPending && s.RenewedFromID == nil &&
			!s.UserCancelled && !now.After(s.ExpiresAt) {
			return s, true
		}
	}
	return nil, false
}

// RequiresSubscription профессионалам подписка обязательна.
func RequiresSubscription(user *models.User) bool {
	return user != nil && user.Role == models.RoleProfessional
}

// IsPremiumStudent ученик, чья активная подписка оформлена на студенческий план.
func IsPremiumStudent(user *models.User, subs []models.Subscription, now time.Time) bool {
	if user == nil || user.Role != models.RoleStudent {
		return false
	}
	active, ok := ActiveSubscription(subs, now)
	return ok && active.Plan != nil && active.Plan.TargetRole == models.RoleStudent
}

package models

import "time"

// Notice одноразовое сообщение пользователю (flash), показывается при следующем запросе.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Уровни уведомлений.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// EventKind тип события жизненного цикла подписки, он же routing key в RabbitMQ.
type EventKind string

const (
	EventPurchased EventKind = "subscription.purchased"
	EventCancelled EventKind = "subscription.cancelled"
	EventRenewed   EventKind = "subscription.renewed"
	EventExpiring  EventKind = "subscription.expiring"
)

// LifecycleEvent сообщение, публикуемое в брокер и обрабатываемое sender'ом.
type LifecycleEvent struct {
	Kind       EventKind     `json:"kind"`
	Email      string        `json:"email"`
	FirstName  string        `json:"first_name"`
	Role       Role          `json:"role"`
	PlanName   string        `json:"plan_name"`
	Period     BillingPeriod `json:"period"`
	ExpiresAt  time.Time     `json:"expires_at"`
	AmountPaid int64         `json:"amount_paid"`
}

// NewLifecycleEvent собирает событие о подписке пользователя.
func NewLifecycleEvent(kind EventKind, user *User, sub Subscription) LifecycleEvent {
	ev := LifecycleEvent{
		Kind:       kind,
		Email:      user.Email,
		FirstName:  user.FirstName,
		Role:       user.Role,
		ExpiresAt:  sub.ExpiresAt,
		AmountPaid: sub.AmountPaid,
	}
	if sub.Plan != nil {
		ev.PlanName = sub.Plan.Name
		ev.Period = sub.Plan.Period
	}
	return ev
}

package models

import "time"

// SubscriptionStatus статус подписки.
type SubscriptionStatus string

const (
	StatusPending   SubscriptionStatus = "pending"
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription запись о покупке плана пользователем.
// Строки никогда не удаляются: история строится по всем записям пользователя.
type Subscription struct {
	ID                    int64              `json:"id"`
	UserID                string             `json:"user_id"`
	PlanTypeID            int64              `json:"plan_type_id"`
	Plan                  *PlanType          `json:"plan,omitempty"`
	Status                SubscriptionStatus `json:"status"`
	StartsAt              time.Time          `json:"starts_at"`
	ExpiresAt             time.Time          `json:"expires_at"`
	AmountPaid            int64              `json:"amount_paid"`
	ExternalTransactionID string             `json:"external_transaction_id,omitempty"`
	PaymentMethod         string             `json:"payment_method,omitempty"`
	AutoRenew             bool               `json:"auto_renew"`
	UserCancelled         bool               `json:"user_cancelled"`
	CancelledAt           *time.Time         `json:"cancelled_at,omitempty"`
	RenewedFromID         *int64             `json:"renewed_from_id,omitempty"`
	Notes                 string             `json:"notes,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// HistoryEntry подписка в истории с количеством оставшихся месяцев.
type HistoryEntry struct {
	Subscription
	Active          bool `json:"active"`
	RemainingMonths int  `json:"remaining_months"`
}

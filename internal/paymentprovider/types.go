package paymentprovider

import "time"

// Статусы платежа.
const (
	StatusSucceeded = "succeeded"
	StatusPending   = "pending"
	StatusCanceled  = "canceled"
)

// CreatePaymentRequest запрос на оплату плана.
type CreatePaymentRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	PlanSlug    string `json:"plan_slug" validate:"required"`
	Amount      int64  `json:"amount" validate:"gte=0"`
	Description string `json:"description"`
}

// CreatePaymentResponse результат создания платежа.
type CreatePaymentResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"payment_method"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookPayload уведомление провайдера об изменении статуса платежа.
type WebhookPayload struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

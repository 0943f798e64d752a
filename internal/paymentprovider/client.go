// Package paymentprovider имитирует платёжного провайдера: реальных списаний нет,
// статус платежа задаётся конфигом. Также подписывает и проверяет webhook.
package paymentprovider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// MethodMock способ оплаты, который записывается в подписку.
const MethodMock = "mock"

// SignatureHeader заголовок с подписью webhook.
const SignatureHeader = "X-Api-Signature"

// Client моковый клиент провайдера.
type Client struct {
	status   string
	now      func() time.Time
	validate *validator.Validate
}

// NewClient создаёт клиент, который возвращает платежи со статусом status.
func NewClient(status string) *Client {
	switch status {
	case StatusSucceeded, StatusPending, StatusCanceled:
	default:
		status = StatusSucceeded
	}
	return &Client{status: status, now: time.Now, validate: validator.New()}
}

// CreatePayment «проводит» платёж и возвращает идентификатор транзакции.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	const op = "paymentprovider.CreatePayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := c.now()
	return &CreatePaymentResponse{
		ID:        fmt.Sprintf("mock_%s_%s_%d", req.PlanSlug, shortID(req.UserID), now.UnixNano()),
		Status:    c.status,
		Amount:    req.Amount,
		Method:    MethodMock,
		CreatedAt: now,
	}, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Sign подпись тела webhook: base64(HMAC-SHA256(secret, body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature сравнивает подпись за постоянное время.
func VerifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Package webhook принимает уведомления платёжного провайдера о статусе платежа
// и активирует ожидающие подписки.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/paymentprovider"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

const maxBodySize = 1 << 20

// Service подтверждение оплаты.
type Service interface {
	ConfirmPayment(ctx context.Context, transactionID string) (*models.Subscription, bool, error)
}

// Handler обрабатывает POST /assinatura/webhook/.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Тело подписывается base64(HMAC-SHA256) в заголовке X-Api-Signature.
// @Tags Payments
// @Accept  json
// @Success 200 "Уведомление обработано"
// @Failure 400 "Некорректное тело"
// @Failure 401 "Неверная подпись"
// @Router /assinatura/webhook/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !paymentprovider.VerifySignature(h.webhookSecret, body, r.Header.Get(paymentprovider.SignatureHeader)) {
		log.Warn("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload paymentprovider.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if payload.Object.Status != paymentprovider.StatusSucceeded || payload.Object.ID == "" {
		log.Info("ignored webhook event", slog.String("event", payload.Event),
			slog.String("status", payload.Object.Status))
		w.WriteHeader(http.StatusOK)
		return
	}

	sub, activated, err := h.service.ConfirmPayment(r.Context(), payload.Object.ID)
	if errors.Is(err, storage.ErrSubscriptionNotFound) {
		log.Warn("webhook for unknown payment", slog.String("payment_id", payload.Object.ID))
		response.Fail(w, r, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		log.Error("failed to confirm payment", sl.Err(err), slog.String("payment_id", payload.Object.ID))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully", slog.String("payment_id", payload.Object.ID),
		slog.Int64("subscription_id", sub.ID), slog.Bool("activated", activated))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription_id": sub.ID,
		"activated":       activated,
	}))
}

// Package process оформляет покупку плана через платёжного провайдера.
package process

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/subscription"
)

// Service покупка плана.
type Service interface {
	Purchase(ctx context.Context, user *models.User, planID int64, autoRenew bool) (*models.Subscription, error)
}

// Handler обрабатывает POST /assinatura/processar/{plan_id}/.
type Handler struct {
	log     *slog.Logger
	service Service
	notices response.NoticeStore
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, notices response.NoticeStore) *Handler {
	return &Handler{
		log:     log,
		service: service,
		notices: notices,
	}
}

// ServeHTTP godoc
// @Summary Покупка плана
// @Description Создает платёж и подписку. Поле формы auto_renew включает автопродление.
// @Tags Subscriptions
// @Accept  x-www-form-urlencoded
// @Param plan_id path int true "ID плана"
// @Param auto_renew formData bool false "Автопродление"
// @Success 303 "Перенаправление на профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /assinatura/processar/{plan_id}/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.process"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	planID, err := strconv.ParseInt(chi.URLParam(r, "plan_id"), 10, 64)
	if err != nil || planID <= 0 {
		response.Fail(w, r, http.StatusBadRequest, "invalid plan id")
		return
	}

	sub, err := h.service.Purchase(r.Context(), user, planID, flow.Truthy(r.FormValue("auto_renew")))
	if errors.Is(err, subscription.ErrPaymentDeclined) {
		response.RedirectWithNotice(w, r, log, h.notices, user.ID, flow.CheckoutPath(planID),
			models.Notice{Level: models.NoticeError, Text: "O pagamento foi recusado. Tente novamente."})
		return
	}
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}

	notice := models.Notice{Level: models.NoticeSuccess, Text: "Sua assinatura está ativa."}
	if sub.Status == models.StatusPending {
		notice = models.Notice{Level: models.NoticeInfo, Text: "O pagamento está em processamento. Sua assinatura será ativada em breve."}
	}
	log.Info("plan purchased", sl.UserID(user.ID), slog.Int64("subscription_id", sub.ID))
	response.RedirectWithNotice(w, r, log, h.notices, user.ID, flow.ProfilePath, notice)
}

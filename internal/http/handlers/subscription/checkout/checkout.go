// Package checkout отдаёт страницу оплаты плана с итоговой ценой и экономией.
package checkout

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Service расчёт стоимости плана для пользователя.
type Service interface {
	Checkout(ctx context.Context, user *models.User, planID int64) (*models.PlanQuote, error)
}

// Handler обрабатывает GET /assinatura/checkout/{plan_id}/.
type Handler struct {
	log     *slog.Logger
	service Service
	notices response.NoticeQueue
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, notices response.NoticeQueue) *Handler {
	return &Handler{
		log:     log,
		service: service,
		notices: notices,
	}
}

// ServeHTTP godoc
// @Summary Оплата плана
// @Description Возвращает план, итоговую цену со скидкой и экономию.
// @Tags Subscriptions
// @Produce  json
// @Param plan_id path int true "ID плана"
// @Success 200 {object} response.Response "План к оплате"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /assinatura/checkout/{plan_id}/ [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"
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
		log.Info("invalid plan id", slog.String("plan_id", chi.URLParam(r, "plan_id")))
		response.Fail(w, r, http.StatusBadRequest, "invalid plan id")
		return
	}

	quote, err := h.service.Checkout(r.Context(), user, planID)
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"quote":   quote,
		"notices": response.PendingNotices(r, log, h.notices, user.ID),
	}))
}

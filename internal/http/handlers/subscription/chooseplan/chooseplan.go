// Package chooseplan реализует страницы выбора плана: обычную для любой роли
// и обязательную для профессионалов без активной подписки.
package chooseplan

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/subscription"
)

// Service список планов для пользователя.
type Service interface {
	PlanOptions(ctx context.Context, user *models.User, mandatory bool) ([]models.PlanQuote, error)
}

// Handler отдаёт планы роли пользователя с итоговой ценой.
type Handler struct {
	log       *slog.Logger
	service   Service
	notices   response.NoticeQueue
	mandatory bool
}

// New создает новый Handler. mandatory включает режим обязательного выбора.
func New(log *slog.Logger, service Service, notices response.NoticeQueue, mandatory bool) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		notices:   notices,
		mandatory: mandatory,
	}
}

// ServeHTTP godoc
// @Summary Выбор плана
// @Description Возвращает активные планы для роли пользователя с итоговой ценой и экономией.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Список планов"
// @Success 302 "Перенаправление, если выбор плана сейчас невозможен"
// @Router /assinatura/escolher-plano/ [get]
// @Router /assinatura/escolher-plano-obrigatorio/ [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.chooseplan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	quotes, err := h.service.PlanOptions(r.Context(), user, h.mandatory)
	if errors.Is(err, subscription.ErrNoPlans) {
		log.Warn("no active plans for role", slog.String("role", string(user.Role)))
		notices := append(response.PendingNotices(r, log, h.notices, user.ID), flow.NoPlansNotice)
		render.JSON(w, r, response.OKWithData(map[string]any{
			"mandatory": h.mandatory,
			"plans":     []models.PlanQuote{},
			"notices":   notices,
		}))
		return
	}
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"mandatory": h.mandatory,
		"plans":     quotes,
		"notices":   response.PendingNotices(r, log, h.notices, user.ID),
	}))
}

// Package cancel отменяет активную подписку пользователя.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/entitlement"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Service отмена подписки.
type Service interface {
	Cancel(ctx context.Context, user *models.User) (*models.Subscription, error)
}

// Handler обрабатывает POST /assinatura/cancelar/.
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
// @Summary Отмена подписки
// @Description Отменяет активную подписку. Доступ по ней заканчивается сразу, автопродление выключается.
// @Tags Subscriptions
// @Success 303 "Перенаправление на профиль или, для профессионала, на обязательный выбор плана"
// @Router /assinatura/cancelar/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	sub, err := h.service.Cancel(r.Context(), user)
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}

	log.Info("subscription cancelled", slog.Int64("id", sub.ID))

	// без активной подписки профессионал сразу попадает на обязательный выбор плана
	if entitlement.RequiresSubscription(user) {
		response.RedirectWithNotice(w, r, log, h.notices, user.ID, flow.MandatoryPlansPath, models.Notice{
			Level: models.NoticeWarning,
			Text:  "Assinatura cancelada. Seu acesso profissional foi encerrado, escolha um novo plano para continuar usando o MoVibes.",
		})
		return
	}
	response.RedirectWithNotice(w, r, log, h.notices, user.ID, flow.ProfilePath, models.Notice{
		Level: models.NoticeInfo,
		Text:  "Assinatura cancelada. O acesso Premium foi encerrado e não haverá renovação.",
	})
}

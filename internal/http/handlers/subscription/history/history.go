// Package history отдаёт историю подписок пользователя.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/subscription"
)

// Service история подписок.
type Service interface {
	History(ctx context.Context, user *models.User) (*subscription.History, error)
}

// Handler обрабатывает GET /assinatura/historico/.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История подписок
// @Description Все подписки пользователя, новые первыми, с оставшимися месяцами и текущей подпиской.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "История"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /assinatura/historico/ [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	hist, err := h.service.History(r.Context(), user)
	if err != nil {
		log.Error("failed to load history", sl.Err(err), sl.UserID(user.ID))
		response.Fail(w, r, http.StatusInternalServerError, "could not load history")
		return
	}
	render.JSON(w, r, response.OKWithData(hist))
}

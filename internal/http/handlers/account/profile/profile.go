// Package profile отдаёт страницу профиля: пользователя, активную подписку
// и накопленные одноразовые уведомления.
package profile

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

// Service состояние подписки пользователя.
type Service interface {
	Overview(ctx context.Context, user *models.User) (*subscription.Overview, error)
}

// NoticeReader забирает накопленные уведомления.
type NoticeReader interface {
	PopNotices(ctx context.Context, userID string) ([]models.Notice, error)
}

// Handler обрабатывает GET страницы профиля.
type Handler struct {
	log     *slog.Logger
	service Service
	notices NoticeReader
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, notices NoticeReader) *Handler {
	return &Handler{
		log:     log,
		service: service,
		notices: notices,
	}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает пользователя, активную подписку, признак премиум-ученика и уведомления.
// @Tags Accounts
// @Produce  json
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /accounts/profile/ [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	overview, err := h.service.Overview(r.Context(), user)
	if err != nil {
		log.Error("failed to load subscription overview", sl.Err(err), sl.UserID(user.ID))
		response.Fail(w, r, http.StatusInternalServerError, "could not load profile")
		return
	}

	notices, err := h.notices.PopNotices(r.Context(), user.ID)
	if err != nil {
		log.Warn("failed to read notices", sl.Err(err), sl.UserID(user.ID))
	}
	if notices == nil {
		notices = []models.Notice{}
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":         user,
		"subscription": overview,
		"notices":      notices,
	}))
}

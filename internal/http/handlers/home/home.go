// Package home отдаёт главную страницу. До неё доходят только пользователи,
// прошедшие гейт, и анонимные посетители.
package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// NoticeReader забирает накопленные уведомления.
type NoticeReader interface {
	PopNotices(ctx context.Context, userID string) ([]models.Notice, error)
}

type Handler struct {
	log     *slog.Logger
	notices NoticeReader
}

func New(log *slog.Logger, notices NoticeReader) *Handler {
	return &Handler{
		log:     log,
		notices: notices,
	}
}

// ServeHTTP godoc
// @Summary Главная страница
// @Tags Home
// @Produce  json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"authenticated": false,
		}))
		return
	}

	notices, err := h.notices.PopNotices(r.Context(), user.ID)
	if err != nil {
		h.log.Warn("failed to read notices", slog.String("op", "handlers.home"), sl.Err(err), sl.UserID(user.ID))
	}
	if notices == nil {
		notices = []models.Notice{}
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"authenticated": true,
		"user":          user,
		"notices":       notices,
	}))
}

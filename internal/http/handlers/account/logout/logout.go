// Package logout удаляет cookie сессии.
package logout

import (
	"net/http"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
)

// Handler завершает сессию.
type Handler struct {
	cookieName string
}

// New создает новый Handler.
func New(cookieName string) *Handler {
	return &Handler{cookieName: cookieName}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Accounts
// @Success 303 "Перенаправление на страницу входа"
// @Router /accounts/logout/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middlewarectx.ClearSessionCookie(w, h.cookieName)
	response.Redirect(w, r, flow.LoginPath)
}

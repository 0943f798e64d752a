// Package login реализует HTTP-обработчик входа по email и паролю.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/account"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	cookieName string
	cookieTTL  time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookieName string, cookieTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль, выставляет cookie сессии и возвращает JWT.
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Param request body models.LoginRequest true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts/login/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		log.Info("invalid credentials")
		response.Fail(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	middlewarectx.SetSessionCookie(w, h.cookieName, token, h.cookieTTL)
	log.Info("login success", sl.UserID(user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}

// Package signup реализует HTTP-обработчик регистрации по email и паролю.
//
// Принимает JSON или форму, валидирует данные, создаёт пользователя через сервис,
// выставляет cookie сессии и сообщает, какой шаг онбординга следующий.
package signup

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
	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
}

// Handler обрабатывает регистрацию.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	cookieName string
	cookieTTL  time.Duration
}

// New создает новый Handler.
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
// @Summary Регистрация пользователя
// @Description Создает пользователя по email и паролю. Необязательное поле role сразу фиксирует тип профиля.
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Param request body models.RegisterRequest true "Данные регистрации"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts/signup/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.signup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterRequest
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == models.RoleUnset {
		// подсказка роли со страницы лендинга
		req.Role = models.Role(r.URL.Query().Get("next"))
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, token, err := h.service.Register(r.Context(), req)
	if errors.Is(err, storage.ErrUserExists) {
		response.Fail(w, r, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "could not register user")
		return
	}

	middlewarectx.SetSessionCookie(w, h.cookieName, token, h.cookieTTL)
	log.Info("user signed up", sl.UserID(user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":  user,
		"token": token,
		"next":  gate.Target(gate.Decide(user, nil, time.Now())),
	}))
}

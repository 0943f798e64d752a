// Package selectrole реализует страницу выбора типа профиля: ученик или профессионал.
package selectrole

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/movibes/internal/http/handlers/flow"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/account"
)

// Request выбранная роль.
type Request struct {
	Role models.Role `json:"role" form:"role" validate:"required,oneof=student professional"`
}

// Service описывает выбор роли.
type Service interface {
	ChooseRole(ctx context.Context, user *models.User, role models.Role) error
}

// Handler обрабатывает GET и POST страницы выбора роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	notices  response.NoticeQueue
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, notices response.NoticeQueue) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		notices:  notices,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выбор типа профиля
// @Description GET возвращает доступные роли, POST фиксирует роль и ведёт на заполнение профиля.
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Param request body Request false "Выбранная роль"
// @Success 200 {object} response.Response "Доступные роли"
// @Success 303 "Перенаправление на заполнение профиля"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts/select-profile-type/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.selectrole"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if user.RoleChosen() {
		response.Redirect(w, r, flow.ProfilePathFor(user.Role))
		return
	}

	if r.Method != http.MethodPost {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"roles":   []models.Role{models.RoleStudent, models.RoleProfessional},
			"notices": response.PendingNotices(r, log, h.notices, user.ID),
		}))
		return
	}

	var req Request
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.ChooseRole(r.Context(), user, req.Role)
	if errors.Is(err, account.ErrInvalidRole) {
		response.Fail(w, r, http.StatusUnprocessableEntity, "invalid role")
		return
	}
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}
	response.Redirect(w, r, flow.ProfilePathFor(req.Role))
}

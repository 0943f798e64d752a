// Package studentprofile реализует страницу завершения профиля ученика.
package studentprofile

import (
	"context"
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
)

// Service сохраняет профиль ученика.
type Service interface {
	CompleteStudentProfile(ctx context.Context, user *models.User, form models.StudentProfileForm) (*models.User, error)
}

// Handler обрабатывает форму профиля ученика.
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
// @Summary Профиль ученика
// @Description GET возвращает текущие данные, POST сохраняет профиль и отмечает его заполненным.
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Param request body models.StudentProfileForm false "Данные профиля"
// @Success 200 {object} response.Response "Текущий профиль"
// @Success 303 "Перенаправление после сохранения"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts/complete-profile/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.studentprofile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if user.Role != models.RoleStudent {
		target := flow.SelectRolePath
		if user.RoleChosen() {
			target = flow.ProfilePathFor(user.Role)
		}
		response.Redirect(w, r, target)
		return
	}

	if r.Method != http.MethodPost {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"user":    user,
			"student": user.Student,
			"notices": response.PendingNotices(r, log, h.notices, user.ID),
		}))
		return
	}

	var form models.StudentProfileForm
	if err := render.Decode(r, &form); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.CompleteStudentProfile(r.Context(), user, form)
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}

	target := flow.HomePath
	if updated.Student != nil && updated.Student.AccountTier == models.TierPremium {
		target = flow.PlansPath
	}
	response.RedirectWithNotice(w, r, log, h.notices, user.ID, target,
		models.Notice{Level: models.NoticeSuccess, Text: "Perfil salvo."})
}

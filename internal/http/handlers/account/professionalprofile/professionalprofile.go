// Package professionalprofile реализует страницу завершения профиля профессионала.
// После сохранения профессионал без активной подписки попадает на обязательный выбор плана.
package professionalprofile

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
	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Service сохраняет профиль профессионала.
type Service interface {
	CompleteProfessionalProfile(ctx context.Context, user *models.User,
		form models.ProfessionalProfileForm) (*models.User, error)
}

// Decider решает, куда вести пользователя после сохранения.
type Decider interface {
	Decide(ctx context.Context, user *models.User) (gate.Action, error)
}

// Handler обрабатывает форму профиля профессионала.
type Handler struct {
	log      *slog.Logger
	service  Service
	decider  Decider
	notices  response.NoticeQueue
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, decider Decider, notices response.NoticeQueue) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		decider:  decider,
		notices:  notices,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Профиль профессионала
// @Description GET возвращает текущие данные, POST сохраняет профиль и ведёт на профиль или на обязательный выбор плана.
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Param request body models.ProfessionalProfileForm false "Данные профиля"
// @Success 200 {object} response.Response "Текущий профиль"
// @Success 303 "Перенаправление после сохранения"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts/complete-profile-profissional/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.professionalprofile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if user.Role != models.RoleProfessional {
		target := flow.SelectRolePath
		if user.RoleChosen() {
			target = flow.ProfilePathFor(user.Role)
		}
		response.Redirect(w, r, target)
		return
	}

	if r.Method != http.MethodPost {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"user":         user,
			"professional": user.Professional,
			"notices":      response.PendingNotices(r, log, h.notices, user.ID),
		}))
		return
	}

	var form models.ProfessionalProfileForm
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

	updated, err := h.service.CompleteProfessionalProfile(r.Context(), user, form)
	if err != nil {
		flow.Fail(w, r, log, h.notices, user, err)
		return
	}

	action, err := h.decider.Decide(r.Context(), updated)
	if err != nil {
		log.Error("failed to evaluate access", sl.Err(err), sl.UserID(user.ID))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if action == gate.Allow {
		response.RedirectWithNotice(w, r, log, h.notices, user.ID, flow.ProfilePath,
			models.Notice{Level: models.NoticeSuccess, Text: "Perfil salvo."})
		return
	}
	response.RedirectWithNotice(w, r, log, h.notices, user.ID, gate.Target(action), gate.Notice(action))
}

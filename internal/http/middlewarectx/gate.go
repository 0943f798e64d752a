package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

// AllowedPaths префиксы путей, доступных без прохождения гейта: вход, шаги онбординга,
// выбор и оплата плана, служебные эндпоинты.
var AllowedPaths = []string{
	"/accounts/login/",
	"/accounts/signup/",
	"/accounts/logout/",
	"/accounts/select-profile-type/",
	"/accounts/complete-profile/",
	"/accounts/complete-profile-profissional/",
	"/assinatura/escolher-plano/",
	"/assinatura/escolher-plano-obrigatorio/",
	"/assinatura/checkout/",
	"/assinatura/processar/",
	"/assinatura/webhook/",
	"/static/",
	"/media/",
	"/healthz",
	"/metrics",
	"/docs/",
}

// Decider определяет следующий обязательный шаг пользователя.
type Decider interface {
	NextAction(ctx context.Context, userID string) (gate.Action, *models.User, error)
}

func allowed(path string) bool {
	for _, p := range AllowedPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AccessGate перенаправляет пользователя на незавершённый шаг онбординга или на
// обязательный выбор плана. Состояние пользователя не меняет, кроме очереди уведомлений.
func AccessGate(decider Decider, notices response.NoticeStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AccessGate"

			userID, ok := UserIDFromContext(r.Context())
			if !ok || isStaff(r.Context()) || allowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			action, user, err := decider.NextAction(r.Context(), userID)
			if errors.Is(err, storage.ErrUserNotFound) {
				// токен пережил пользователя
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserID, "")))
				return
			}
			if err != nil {
				log.Error("failed to evaluate access", sl.Err(err), sl.UserID(userID))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			if action == gate.Allow {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}

			log.Info("redirecting to required step", sl.UserID(userID), slog.String("action", string(action)))
			response.RedirectWithNotice(w, r, log, notices, userID, gate.Target(action), gate.Notice(action))
		})
	}
}

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
	"github.com/magabrotheeeer/movibes/internal/lib/jwt"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

// TokenParser проверяет JWT и возвращает его claims.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// UserLoader загружает пользователя по ID.
type UserLoader interface {
	User(ctx context.Context, userID string) (*models.User, error)
}

// Authenticate читает токен из заголовка Authorization (Bearer) или из cookie cookieName.
// Запрос без токена или с невалидным токеном проходит дальше как анонимный:
// решать, нужен ли вход, будут RequireUser и AccessGate.
func Authenticate(parser TokenParser, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			tokenStr := bearerToken(r)
			if tokenStr == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					tokenStr = c.Value
				}
			}
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Debug("invalid or expired token",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Staff, claims.Staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireUser пропускает только аутентифицированные запросы и кладёт пользователя
// в контекст. Если AccessGate уже загрузил пользователя, повторного запроса в базу нет.
func RequireUser(loader UserLoader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireUser"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if _, ok := UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			user, err := loader.User(r.Context(), userID)
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Info("token refers to unknown user", sl.UserID(userID))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			if err != nil {
				log.Error("failed to load user", sl.Err(err), sl.UserID(userID))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

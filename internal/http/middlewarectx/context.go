// Package middlewarectx содержит HTTP middleware MoVibes: аутентификацию по JWT,
// загрузку текущего пользователя, гейт онбординга и ограничение частоты запросов.
//
// Результаты работы middleware кладутся в контекст запроса по ключам этого пакета.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/movibes/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID - ключ для идентификатора пользователя из токена.
	UserID Key = "user_id"
	// Staff - ключ для признака сотрудника из токена.
	Staff Key = "staff"
	// CurrentUser - ключ для загруженного *models.User.
	CurrentUser Key = "current_user"
)

// UserIDFromContext возвращает идентификатор аутентифицированного пользователя.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

// UserFromContext возвращает пользователя, загруженного RequireUser или AccessGate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(CurrentUser).(*models.User)
	return u, ok && u != nil
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, CurrentUser, user)
}

func isStaff(ctx context.Context) bool {
	staff, _ := ctx.Value(Staff).(bool)
	return staff
}

// Package sl содержит хелперы для логгера slog.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil пишет пустую строку,
// чтобы лог-вызов в ветке без ошибки не падал.
//
//	log.Error("failed to load plans", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID атрибут с идентификатором пользователя.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

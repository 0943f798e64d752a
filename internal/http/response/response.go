// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов и перенаправлений HTTP‑обработчиков.
package response

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status - статус запроса ("OK" или "Error").
// Поле Error - текст ошибки (опционально, при неуспехе).
// Поле Fields - ошибки отдельных полей формы.
// Поле Data - данные ответа (опционально, при успехе).
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Data   any               `json:"data,omitempty"`
}

// ErrorResponse - структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK - значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError - значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение превращается в человеко‑читаемый текст для своего поля.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string]string, len(errs))
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("field %s is a required field", err.Field())
		case "email":
			msg = fmt.Sprintf("field %s must be a valid email", err.Field())
		case "min":
			msg = fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param())
		case "gte", "lte":
			msg = fmt.Sprintf("field %s is out of range", err.Field())
		default:
			msg = fmt.Sprintf("field %s is not valid", err.Field())
		}
		fields[err.Field()] = msg
		msgs = append(msgs, msg)
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
		Fields: fields,
	}
}

// Fail пишет JSON-ошибку с кодом status.
func Fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}

// Redirect перенаправляет клиента на target. HTMX-запросы получают заголовок HX-Redirect
// и код 200, GET и HEAD - 302, остальные методы - 303, чтобы повтор шёл уже GET-запросом.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	code := http.StatusSeeOther
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		code = http.StatusFound
	}
	http.Redirect(w, r, target, code)
}

// NoticeStore хранилище одноразовых сообщений пользователю.
type NoticeStore interface {
	PushNotice(ctx context.Context, userID string, n models.Notice) error
}

// NoticeReader забирает накопленные сообщения пользователя.
type NoticeReader interface {
	PopNotices(ctx context.Context, userID string) ([]models.Notice, error)
}

// NoticeQueue хранилище, в которое сообщения кладут перед перенаправлением
// и из которого их забирает страница назначения.
type NoticeQueue interface {
	NoticeStore
	NoticeReader
}

// PendingNotices забирает сообщения пользователя для ответа. Ошибка хранилища
// только логируется, страница отдаётся с пустым списком.
func PendingNotices(r *http.Request, log *slog.Logger, notices NoticeReader, userID string) []models.Notice {
	if notices == nil {
		return []models.Notice{}
	}
	list, err := notices.PopNotices(r.Context(), userID)
	if err != nil {
		log.Warn("failed to read notices", sl.Err(err), sl.UserID(userID))
	}
	if list == nil {
		list = []models.Notice{}
	}
	return list
}

// RedirectWithNotice сохраняет сообщение для следующего запроса и перенаправляет.
// Если сообщение сохранить не удалось, перенаправление всё равно выполняется.
func RedirectWithNotice(w http.ResponseWriter, r *http.Request, log *slog.Logger, notices NoticeStore,
	userID, target string, n models.Notice) {
	if notices != nil && n.Text != "" {
		if err := notices.PushNotice(r.Context(), userID, n); err != nil {
			log.Warn("failed to store notice", sl.Err(err), sl.UserID(userID))
		}
	}
	Redirect(w, r, target)
}

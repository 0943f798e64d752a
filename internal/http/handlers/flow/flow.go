// Package flow содержит пути страниц онбординга и подписки и общую обработку
// ошибок сервисов: нарушения бизнес-правил превращаются в перенаправление с уведомлением,
// а не в 500.
package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/movibes/internal/http/response"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/account"
	"github.com/magabrotheeeer/movibes/internal/services/subscription"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

// Пути страниц.
const (
	HomePath                = "/"
	LoginPath               = "/accounts/login/"
	SelectRolePath          = "/accounts/select-profile-type/"
	StudentProfilePath      = "/accounts/complete-profile/"
	ProfessionalProfilePath = "/accounts/complete-profile-profissional/"
	ProfilePath             = "/accounts/profile/"
	PlansPath               = "/assinatura/escolher-plano/"
	MandatoryPlansPath      = "/assinatura/escolher-plano-obrigatorio/"
	HistoryPath             = "/assinatura/historico/"
)

// CheckoutPath страница оплаты плана.
func CheckoutPath(planID int64) string {
	return fmt.Sprintf("/assinatura/checkout/%d/", planID)
}

// ProfilePathFor страница заполнения профиля для роли.
func ProfilePathFor(role models.Role) string {
	if role == models.RoleProfessional {
		return ProfessionalProfilePath
	}
	return StudentProfilePath
}

// Truthy разбирает значение чекбокса формы.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// NoPlansNotice показывается вместо списка, когда в каталоге нет активных планов.
var NoPlansNotice = models.Notice{
	Level: models.NoticeWarning,
	Text:  "Nenhum plano disponível no momento. Tente novamente mais tarde.",
}

func info(text string) models.Notice {
	return models.Notice{Level: models.NoticeInfo, Text: text}
}

// Fail отвечает на ошибку сервиса. Ошибки бизнес-правил ведут на нужную страницу
// с уведомлением, отсутствующие записи дают 404, остальное 500.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, notices response.NoticeStore,
	user *models.User, err error) {
	switch {
	case errors.Is(err, subscription.ErrRoleNotChosen):
		response.RedirectWithNotice(w, r, log, notices, user.ID, SelectRolePath,
			info("Escolha o tipo de perfil para continuar."))
	case errors.Is(err, subscription.ErrProfessionalOnly):
		response.RedirectWithNotice(w, r, log, notices, user.ID, PlansPath,
			info("Esta página é exclusiva para profissionais."))
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		response.RedirectWithNotice(w, r, log, notices, user.ID, ProfilePath,
			info("Você já tem uma assinatura ativa."))
	case errors.Is(err, subscription.ErrPurchasePending):
		response.RedirectWithNotice(w, r, log, notices, user.ID, ProfilePath,
			info("Seu pagamento anterior ainda está em processamento."))
	case errors.Is(err, subscription.ErrPlanRoleMismatch):
		response.RedirectWithNotice(w, r, log, notices, user.ID, PlansPath,
			models.Notice{Level: models.NoticeError, Text: "Este plano não está disponível para o seu tipo de perfil."})
	case errors.Is(err, subscription.ErrNoActiveSubscription):
		response.RedirectWithNotice(w, r, log, notices, user.ID, ProfilePath,
			info("Você não tem uma assinatura ativa."))
	case errors.Is(err, account.ErrRoleAlreadyChosen):
		response.RedirectWithNotice(w, r, log, notices, user.ID, ProfilePathFor(user.Role),
			info("O tipo de perfil já foi definido."))
	case errors.Is(err, account.ErrWrongRole):
		target := SelectRolePath
		if user.RoleChosen() {
			target = ProfilePathFor(user.Role)
		}
		response.Redirect(w, r, target)
	case errors.Is(err, storage.ErrPlanNotFound):
		response.Fail(w, r, http.StatusNotFound, "plan not found")
	case errors.Is(err, storage.ErrSubscriptionNotFound):
		response.Fail(w, r, http.StatusNotFound, "subscription not found")
	default:
		log.Error("request failed", sl.Err(err), sl.UserID(user.ID))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Package gate решает, какой обязательный шаг онбординга или оплаты
// должен пройти пользователь, прежде чем получит доступ к приложению.
package gate

import (
	"time"

	"github.com/magabrotheeeer/movibes/internal/lib/entitlement"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Action следующий обязательный шаг пользователя.
type Action string

const (
	Allow                       Action = "allow"
	ChooseRole                  Action = "choose_role"
	CompleteStudentProfile      Action = "complete_student_profile"
	CompleteProfessionalProfile Action = "complete_professional_profile"
	ChooseMandatoryPlan         Action = "choose_mandatory_plan"
)

// Decide возвращает ровно одно действие, проверяя условия в фиксированном порядке:
// выбор роли, заполнение профиля, обязательная подписка, доступ.
func Decide(user *models.User, subs []models.Subscription, now time.Time) Action {
	if !user.RoleChosen() {
		return ChooseRole
	}
	if !user.ProfileComplete {
		if user.Role == models.RoleProfessional {
			return CompleteProfessionalProfile
		}
		return CompleteStudentProfile
	}
	if entitlement.RequiresSubscription(user) && !entitlement.HasActiveSubscription(subs, now) {
		return ChooseMandatoryPlan
	}
	return Allow
}

// NeedsSubscriptions сообщает, нужны ли подписки для решения.
// До выбора роли и заполнения профиля, а также для учеников их можно не загружать.
func NeedsSubscriptions(user *models.User) bool {
	return user.RoleChosen() && user.ProfileComplete && entitlement.RequiresSubscription(user)
}

// Target путь страницы, на которой пользователь выполняет действие.
func Target(a Action) string {
	switch a {
	case ChooseRole:
		return "/accounts/select-profile-type/"
	case CompleteStudentProfile:
		return "/accounts/complete-profile/"
	case CompleteProfessionalProfile:
		return "/accounts/complete-profile-profissional/"
	case ChooseMandatoryPlan:
		return "/assinatura/escolher-plano-obrigatorio/"
	}
	return ""
}

// Notice сообщение, объясняющее пользователю причину перенаправления.
func Notice(a Action) models.Notice {
	switch a {
	case ChooseRole:
		return models.Notice{Level: models.NoticeInfo, Text: "Escolha o tipo de perfil para continuar."}
	case CompleteStudentProfile, CompleteProfessionalProfile:
		return models.Notice{Level: models.NoticeInfo, Text: "Complete seu perfil para continuar."}
	case ChooseMandatoryPlan:
		return models.Notice{
			Level: models.NoticeWarning,
			Text:  "Profissionais precisam de uma assinatura ativa para usar o MoVibes. Escolha um plano para continuar.",
		}
	}
	return models.Notice{}
}

// Package subscription содержит бизнес-логику оформления, отмены, продления
// и подтверждения оплаты подписок.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/movibes/internal/lib/entitlement"
	"github.com/magabrotheeeer/movibes/internal/lib/lifecycle"
	"github.com/magabrotheeeer/movibes/internal/lib/month"
	"github.com/magabrotheeeer/movibes/internal/lib/pricing"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/metrics"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/paymentprovider"
)

var (
	ErrRoleNotChosen        = errors.New("role not chosen")
	ErrProfessionalOnly     = errors.New("mandatory plans are available to professionals only")
	ErrAlreadySubscribed    = errors.New("user already has an active subscription")
	ErrNoPlans              = errors.New("no plans available")
	ErrPlanRoleMismatch     = errors.New("plan is not available for user role")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrPurchasePending      = errors.New("previous purchase is awaiting payment confirmation")
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	CancelSubscription(ctx context.Context, userID string, id int64, now time.Time) error
	GetSubscriptionByTransaction(ctx context.Context, transactionID string) (*models.Subscription, error)
	ActivateSubscription(ctx context.Context, id int64, transactionID string) (bool, error)
	RenewSubscription(ctx context.Context, sourceID int64,
		build func(models.Subscription) *models.Subscription) (*models.Subscription, error)
	SetTransaction(ctx context.Context, id int64, transactionID string) error
	SetAccountTier(ctx context.Context, userID string, tier models.AccountTier) error
}

// Catalog каталог планов.
type Catalog interface {
	GetPlan(ctx context.Context, id int64) (*models.PlanType, error)
	Quotes(ctx context.Context, role models.Role) ([]models.PlanQuote, error)
	Quote(ctx context.Context, plan models.PlanType) (models.PlanQuote, error)
}

// PaymentProvider создаёт платежи.
type PaymentProvider interface {
	CreatePayment(ctx context.Context,
		req paymentprovider.CreatePaymentRequest) (*paymentprovider.CreatePaymentResponse, error)
}

// Publisher публикует события жизненного цикла.
type Publisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// Overview состояние доступа пользователя для страницы профиля.
type Overview struct {
	Active               *models.Subscription `json:"active,omitempty"`
	PremiumStudent       bool                 `json:"premium_student"`
	RequiresSubscription bool                 `json:"requires_subscription"`
}

// History все подписки пользователя, новые первыми, и текущая активная.
type History struct {
	Current *models.Subscription  `json:"current,omitempty"`
	Entries []models.HistoryEntry `json:"entries"`
}

// SubscriptionService реализует жизненный цикл подписок.
type SubscriptionService struct {
	repo      Repository
	catalog   Catalog
	payments  PaymentProvider
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// publisher и m могут быть nil.
func NewSubscriptionService(repo Repository, catalog Catalog, payments PaymentProvider,
	publisher Publisher, m *metrics.Metrics, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		catalog:   catalog,
		payments:  payments,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Overview возвращает активную подписку пользователя и признаки доступа.
func (s *SubscriptionService) Overview(ctx context.Context, user *models.User) (*Overview, error) {
	subs, err := s.repo.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ov := &Overview{
		PremiumStudent:       entitlement.IsPremiumStudent(user, subs, now),
		RequiresSubscription: entitlement.RequiresSubscription(user),
	}
	if active, ok := entitlement.ActiveSubscription(subs, now); ok {
		ov.Active = active
	}
	return ov, nil
}

// PlanOptions возвращает планы, доступные пользователю. mandatory соответствует
// странице обязательного выбора плана, которая есть только у профессионалов.
func (s *SubscriptionService) PlanOptions(ctx context.Context, user *models.User, mandatory bool) ([]models.PlanQuote, error) {
	if !user.RoleChosen() {
		return nil, ErrRoleNotChosen
	}
	if mandatory && user.Role != models.RoleProfessional {
		return nil, ErrProfessionalOnly
	}
	if err := s.ensureNotSubscribed(ctx, user); err != nil {
		return nil, err
	}
	quotes, err := s.catalog.Quotes(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNoPlans
	}
	return quotes, nil
}

// Checkout возвращает план к оплате с итоговой ценой и экономией.
func (s *SubscriptionService) Checkout(ctx context.Context, user *models.User, planID int64) (*models.PlanQuote, error) {
	plan, err := s.purchasable(ctx, user, planID)
	if err != nil {
		return nil, err
	}
	quote, err := s.catalog.Quote(ctx, *plan)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Purchase оплачивает план через провайдера и сохраняет подписку.
// Если провайдер ещё не подтвердил оплату, подписка сохраняется в статусе pending
// и активируется вебхуком.
func (s *SubscriptionService) Purchase(ctx context.Context, user *models.User, planID int64,
	autoRenew bool) (*models.Subscription, error) {
	plan, err := s.purchasable(ctx, user, planID)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.CreatePayment(ctx, paymentprovider.CreatePaymentRequest{
		UserID:      user.ID,
		PlanSlug:    plan.Slug,
		Amount:      pricing.EffectivePrice(*plan),
		Description: plan.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if payment.Status == paymentprovider.StatusCanceled {
		s.log.Warn("payment declined", sl.UserID(user.ID), slog.String("payment_id", payment.ID))
		return nil, ErrPaymentDeclined
	}

	sub := lifecycle.Purchase(lifecycle.PurchaseParams{
		UserID:                user.ID,
		Plan:                  *plan,
		ExternalTransactionID: payment.ID,
		PaymentMethod:         payment.Method,
		AutoRenew:             autoRenew,
	}, s.now())
	if payment.Status == paymentprovider.StatusPending {
		sub.Status = models.StatusPending
	}

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id

	s.log.Info("subscription purchased", sl.UserID(user.ID), slog.Int64("id", id),
		slog.String("plan", plan.Slug), slog.String("status", string(sub.Status)))

	if sub.Status == models.StatusActive {
		s.afterActivation(ctx, user, sub, models.EventPurchased, "purchase")
	}
	return &sub, nil
}

// Cancel отменяет активную подписку пользователя. Доступ по ней заканчивается сразу,
// expires_at остаётся в истории.
func (s *SubscriptionService) Cancel(ctx context.Context, user *models.User) (*models.Subscription, error) {
	subs, err := s.repo.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active, ok := entitlement.ActiveSubscription(subs, now)
	if !ok {
		return nil, ErrNoActiveSubscription
	}
	sub := *active
	if err := s.repo.CancelSubscription(ctx, user.ID, sub.ID, now); err != nil {
		return nil, err
	}
	lifecycle.Cancel(&sub, now)

	s.log.Info("subscription cancelled", sl.UserID(user.ID), slog.Int64("id", sub.ID))
	s.metrics.Transition("cancel")
	s.publish(ctx, models.NewLifecycleEvent(models.EventCancelled, user, sub))
	return &sub, nil
}

// History возвращает все подписки пользователя с количеством оставшихся месяцев.
func (s *SubscriptionService) History(ctx context.Context, user *models.User) (*History, error) {
	subs, err := s.repo.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	h := &History{Entries: make([]models.HistoryEntry, 0, len(subs))}
	if active, ok := entitlement.ActiveSubscription(subs, now); ok {
		h.Current = active
	}
	for _, sub := range subs {
		entry := models.HistoryEntry{
			Subscription: sub,
			Active:       entitlement.IsActive(sub, now),
		}
		if sub.Status == models.StatusActive || sub.Status == models.StatusPending {
			entry.RemainingMonths = month.RemainingMonths(sub.StartsAt, sub.ExpiresAt, now)
		}
		h.Entries = append(h.Entries, entry)
	}
	return h, nil
}

// ConfirmPayment активирует pending подписку по идентификатору платежа.
// Повторное подтверждение ничего не меняет и возвращает activated=false.
func (s *SubscriptionService) ConfirmPayment(ctx context.Context,
	transactionID string) (sub *models.Subscription, activated bool, err error) {
	sub, err = s.repo.GetSubscriptionByTransaction(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}
	activated, err = s.repo.ActivateSubscription(ctx, sub.ID, transactionID)
	if err != nil {
		return nil, false, err
	}
	if !activated {
		return sub, false, nil
	}
	lifecycle.Activate(sub, transactionID)

	user, err := s.repo.GetUserByID(ctx, sub.UserID)
	if err != nil {
		s.log.Error("failed to load user for activated subscription", sl.Err(err), slog.Int64("id", sub.ID))
		return sub, true, nil
	}
	kind := models.EventPurchased
	if sub.RenewedFromID != nil {
		kind = models.EventRenewed
	}
	s.log.Info("subscription activated", sl.UserID(user.ID), slog.Int64("id", sub.ID))
	s.afterActivation(ctx, user, *sub, kind, "activate")
	return sub, true, nil
}

// Renew продлевает подписку sourceID и оплачивает продление. Если подписка уже
// продлена или не может быть продлена, возвращает nil без ошибки.
func (s *SubscriptionService) Renew(ctx context.Context, sourceID int64) (*models.Subscription, error) {
	next, err := s.repo.RenewSubscription(ctx, sourceID, func(src models.Subscription) *models.Subscription {
		if src.Plan == nil {
			return nil
		}
		return lifecycle.Renewal(src, *src.Plan)
	})
	if err != nil || next == nil {
		return nil, err
	}
	s.metrics.Transition("renew")
	s.log.Info("subscription renewal created", sl.UserID(next.UserID),
		slog.Int64("id", next.ID), slog.Int64("renewed_from", sourceID))

	req := paymentprovider.CreatePaymentRequest{UserID: next.UserID, Amount: next.AmountPaid}
	if next.Plan != nil {
		req.PlanSlug = next.Plan.Slug
		req.Description = next.Plan.Name
	}
	payment, err := s.payments.CreatePayment(ctx, req)
	if err != nil {
		return next, fmt.Errorf("create renewal payment: %w", err)
	}

	switch payment.Status {
	case paymentprovider.StatusSucceeded:
		if _, err := s.repo.ActivateSubscription(ctx, next.ID, payment.ID); err != nil {
			return next, err
		}
		lifecycle.Activate(next, payment.ID)
		user, err := s.repo.GetUserByID(ctx, next.UserID)
		if err != nil {
			return next, err
		}
		s.afterActivation(ctx, user, *next, models.EventRenewed, "activate")
	case paymentprovider.StatusPending:
		if err := s.repo.SetTransaction(ctx, next.ID, payment.ID); err != nil {
			return next, err
		}
		next.ExternalTransactionID = payment.ID
	default:
		s.log.Warn("renewal payment declined", sl.UserID(next.UserID), slog.Int64("id", next.ID))
		return next, ErrPaymentDeclined
	}
	return next, nil
}

func (s *SubscriptionService) purchasable(ctx context.Context, user *models.User, planID int64) (*models.PlanType, error) {
	if !user.RoleChosen() {
		return nil, ErrRoleNotChosen
	}
	plan, err := s.catalog.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.TargetRole != user.Role {
		return nil, ErrPlanRoleMismatch
	}
	if err := s.ensureNotSubscribed(ctx, user); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *SubscriptionService) ensureNotSubscribed(ctx context.Context, user *models.User) error {
	subs, err := s.repo.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	now := s.now()
	if entitlement.HasActiveSubscription(subs, now) {
		return ErrAlreadySubscribed
	}
	if _, ok := entitlement.PendingPurchase(subs, now); ok {
		return ErrPurchasePending
	}
	return nil
}

// afterActivation отмечает премиум-аккаунт ученика, учитывает переход и публикует событие.
// Ошибки здесь только логируются: подписка уже сохранена.
func (s *SubscriptionService) afterActivation(ctx context.Context, user *models.User,
	sub models.Subscription, kind models.EventKind, transition string) {
	if user.Role == models.RoleStudent {
		if err := s.repo.SetAccountTier(ctx, user.ID, models.TierPremium); err != nil {
			s.log.Error("failed to set account tier", sl.Err(err), sl.UserID(user.ID))
		}
	}
	s.metrics.Transition(transition)
	s.publish(ctx, models.NewLifecycleEvent(kind, user, sub))
}

func (s *SubscriptionService) publish(ctx context.Context, event models.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish lifecycle event", slog.String("kind", string(event.Kind)), sl.Err(err))
	}
}

// Package scheduler выполняет периодические задачи над подписками:
// напоминания об окончании, автопродление и перевод просроченных в expired.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/movibes/internal/config"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/metrics"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// reminderLead за сколько до окончания подписки отправляется напоминание.
const reminderLead = 24 * time.Hour

// SubscriptionRepository методы хранилища, нужные планировщику.
type SubscriptionRepository interface {
	FindRenewable(ctx context.Context, before time.Time) ([]models.Subscription, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Renewer продлевает подписку.
type Renewer interface {
	Renew(ctx context.Context, sourceID int64) (*models.Subscription, error)
}

// Publisher публикует события жизненного цикла.
type Publisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// SchedulerService запускает задачи по расписанию из config.Scheduler.
type SchedulerService struct {
	repo      SubscriptionRepository
	renewer   Renewer
	publisher Publisher
	metrics   *metrics.Metrics
	cfg       config.Scheduler
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, renewer Renewer, publisher Publisher,
	m *metrics.Metrics, cfg config.Scheduler, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		renewer:   renewer,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run выполняет все задачи сразу и затем по своим интервалам, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.RemindExpiring(ctx)
	s.RenewDue(ctx)
	s.ExpireOverdue(ctx)

	reminders := time.NewTicker(s.cfg.ReminderInterval)
	defer reminders.Stop()
	renewals := time.NewTicker(s.cfg.RenewalInterval)
	defer renewals.Stop()
	expiry := time.NewTicker(s.cfg.ExpireInterval)
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reminders.C:
			s.RemindExpiring(ctx)
		case <-renewals.C:
			s.RenewDue(ctx)
		case <-expiry.C:
			s.ExpireOverdue(ctx)
		}
	}
}

// RemindExpiring публикует напоминание для подписок, истекающих примерно через сутки.
// Окно равно интервалу запуска, поэтому каждая подписка попадает в него один раз.
func (s *SchedulerService) RemindExpiring(ctx context.Context) int {
	s.log.Info("starting search for subscriptions expiring tomorrow")
	from := s.now().Add(reminderLead)
	subs, err := s.repo.FindExpiringBetween(ctx, from, from.Add(s.cfg.ReminderInterval))
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return 0
	}
	if len(subs) == 0 {
		s.log.Info("no expiring subscriptions found")
		return 0
	}
	s.log.Info("found expiring subscriptions", "count", len(subs))

	sent := 0
	for _, sub := range subs {
		user, err := s.repo.GetUserByID(ctx, sub.UserID)
		if err != nil {
			s.log.Error("failed to load user", sl.Err(err), sl.UserID(sub.UserID))
			continue
		}
		if err := s.publisher.Publish(ctx, models.NewLifecycleEvent(models.EventExpiring, user, sub)); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}

// RenewDue продлевает подписки с автопродлением, истекающие в пределах RenewalLead.
func (s *SchedulerService) RenewDue(ctx context.Context) int {
	s.log.Info("starting renewal of due subscriptions")
	subs, err := s.repo.FindRenewable(ctx, s.now().Add(s.cfg.RenewalLead))
	if err != nil {
		s.log.Error("failed to find renewable subscriptions", sl.Err(err))
		return 0
	}

	renewed := 0
	for _, sub := range subs {
		next, err := s.renewer.Renew(ctx, sub.ID)
		if err != nil {
			s.log.Error("failed to renew subscription", sl.Err(err), slog.Int64("id", sub.ID))
			continue
		}
		if next != nil {
			renewed++
		}
	}
	if renewed > 0 {
		s.log.Info("subscriptions renewed", "count", renewed)
	}
	return renewed
}

// ExpireOverdue переводит просроченные активные подписки в expired.
func (s *SchedulerService) ExpireOverdue(ctx context.Context) int64 {
	n, err := s.repo.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		s.log.Error("failed to expire subscriptions", sl.Err(err))
		return 0
	}
	if n > 0 {
		s.log.Info("subscriptions expired", "count", n)
		s.metrics.TransitionN("expire", int(n))
	}
	return n
}

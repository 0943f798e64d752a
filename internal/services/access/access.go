// Package access загружает состояние пользователя и решает, куда его направить.
package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/metrics"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// Repository источник пользователей и их подписок.
type Repository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
}

// AccessService применяет гейт к актуальному состоянию из хранилища.
type AccessService struct {
	repo    Repository
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewAccessService создает новый экземпляр AccessService.
func NewAccessService(repo Repository, m *metrics.Metrics, log *slog.Logger) *AccessService {
	return &AccessService{
		repo:    repo,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Decide возвращает следующий обязательный шаг пользователя. Подписки читаются
// только тогда, когда от них зависит решение.
func (s *AccessService) Decide(ctx context.Context, user *models.User) (gate.Action, error) {
	var subs []models.Subscription
	if gate.NeedsSubscriptions(user) {
		var err error
		subs, err = s.repo.ListSubscriptionsByUser(ctx, user.ID)
		if err != nil {
			return "", err
		}
	}
	action := gate.Decide(user, subs, s.now())
	s.metrics.GateDecision(string(action))
	return action, nil
}

// NextAction загружает пользователя по ID и решает для него.
func (s *AccessService) NextAction(ctx context.Context, userID string) (gate.Action, *models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	action, err := s.Decide(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return action, user, nil
}

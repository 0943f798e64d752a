// Package catalog отдаёт каталог планов подписки с кешированием в Redis
// и считает для них итоговую цену и экономию.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/movibes/internal/lib/pricing"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// PlanRepository источник активных планов.
type PlanRepository interface {
	ListActivePlans(ctx context.Context, role models.Role) ([]models.PlanType, error)
	GetActivePlan(ctx context.Context, id int64) (*models.PlanType, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(keys ...string) error
}

// CatalogService реализует чтение каталога планов.
type CatalogService struct {
	repo  PlanRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo PlanRepository, cache Cache, ttl time.Duration, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func plansKey(role models.Role) string {
	return fmt.Sprintf("plans:%s", role)
}

// ListPlans возвращает активные планы роли в порядке показа.
// Ошибки кеша не прерывают запрос: каталог читается из базы.
func (s *CatalogService) ListPlans(ctx context.Context, role models.Role) ([]models.PlanType, error) {
	key := plansKey(role)
	var plans []models.PlanType
	found, err := s.cache.Get(key, &plans)
	if err != nil {
		s.log.Warn("failed to read plans from cache", slog.String("key", key), slog.Any("err", err))
	}
	if found && err == nil {
		return plans, nil
	}

	plans, err = s.repo.ListActivePlans(ctx, role)
	if err != nil {
		return nil, err
	}
	// пустой каталог не кешируется, чтобы засеянные позже планы появились сразу
	if len(plans) == 0 {
		return plans, nil
	}
	if err := s.cache.Set(key, plans, s.ttl); err != nil {
		s.log.Warn("failed to cache plans", slog.String("key", key), slog.Any("err", err))
	}
	return plans, nil
}

// GetPlan возвращает активный план по ID.
func (s *CatalogService) GetPlan(ctx context.Context, id int64) (*models.PlanType, error) {
	return s.repo.GetActivePlan(ctx, id)
}

// Quotes возвращает планы роли вместе с итоговой ценой и экономией.
func (s *CatalogService) Quotes(ctx context.Context, role models.Role) ([]models.PlanQuote, error) {
	plans, err := s.ListPlans(ctx, role)
	if err != nil {
		return nil, err
	}
	quotes := make([]models.PlanQuote, 0, len(plans))
	for _, p := range plans {
		quotes = append(quotes, pricing.Quote(p, plans))
	}
	return quotes, nil
}

// Quote считает цену плана относительно каталога его роли.
func (s *CatalogService) Quote(ctx context.Context, plan models.PlanType) (models.PlanQuote, error) {
	plans, err := s.ListPlans(ctx, plan.TargetRole)
	if err != nil {
		return models.PlanQuote{}, err
	}
	return pricing.Quote(plan, plans), nil
}

// InvalidatePlans сбрасывает закешированные каталоги всех ролей.
func (s *CatalogService) InvalidatePlans() error {
	return s.cache.Invalidate(plansKey(models.RoleStudent), plansKey(models.RoleProfessional))
}

// Package movibes собирает HTTP-сервис MoVibes: аккаунты, онбординг, каталог планов,
// подписки и гейт доступа.
package movibes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/movibes/internal/cache"
	"github.com/magabrotheeeer/movibes/internal/config"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/login"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/logout"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/professionalprofile"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/profile"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/selectrole"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/signup"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/account/studentprofile"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/health"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/home"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/checkout"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/chooseplan"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/history"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/process"
	"github.com/magabrotheeeer/movibes/internal/http/handlers/subscription/webhook"
	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/movibes/internal/services/access"
	accountservice "github.com/magabrotheeeer/movibes/internal/services/account"
	subservice "github.com/magabrotheeeer/movibes/internal/services/subscription"
	"github.com/magabrotheeeer/movibes/internal/storage/repository"
)

// Services зависимости обработчиков.
type Services struct {
	Accounts      *accountservice.AccountService
	Access        *accessservice.AccessService
	Subscriptions *subservice.SubscriptionService
	Notices       *cache.Cache
	DB            *repository.Storage
	Gatherer      prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	cookieTTL := cfg.TokenTTL
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst),
		middlewarectx.Authenticate(s.Accounts, cfg.CookieName, logger),
		middlewarectx.AccessGate(s.Access, s.Notices, logger),
	)

	// Открытые конечные точки
	r.Get("/", home.New(logger, s.Notices).ServeHTTP)
	r.Post("/accounts/signup/", signup.New(logger, s.Accounts, cfg.CookieName, cookieTTL).ServeHTTP)
	r.Post("/accounts/login/", login.New(logger, s.Accounts, cfg.CookieName, cookieTTL).ServeHTTP)
	r.Post("/accounts/logout/", logout.New(cfg.CookieName).ServeHTTP)
	r.Post("/assinatura/webhook/", webhook.New(logger, s.Subscriptions, cfg.WebhookSecret).ServeHTTP)
	r.Get("/healthz", health.New(logger, s.DB.DB).ServeHTTP)

	// Группа с обязательной аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireUser(s.Accounts, logger))

		selectRole := selectrole.New(logger, s.Accounts, s.Notices)
		r.Get("/accounts/select-profile-type/", selectRole.ServeHTTP)
		r.Post("/accounts/select-profile-type/", selectRole.ServeHTTP)

		student := studentprofile.New(logger, s.Accounts, s.Notices)
		r.Get("/accounts/complete-profile/", student.ServeHTTP)
		r.Post("/accounts/complete-profile/", student.ServeHTTP)

		professional := professionalprofile.New(logger, s.Accounts, s.Access, s.Notices)
		r.Get("/accounts/complete-profile-profissional/", professional.ServeHTTP)
		r.Post("/accounts/complete-profile-profissional/", professional.ServeHTTP)

		r.Get("/accounts/profile/", profile.New(logger, s.Subscriptions, s.Notices).ServeHTTP)

		r.Get("/assinatura/escolher-plano/", chooseplan.New(logger, s.Subscriptions, s.Notices, false).ServeHTTP)
		r.Get("/assinatura/escolher-plano-obrigatorio/", chooseplan.New(logger, s.Subscriptions, s.Notices, true).ServeHTTP)
		r.Get("/assinatura/checkout/{plan_id}/", checkout.New(logger, s.Subscriptions, s.Notices).ServeHTTP)
		r.Post("/assinatura/processar/{plan_id}/", process.New(logger, s.Subscriptions, s.Notices).ServeHTTP)
		r.Post("/assinatura/cancelar/", cancel.New(logger, s.Subscriptions, s.Notices).ServeHTTP)
		r.Get("/assinatura/historico/", history.New(logger, s.Subscriptions).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

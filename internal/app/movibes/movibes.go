package movibes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/movibes/internal/cache"
	"github.com/magabrotheeeer/movibes/internal/config"
	"github.com/magabrotheeeer/movibes/internal/lib/jwt"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/metrics"
	"github.com/magabrotheeeer/movibes/internal/migrations"
	"github.com/magabrotheeeer/movibes/internal/paymentprovider"
	"github.com/magabrotheeeer/movibes/internal/rabbitmq"
	accessservice "github.com/magabrotheeeer/movibes/internal/services/access"
	accountservice "github.com/magabrotheeeer/movibes/internal/services/account"
	catalogservice "github.com/magabrotheeeer/movibes/internal/services/catalog"
	subservice "github.com/magabrotheeeer/movibes/internal/services/subscription"
	"github.com/magabrotheeeer/movibes/internal/storage/repository"
)

// App HTTP-сервис MoVibes.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища и брокер, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.LifecycleQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catalogService := catalogservice.NewCatalogService(db, cacheRedis, cfg.PlansTTL, logger)
	// после миграций каталог мог измениться
	if err := catalogService.InvalidatePlans(); err != nil {
		logger.Warn("failed to invalidate plans cache", sl.Err(err))
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	services := Services{
		Accounts: accountservice.NewAccountService(db, jwtMaker, logger),
		Access:   accessservice.NewAccessService(db, m, logger),
		Subscriptions: subservice.NewSubscriptionService(db, catalogService,
			paymentprovider.NewClient(cfg.MockStatus), rabbitmq.NewPublisher(ch), m, logger),
		Notices:  cacheRedis,
		DB:       db,
		Gatherer: reg,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}

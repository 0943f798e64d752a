// Package sender собирает процесс, который читает события жизненного цикла
// подписок из RabbitMQ и отправляет письма пользователям.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/movibes/internal/config"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/lib/smtp"
	"github.com/magabrotheeeer/movibes/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/movibes/internal/services/sender"
)

// App процесс рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.LifecycleQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей всех очередей и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.LifecycleQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, a.logger, a.senderService.Handle); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}

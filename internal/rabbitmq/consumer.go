package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/movibes/internal/lib/sl"
)

const maxInFlight = 10

// ConsumerMessage запускает обработку очереди queueName в фоне до отмены ctx.
// Успешно обработанные сообщения подтверждаются. При ошибке сообщение
// возвращается в очередь один раз, повторная ошибка его отбрасывает.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger,
	handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d.Body); err != nil {
						log.Warn("handler failed", sl.Err(err), slog.Bool("redelivered", d.Redelivered))
						if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

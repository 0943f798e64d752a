package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/movibes/internal/models"
)

// ExchangeName exchange для событий подписок.
const ExchangeName = "notifications"

// QueueConfig очередь и ключ, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// LifecycleQueues по очереди на каждый тип события.
func LifecycleQueues() []QueueConfig {
	kinds := []models.EventKind{
		models.EventPurchased,
		models.EventCancelled,
		models.EventRenewed,
		models.EventExpiring,
	}
	queues := make([]QueueConfig, 0, len(kinds))
	for _, k := range kinds {
		queues = append(queues, QueueConfig{QueueName: QueueName(k), RoutingKey: string(k)})
	}
	return queues
}

// QueueName имя очереди для события.
func QueueName(kind models.EventKind) string {
	return "movibes." + string(kind)
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: set qos: %w", op, err)
	}

	if err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, ExchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w",
				op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}

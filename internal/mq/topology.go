package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

const (
	ExchangeManifests Exchange = "concert.manifests"
	ExchangeDLQ       Exchange = "concert.dlq"
)

const (
	QueueManifestsPublished Queue = "manifests.published"
	QueueDLQManifests       Queue = "dlq.manifests"
)

const (
	RoutingKeyPublished    RoutingKey = "published"
	RoutingKeyDLQManifests RoutingKey = "manifests"
)

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// Topology — полный набор объявлений.
type Topology struct {
	exchanges []exchangeDecl
	queues    []queueDecl
	bindings  []bindingDecl
}

// DefaultTopology возвращает топологию объявлений о манифестах.
func DefaultTopology() Topology {
	return Topology{
		exchanges: []exchangeDecl{
			{ExchangeManifests, "direct"},
			{ExchangeDLQ, "direct"},
		},
		queues: []queueDecl{
			{QueueManifestsPublished, amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQManifests),
			}},
			{QueueDLQManifests, nil},
		},
		bindings: []bindingDecl{
			{QueueManifestsPublished, RoutingKeyPublished, ExchangeManifests},
			{QueueDLQManifests, RoutingKeyDLQManifests, ExchangeDLQ},
		},
	}
}

// SetupTopology объявляет обменники, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	t := DefaultTopology()
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range t.exchanges {
			// durable, не auto-delete, не internal
			if err := ch.ExchangeDeclare(string(ex.name), ex.kind, true, false, false, false, nil); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}
		for _, q := range t.queues {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}
		for _, b := range t.bindings {
			if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}

// String описывает топологию для логов.
func (t Topology) String() string {
	s := "Concert RabbitMQ topology:\n"
	for _, ex := range t.exchanges {
		s += fmt.Sprintf("  %s (%s)\n", ex.name, ex.kind)
		for _, b := range t.bindings {
			if b.exchange == ex.name {
				s += fmt.Sprintf("    └── %s [routing: %s]\n", b.queue, b.routingKey)
			}
		}
	}
	return s
}

// Package broker declares the change-event topology on RabbitMQ, publishes
// change events, and dispatches consumed events to the sync handlers.
package broker

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mmdatafocus/sitesync/reportsync"
)

const (
	DefaultExchange    = "sync.events"
	DeadLetterExchange = "sync.events.dlx"
	DeadLetterQueue    = "sync.dead_letter"
)

// Binding is one durable queue and the routing patterns bound to it.
type Binding struct {
	Queue    string
	Patterns []string
}

func entityPattern(entity string) string {
	return entity + ".*"
}

// DefaultBindings groups masters that change together on the same queue.
func DefaultBindings() []Binding {
	single := func(entity string) Binding {
		return Binding{Queue: "sync." + entity, Patterns: []string{entityPattern(entity)}}
	}
	return []Binding{
		single(reportsync.EntityEmployee),
		single(reportsync.EntityVehicle),
		{Queue: "sync.jobsite", Patterns: []string{
			entityPattern(reportsync.EntityJobsite),
			entityPattern(reportsync.EntityJobsiteMaterial),
		}},
		{Queue: "sync.daily_report", Patterns: []string{
			entityPattern(reportsync.EntityDailyReport),
			entityPattern(reportsync.EntityCrew),
		}},
		single(reportsync.EntityEmployeeWork),
		single(reportsync.EntityVehicleWork),
		single(reportsync.EntityMaterialShipment),
		single(reportsync.EntityProduction),
		single(reportsync.EntityInvoice),
	}
}

type Topology struct {
	Exchange string
	Bindings []Binding
}

func NewTopology(exchange string) Topology {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return Topology{Exchange: exchange, Bindings: DefaultBindings()}
}

// Queues lists the queue names in declaration order.
func (t Topology) Queues() []string {
	out := make([]string, 0, len(t.Bindings))
	for _, b := range t.Bindings {
		out = append(out, b.Queue)
	}
	return out
}

// declarer is the part of *amqp.Channel used to declare the topology.
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Declare creates the exchanges, queues and bindings. Every declaration is
// idempotent, so producers and consumers both call it on startup.
func (t Topology) Declare(ch declarer) error {
	if err := ch.ExchangeDeclare(DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", DeadLetterExchange, err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", DeadLetterQueue, err)
	}
	if err := ch.QueueBind(DeadLetterQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", DeadLetterQueue, err)
	}

	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	args := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
	for _, b := range t.Bindings {
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		for _, pattern := range b.Patterns {
			if err := ch.QueueBind(b.Queue, pattern, t.Exchange, false, nil); err != nil {
				return fmt.Errorf("bind %s to %s: %w", b.Queue, pattern, err)
			}
		}
	}
	return nil
}

package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/reportsync"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch       publishChannel
	exchange string
	logger   *logrus.Logger
	now      func() time.Time
}

func NewPublisher(ch publishChannel, exchange string, logger *logrus.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger, now: time.Now}
}

// Publish sends one persistent change event and returns its message id.
func (p *Publisher) Publish(ctx context.Context, entity, naturalId string, action reportsync.Action) (string, error) {
	now := p.now().UTC()
	body, err := json.Marshal(Message{NaturalId: naturalId, Action: action, Timestamp: now})
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	messageId := uuid.NewString()
	key := RoutingKey(entity, action)
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageId,
		Timestamp:    now,
		Body:         body,
	})
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", key, err)
	}
	p.logger.WithFields(logrus.Fields{
		"field":       "broker",
		"routing_key": key,
		"natural_id":  naturalId,
		"message_id":  messageId,
	}).Info("published change event")
	return messageId, nil
}

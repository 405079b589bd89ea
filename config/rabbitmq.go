package config

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const rabbitDialAttempts = 8

// DialRabbit retries the broker with the same backoff as the database.
func DialRabbit(ctx context.Context, s *Settings, logg *logrus.Logger) (*amqp.Connection, error) {
	log := logg.WithField("field", "rabbitmq")

	var attempt int
	for {
		attempt++
		conn, err := amqp.Dial(s.RabbitURL)
		if err == nil {
			log.WithField("attempt", attempt).Info("connected to rabbitmq")
			return conn, nil
		}
		if attempt >= rabbitDialAttempts {
			return nil, fmt.Errorf("rabbitmq connect failed after %d attempts: %w", attempt, err)
		}
		sleep := Backoff(attempt)
		log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).
			Warn("failed to connect rabbitmq")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

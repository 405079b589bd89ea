package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mmdatafocus/sitesync/appctx"
	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/reportsync"
)

const DefaultPrefetch = 10

// EntitySyncer routes a change event to its handler. *reportsync.Registry
// implements it.
type EntitySyncer interface {
	Sync(ctx context.Context, entity string, naturalId string, action reportsync.Action) (reportsync.Outcome, error)
}

// acknowledger is the settle side of amqp.Delivery.
type acknowledger interface {
	Ack(multiple bool) error
	Reject(requeue bool) error
}

type Dispatcher struct {
	Syncer   EntitySyncer
	Topology Topology
	Prefetch int
	// DB receives sync_errors rows; nil disables recording.
	DB     *gorm.DB
	Logger *logrus.Logger

	tracer trace.Tracer
}

func NewDispatcher(syncer EntitySyncer, topology Topology, prefetch int, db *gorm.DB, logger *logrus.Logger) *Dispatcher {
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	return &Dispatcher{
		Syncer:   syncer,
		Topology: topology,
		Prefetch: prefetch,
		DB:       db,
		Logger:   logger,
		tracer:   otel.Tracer("github.com/mmdatafocus/sitesync/broker"),
	}
}

// Run drains every queue of the topology until ctx is cancelled or a
// channel fails.
func (d *Dispatcher) Run(ctx context.Context, conn *amqp.Connection) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, queue := range d.Topology.Queues() {
		queue := queue
		g.Go(func() error {
			return d.consume(gctx, conn, queue)
		})
	}
	return g.Wait()
}

// consume runs Prefetch workers over one queue's own channel. On
// cancellation the consumer is cancelled and in-flight messages finish.
func (d *Dispatcher) consume(ctx context.Context, conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", queue, err)
	}
	defer ch.Close()

	if err := ch.Qos(d.Prefetch, 0, false); err != nil {
		return fmt.Errorf("qos %s: %w", queue, err)
	}
	tag := queue + "-" + uuid.NewString()
	deliveries, err := ch.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	log := d.Logger.WithFields(logrus.Fields{"field": "broker", "queue": queue})
	log.WithField("prefetch", d.Prefetch).Info("consuming")

	// handlers must not be cut short by shutdown
	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for i := 0; i < d.Prefetch; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for delivery := range deliveries {
				d.Handle(handlerCtx, delivery.RoutingKey, delivery.MessageId, delivery.Body, delivery)
			}
		}()
	}
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-ctx.Done():
		if err := ch.Cancel(tag, false); err != nil {
			log.WithError(err).Warn("cancel consumer")
		}
		<-drained
		log.Info("consumer stopped")
		return nil
	case <-drained:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("deliveries for %s closed unexpectedly", queue)
	}
}

// Handle settles one delivery: ack on done or skipped, reject without
// requeue on failure or an unreadable message.
func (d *Dispatcher) Handle(ctx context.Context, routingKey, messageId string, body []byte, ack acknowledger) reportsync.Outcome {
	if messageId == "" {
		messageId = uuid.NewString()
	}
	ctx = appctx.Set(ctx, appctx.ContextKeyCorrelationId, messageId)
	ctx = appctx.Set(ctx, appctx.ContextKeySource, models.SyncSourceConsumer)
	log := d.Logger.WithFields(logrus.Fields{
		"field":       "broker",
		"routing_key": routingKey,
		"message_id":  messageId,
	})

	entity, keyAction, err := ParseRoutingKey(routingKey)
	if err != nil {
		d.reject(ctx, log, ack, models.SyncError{EntityType: routingKey}, err)
		return reportsync.OutcomeFailed
	}
	msg, err := DecodeMessage(body, keyAction)
	if err != nil {
		d.reject(ctx, log, ack, models.SyncError{EntityType: entity, Action: string(keyAction)}, err)
		return reportsync.OutcomeFailed
	}

	ctx, span := d.tracer.Start(ctx, "sync "+entity, trace.WithAttributes(
		attribute.String("sync.entity", entity),
		attribute.String("sync.action", string(msg.Action)),
		attribute.String("sync.natural_id", msg.NaturalId),
		attribute.String("messaging.message_id", messageId),
	))
	defer span.End()

	outcome, err := d.Syncer.Sync(ctx, entity, msg.NaturalId, msg.Action)
	span.SetAttributes(attribute.String("sync.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.reject(ctx, log, ack, models.SyncError{
			EntityType: entity,
			NaturalId:  msg.NaturalId,
			Action:     string(msg.Action),
		}, err)
		return reportsync.OutcomeFailed
	}

	if err := ack.Ack(false); err != nil {
		log.WithError(err).Error("ack failed")
	}
	return outcome
}

func (d *Dispatcher) reject(ctx context.Context, log *logrus.Entry, ack acknowledger, rec models.SyncError, cause error) {
	kind := reportsync.Classify(cause)
	log.WithError(cause).WithField("error_kind", kind).Error("rejecting message")

	if d.DB != nil {
		rec.Source = models.SyncSourceConsumer
		rec.ErrorKind = string(kind)
		rec.Message = cause.Error()
		if err := models.CreateSyncError(ctx, d.DB, rec); err != nil {
			log.WithError(err).Error("record sync error")
		}
	}
	if err := ack.Reject(false); err != nil {
		log.WithError(err).Error("reject failed")
	}
}

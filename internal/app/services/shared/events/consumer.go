package events

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	consumerPrefetch   = 20
	consumerMaxBackoff = 30 * time.Second
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// NotificationConsumer turns booking events into per-user notifications.
type NotificationConsumer struct {
	conn          *amqp091.Connection
	notifications contracts.NotificationService
	Log           *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewNotificationConsumer(conn *amqp091.Connection, notifications contracts.NotificationService, logger *zap.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		conn:          conn,
		notifications: notifications,
		Log:           logger,
	}
}

// Start runs the consume loop in the background, reopening the channel with
// backoff until Stop is called.
func (c *NotificationConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		backoff := time.Second
		for {
			err := c.consumeLoop(ctx)
			if ctx.Err() != nil {
				return
			}
			c.Log.Warn("NotificationConsumer consume loop ended, reconnecting",
				zap.String(constvars.LoggingQueueKey, constvars.EventNotificationQueue),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < consumerMaxBackoff {
				backoff *= 2
			}
		}
	}()
}

func (c *NotificationConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *NotificationConsumer) consumeLoop(ctx context.Context) error {
	channel, err := c.conn.Channel()
	if err != nil {
		return exceptions.ErrRabbitMQOpenChannel(err)
	}
	defer func() { _ = channel.Close() }()

	if err := channel.Qos(consumerPrefetch, 0, false); err != nil {
		c.Log.Warn("NotificationConsumer set QoS failed", zap.Error(err))
	}

	if err := declareExchange(channel); err != nil {
		return err
	}
	queue, err := channel.QueueDeclare(constvars.EventNotificationQueue, true, false, false, false, nil)
	if err != nil {
		return exceptions.ErrRabbitMQDeclareTopology(err)
	}
	if err := channel.QueueBind(queue.Name, constvars.EventRoutingKeyAllBooking, constvars.EventExchangeName, false, nil); err != nil {
		return exceptions.ErrRabbitMQDeclareTopology(err)
	}

	deliveries, err := channel.ConsumeWithContext(ctx, queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return exceptions.ErrRabbitMQConsumeMessage(err)
	}

	c.Log.Info("NotificationConsumer consuming",
		zap.String(constvars.LoggingQueueKey, queue.Name),
	)

	for delivery := range deliveries {
		if err := c.handleMessage(ctx, delivery.Body); err != nil {
			c.Log.Error("NotificationConsumer handle message failed",
				zap.String(constvars.LoggingRoutingKey, delivery.RoutingKey),
				zap.Error(err),
			)
			_ = delivery.Nack(false, false)
			continue
		}
		_ = delivery.Ack(false)
	}
	return errDeliveriesClosed
}

func (c *NotificationConsumer) handleMessage(ctx context.Context, body []byte) error {
	var event models.BookingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	return c.notifications.Record(ctx, &event)
}

package events

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type bookingEventPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	mu      sync.Mutex
	Log     *zap.Logger
}

func NewBookingEventPublisher(conn *amqp091.Connection, logger *zap.Logger) (contracts.BookingEventPublisher, error) {
	publisher := &bookingEventPublisher{
		conn: conn,
		Log:  logger,
	}
	if _, err := publisher.openChannel(); err != nil {
		return nil, err
	}
	return publisher, nil
}

// openChannel must be called with mu held or before the publisher is shared.
func (p *bookingEventPublisher) openChannel() (*amqp091.Channel, error) {
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	channel, err := p.conn.Channel()
	if err != nil {
		return nil, exceptions.ErrRabbitMQOpenChannel(err)
	}
	if err := declareExchange(channel); err != nil {
		_ = channel.Close()
		return nil, err
	}
	p.channel = channel
	return channel, nil
}

func declareExchange(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(constvars.EventExchangeName, amqp091.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		return exceptions.ErrRabbitMQDeclareTopology(err)
	}
	return nil
}

func (p *bookingEventPublisher) Publish(ctx context.Context, event *models.BookingEvent) error {
	requestID := utils.GetRequestID(ctx)
	p.Log.Info("bookingEventPublisher.Publish called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRoutingKey, string(event.Type)),
		zap.String(constvars.LoggingReservationIDKey, event.ReservationID),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		DeliveryMode: amqp091.Persistent,
		MessageId:    utils.GenerateRequestID(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
		Headers: amqp091.Table{
			"request_id": requestID,
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	channel, err := p.openChannel()
	if err != nil {
		p.Log.Error("bookingEventPublisher.Publish error opening channel",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}

	err = channel.PublishWithContext(ctx, constvars.EventExchangeName, string(event.Type), false, false, message)
	if err != nil {
		p.Log.Error("bookingEventPublisher.Publish error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err)
	}

	p.Log.Info("bookingEventPublisher.Publish succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRoutingKey, string(event.Type)),
	)
	return nil
}

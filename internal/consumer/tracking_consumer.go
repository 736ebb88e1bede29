package consumer

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/events"
	"github.com/whopgrid/service-catalog/internal/kafka"
)

// ClientEventConsumer ingests user actions forwarded by edge collectors
// into the tracking ledger. It is the asynchronous twin of the tracking
// POST endpoint.
type ClientEventConsumer struct {
	consumer        *kafka.Consumer
	trackingService *application.TrackingService
	logger          *zap.Logger
}

// NewClientEventConsumer creates a consumer on the tracking events topic.
func NewClientEventConsumer(
	brokers []string,
	groupID string,
	trackingService *application.TrackingService,
	logger *zap.Logger,
) *ClientEventConsumer {
	return &ClientEventConsumer{
		consumer:        kafka.NewConsumer(brokers, groupID, events.TopicTrackingEvents, logger),
		trackingService: trackingService,
		logger:          logger,
	}
}

// Start consumes until the context is cancelled.
func (c *ClientEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting client event consumer", zap.String("topic", events.TopicTrackingEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *ClientEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ClientEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed event", zap.Error(err))
		return nil
	}

	if event.Type != events.TrackingClientAction {
		return nil
	}

	var action events.ClientActionEvent
	if err := event.ParseData(&action); err != nil {
		c.logger.Warn("skipping event with malformed payload",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return nil
	}

	_, err = c.trackingService.Record(ctx, application.RecordTrackingRequest{
		WhopID:      action.WhopID,
		PromoCodeID: action.PromoCodeID,
		ActionType:  action.ActionType,
		Path:        action.Path,
	})
	if err != nil {
		// Bad payloads and vanished whops are final; only infrastructure
		// failures are worth surfacing for redelivery.
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("dropping unrecordable client action",
				zap.String("event_id", event.ID),
				zap.String("whop_id", action.WhopID.String()),
				zap.Error(err),
			)
			return nil
		}
		return err
	}
	return nil
}

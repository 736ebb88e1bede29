package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain/promo"
	"github.com/whopgrid/service-catalog/internal/domain/tracking"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
	"github.com/whopgrid/service-catalog/internal/events"
	"github.com/whopgrid/service-catalog/internal/kafka"
)

// RecordTrackingRequest holds data reported by the client for one action.
type RecordTrackingRequest struct {
	WhopID      uuid.UUID  `json:"whopId" binding:"required"`
	PromoCodeID *uuid.UUID `json:"promoCodeId"`
	ActionType  string     `json:"actionType" binding:"required"`
	Path        string     `json:"path"`
}

// TrackingDTO is the API representation of a recorded event.
type TrackingDTO struct {
	ID          uuid.UUID  `json:"id"`
	WhopID      uuid.UUID  `json:"whopId"`
	PromoCodeID *uuid.UUID `json:"promoCodeId,omitempty"`
	ActionType  string     `json:"actionType"`
	Path        string     `json:"path,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TrackingService is the engagement ledger write path: it validates and
// appends immutable action events. No aggregate is updated on write.
type TrackingService struct {
	eventsRepo tracking.EventRepository
	whopRepo   whop.WhopRepository
	promoRepo  promo.PromoRepository
	producer   *kafka.Producer
	logger     *zap.Logger
}

// NewTrackingService creates a new TrackingService. The producer may be nil
// when event emission is disabled.
func NewTrackingService(
	eventsRepo tracking.EventRepository,
	whopRepo whop.WhopRepository,
	promoRepo promo.PromoRepository,
	producer *kafka.Producer,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		eventsRepo: eventsRepo,
		whopRepo:   whopRepo,
		promoRepo:  promoRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Record validates and appends one tracking event.
// The whop reference must resolve; a dangling promo reference is coerced to
// null rather than rejecting the event, since the action itself is still a
// meaningful fact.
func (s *TrackingService) Record(ctx context.Context, req RecordTrackingRequest) (*TrackingDTO, error) {
	event, err := tracking.NewEvent(req.WhopID, req.PromoCodeID, req.ActionType, req.Path)
	if err != nil {
		return nil, err
	}

	if _, err := s.whopRepo.FindByID(ctx, req.WhopID); err != nil {
		return nil, err
	}

	if event.PromoCodeID() != nil {
		exists, err := s.promoRepo.Exists(ctx, *event.PromoCodeID())
		if err != nil {
			return nil, err
		}
		if !exists {
			s.logger.Debug("dangling promo reference dropped",
				zap.String("promo_code_id", event.PromoCodeID().String()),
			)
			event.ClearPromoReference()
		}
	}

	if err := s.eventsRepo.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append tracking event: %w", err)
	}

	s.emitRecorded(ctx, event)
	dto := toTrackingDTO(event)
	return &dto, nil
}

// emitRecorded publishes a tracking.recorded event, best-effort.
func (s *TrackingService) emitRecorded(ctx context.Context, event *tracking.Event) {
	if s.producer == nil {
		return
	}
	ce, err := kafka.NewCloudEvent("service-catalog", events.TrackingRecorded, events.TrackingRecordedEvent{
		TrackingID:  event.ID(),
		WhopID:      event.WhopID(),
		PromoCodeID: event.PromoCodeID(),
		ActionType:  string(event.ActionType()),
		Path:        event.Path(),
		OccurredAt:  event.CreatedAt(),
	})
	if err != nil {
		s.logger.Error("failed to create tracking event envelope", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicCatalogEvents, ce); err != nil {
		s.logger.Warn("failed to publish tracking event", zap.Error(err))
	}
}

func toTrackingDTO(e *tracking.Event) TrackingDTO {
	return TrackingDTO{
		ID:          e.ID(),
		WhopID:      e.WhopID(),
		PromoCodeID: e.PromoCodeID(),
		ActionType:  string(e.ActionType()),
		Path:        e.Path(),
		CreatedAt:   e.CreatedAt(),
	}
}

package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
	"github.com/whopgrid/service-catalog/internal/events"
	"github.com/whopgrid/service-catalog/internal/kafka"
)

// DefaultResetBatchSize is how many whops a reset leaves published.
const DefaultResetBatchSize = 250

// BatchResultDTO reports the outcome of a publish or unpublish batch.
type BatchResultDTO struct {
	Affected  int64  `json:"affected"`
	Remaining int64  `json:"remaining"`
	Message   string `json:"message"`
}

// PublicationStatusDTO is a read-only snapshot of the catalog publish state.
type PublicationStatusDTO struct {
	Published   int64 `json:"published"`
	Unpublished int64 `json:"unpublished"`
	Total       int64 `json:"total"`
}

// PublicationService gates public visibility of whops via cursor-based
// batch rollout. It assumes a single external trigger; concurrent batch
// invocations are not guarded by a lock.
type PublicationService struct {
	repo     whop.WhopRepository
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewPublicationService creates a new PublicationService. The producer may
// be nil when event emission is disabled.
func NewPublicationService(repo whop.WhopRepository, producer *kafka.Producer, logger *zap.Logger) *PublicationService {
	return &PublicationService{repo: repo, producer: producer, logger: logger}
}

// Publish makes the oldest `batchSize` unpublished whops visible.
// An empty backlog is a valid terminal state, not an error.
func (s *PublicationService) Publish(ctx context.Context, batchSize int) (*BatchResultDTO, error) {
	if batchSize <= 0 {
		return nil, domain.NewValidationError("batch size must be positive")
	}

	published, err := s.repo.PublishBatch(ctx, batchSize, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("publish batch failed: %w", err)
	}

	counts, err := s.repo.CountByPublication(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch published",
		zap.Int("batch_size", batchSize),
		zap.Int64("published", published),
		zap.Int64("remaining", counts.Unpublished),
	)
	s.emitBatchEvent(ctx, events.CatalogBatchPublished, "publish", batchSize, published, counts.Unpublished)

	return &BatchResultDTO{
		Affected:  published,
		Remaining: counts.Unpublished,
		Message:   fmt.Sprintf("published %d whops, %d remaining", published, counts.Unpublished),
	}, nil
}

// Unpublish hides the `batchSize` most recently published whops, LIFO.
func (s *PublicationService) Unpublish(ctx context.Context, batchSize int) (*BatchResultDTO, error) {
	if batchSize <= 0 {
		return nil, domain.NewValidationError("batch size must be positive")
	}

	unpublished, err := s.repo.UnpublishBatch(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("unpublish batch failed: %w", err)
	}

	counts, err := s.repo.CountByPublication(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch unpublished",
		zap.Int("batch_size", batchSize),
		zap.Int64("unpublished", unpublished),
		zap.Int64("still_published", counts.Published),
	)
	s.emitBatchEvent(ctx, events.CatalogBatchUnpublished, "unpublish", batchSize, unpublished, counts.Published)

	return &BatchResultDTO{
		Affected:  unpublished,
		Remaining: counts.Published,
		Message:   fmt.Sprintf("unpublished %d whops, %d still published", unpublished, counts.Published),
	}, nil
}

// Status returns the publish-state snapshot from one consistent read.
func (s *PublicationService) Status(ctx context.Context) (*PublicationStatusDTO, error) {
	counts, err := s.repo.CountByPublication(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicationStatusDTO{
		Published:   counts.Published,
		Unpublished: counts.Unpublished,
		Total:       counts.Total,
	}, nil
}

// Reset unpublishes the whole catalog and republishes the oldest batchSize
// whops. Idempotent in outcome: the final state depends only on current
// data, not on how many times reset runs.
func (s *PublicationService) Reset(ctx context.Context, batchSize int) (*PublicationStatusDTO, error) {
	if batchSize <= 0 {
		batchSize = DefaultResetBatchSize
	}

	if err := s.repo.ResetPublication(ctx, batchSize, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}

	s.logger.Info("catalog publication reset", zap.Int("batch_size", batchSize))
	if s.producer != nil {
		ce, err := kafka.NewCloudEvent("service-catalog", events.CatalogReset, events.CatalogResetEvent{
			BatchSize:  batchSize,
			OccurredAt: time.Now().UTC(),
		})
		if err == nil {
			if err := s.producer.PublishEvent(ctx, events.TopicCatalogEvents, ce); err != nil {
				s.logger.Warn("failed to publish reset event", zap.Error(err))
			}
		}
	}

	return s.Status(ctx)
}

// emitBatchEvent publishes a catalog batch event, best-effort. A broker
// outage never fails the batch itself.
func (s *PublicationService) emitBatchEvent(ctx context.Context, eventType, action string, batchSize int, affected, remaining int64) {
	if s.producer == nil {
		return
	}
	ce, err := kafka.NewCloudEvent("service-catalog", eventType, events.BatchPublishedEvent{
		Action:     action,
		BatchSize:  batchSize,
		Affected:   affected,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to create batch event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicCatalogEvents, ce); err != nil {
		s.logger.Warn("failed to publish batch event", zap.Error(err))
	}
}

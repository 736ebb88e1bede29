package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain/review"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

// CreateReviewRequest holds data for a new user review.
type CreateReviewRequest struct {
	Author  string `json:"author" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Content string `json:"content"`
}

// ReviewDTO is the API representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	WhopID    uuid.UUID `json:"whop_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// VerifyReviewDTO reports a verification with the recomputed whop rating.
type VerifyReviewDTO struct {
	Review     ReviewDTO `json:"review"`
	WhopRating float64   `json:"whop_rating"`
}

// ReviewService handles review submission and moderation use cases.
type ReviewService struct {
	repo     review.ReviewRepository
	whopRepo whop.WhopRepository
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo review.ReviewRepository, whopRepo whop.WhopRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, whopRepo: whopRepo, logger: logger}
}

// CreateReview submits an unverified review for a whop identified by slug.
func (s *ReviewService) CreateReview(ctx context.Context, slug string, req CreateReviewRequest) (*ReviewDTO, error) {
	w, err := s.whopRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	rev, err := review.NewReview(w.ID(), req.Author, req.Rating, req.Content)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rev); err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.String("whop_slug", slug),
		zap.Int("rating", req.Rating),
	)
	dto := toReviewDTO(rev)
	return &dto, nil
}

// VerifyReview marks a review verified and recomputes the whop's rating as
// the mean of its verified reviews (admin). Verification is one-way.
func (s *ReviewService) VerifyReview(ctx context.Context, id uuid.UUID) (*VerifyReviewDTO, error) {
	rev, rating, err := s.repo.Verify(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review verified",
		zap.String("review_id", id.String()),
		zap.Float64("whop_rating", rating),
	)
	return &VerifyReviewDTO{Review: toReviewDTO(rev), WhopRating: rating}, nil
}

// DeleteReview removes a review (admin), recomputing the whop rating when a
// verified review disappears.
func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListForWhop returns a whop's reviews. The public surface sees only
// verified reviews.
func (s *ReviewService) ListForWhop(ctx context.Context, slug string, verifiedOnly bool) ([]ReviewDTO, error) {
	w, err := s.whopRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListByWhop(ctx, w.ID(), verifiedOnly)
	if err != nil {
		return nil, err
	}
	return toReviewDTOs(reviews), nil
}

// ListAll returns the moderation queue with pagination (admin).
func (s *ReviewService) ListAll(ctx context.Context, page, limit int) ([]ReviewDTO, int64, error) {
	reviews, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toReviewDTOs(reviews), total, nil
}

func toReviewDTO(r *review.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID(),
		WhopID:    r.WhopID(),
		Author:    r.Author(),
		Rating:    r.Rating(),
		Content:   r.Content(),
		Verified:  r.Verified(),
		CreatedAt: r.CreatedAt(),
	}
}

func toReviewDTOs(reviews []*review.Review) []ReviewDTO {
	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return dtos
}

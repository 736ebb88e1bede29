package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/whopgrid/service-catalog/internal/domain"
	reviewDomain "github.com/whopgrid/service-catalog/internal/domain/review"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	WhopID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Author    string    `gorm:"type:varchar(255);not null"`
	Rating    int       `gorm:"not null"`
	Content   string    `gorm:"type:text"`
	Verified  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ReviewModel) TableName() string { return "reviews" }

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Save persists a new review.
func (r *GormReviewRepository) Save(ctx context.Context, rev *reviewDomain.Review) error {
	model := toReviewModel(rev)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID returns a review by ID.
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", id.String())
		}
		return nil, err
	}
	return toReviewDomain(&model), nil
}

// ListByWhop returns reviews for a whop, newest first.
func (r *GormReviewRepository) ListByWhop(ctx context.Context, whopID uuid.UUID, verifiedOnly bool) ([]*reviewDomain.Review, error) {
	q := r.db.WithContext(ctx).Where("whop_id = ?", whopID)
	if verifiedOnly {
		q = q.Where("verified = ?", true)
	}

	var models []ReviewModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toReviewDomains(models), nil
}

// ListAll returns all reviews with pagination (admin moderation queue).
func (r *GormReviewRepository) ListAll(ctx context.Context, page, limit int) ([]*reviewDomain.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ReviewModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("verified ASC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return toReviewDomains(models), total, nil
}

// Verify flips the verified flag and recomputes the parent whop's rating as
// the mean of its verified reviews, all in one transaction.
func (r *GormReviewRepository) Verify(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, float64, error) {
	var model ReviewModel
	var newRating float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Review", id.String())
			}
			return err
		}
		if model.Verified {
			return domain.NewInvalidStateError("verified", "verified")
		}

		if err := tx.Model(&ReviewModel{}).
			Where("id = ?", id).
			Update("verified", true).Error; err != nil {
			return err
		}
		model.Verified = true

		rating, err := recomputeRating(tx, model.WhopID)
		if err != nil {
			return err
		}
		newRating = rating
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return toReviewDomain(&model), newRating, nil
}

// Delete removes a review and, if it was verified, recomputes the parent
// whop's rating over the remaining verified reviews.
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ReviewModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Review", id.String())
			}
			return err
		}

		if err := tx.Delete(&model).Error; err != nil {
			return err
		}
		if model.Verified {
			if _, err := recomputeRating(tx, model.WhopID); err != nil {
				return err
			}
		}
		return nil
	})
}

// recomputeRating sets the whop's rating to the mean of its verified reviews'
// ratings; zero when none remain. Unverified reviews never contribute.
func recomputeRating(tx *gorm.DB, whopID uuid.UUID) (float64, error) {
	var avg sql.NullFloat64
	if err := tx.Model(&ReviewModel{}).
		Where("whop_id = ? AND verified = ?", whopID, true).
		Select("AVG(rating)").
		Scan(&avg).Error; err != nil {
		return 0, err
	}

	rating := 0.0
	if avg.Valid {
		rating = avg.Float64
	}
	if err := tx.Model(&WhopModel{}).
		Where("id = ?", whopID).
		Update("rating", rating).Error; err != nil {
		return 0, err
	}
	return rating, nil
}

func toReviewModel(rev *reviewDomain.Review) ReviewModel {
	return ReviewModel{
		ID:        rev.ID(),
		WhopID:    rev.WhopID(),
		Author:    rev.Author(),
		Rating:    rev.Rating(),
		Content:   rev.Content(),
		Verified:  rev.Verified(),
		CreatedAt: rev.CreatedAt(),
	}
}

func toReviewDomain(m *ReviewModel) *reviewDomain.Review {
	return reviewDomain.Reconstruct(m.ID, m.WhopID, m.Author, m.Rating, m.Content, m.Verified, m.CreatedAt)
}

func toReviewDomains(models []ReviewModel) []*reviewDomain.Review {
	reviews := make([]*reviewDomain.Review, len(models))
	for i := range models {
		reviews[i] = toReviewDomain(&models[i])
	}
	return reviews
}

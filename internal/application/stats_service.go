package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/domain/promo"
	"github.com/whopgrid/service-catalog/internal/domain/tracking"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

// UsageStatsDTO reports per-promo-code copy statistics.
type UsageStatsDTO struct {
	TodayCount int64      `json:"todayCount"`
	TotalCount int64      `json:"totalCount"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// ClickStatsDTO reports a whop's click count for the current day.
type ClickStatsDTO struct {
	TodayClicks int64 `json:"todayClicks"`
}

// MostClaimedOfferDTO identifies the leading whop by promo claims.
type MostClaimedOfferDTO struct {
	WhopID     uuid.UUID `json:"whopId"`
	WhopName   string    `json:"whopName"`
	WhopSlug   string    `json:"whopSlug"`
	ClaimCount int64     `json:"claimCount"`
}

// SiteStatisticsDTO is the dashboard view. totalOffersAvailable aliases
// activeWhopsCount for backward API compatibility.
type SiteStatisticsDTO struct {
	TotalUsers           int64                `json:"totalUsers"`
	PromoCodesClaimed    int64                `json:"promoCodesClaimed"`
	ActiveWhopsCount     int64                `json:"activeWhopsCount"`
	TotalOffersAvailable int64                `json:"totalOffersAvailable"`
	MostClaimedOffer     *MostClaimedOfferDTO `json:"mostClaimedOffer"`
}

// StatsService is the aggregator read path: every statistic is derived from
// the ledger at call time, never cached or stored.
type StatsService struct {
	eventsRepo tracking.EventRepository
	whopRepo   whop.WhopRepository
	promoRepo  promo.PromoRepository
	logger     *zap.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	eventsRepo tracking.EventRepository,
	whopRepo whop.WhopRepository,
	promoRepo promo.PromoRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		eventsRepo: eventsRepo,
		whopRepo:   whopRepo,
		promoRepo:  promoRepo,
		logger:     logger,
	}
}

// todayWindow returns [start-of-day, start-of-next-day) in server local
// time. The day boundary follows the server clock, not a fixed UTC cut.
func todayWindow() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// UsageStats returns today/all-time copy counts for a promo code. A code
// with no events yields zeros, not an error.
func (s *StatsService) UsageStats(ctx context.Context, promoCodeID uuid.UUID) (*UsageStatsDTO, error) {
	if _, err := s.promoRepo.FindByID(ctx, promoCodeID); err != nil {
		return nil, err
	}

	dayStart, dayEnd := todayWindow()
	counts, err := s.eventsRepo.UsageStats(ctx, promoCodeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return &UsageStatsDTO{
		TodayCount: counts.TodayCount,
		TotalCount: counts.TotalCount,
		LastUsedAt: counts.LastUsedAt,
	}, nil
}

// ClickStats returns today's click count for a whop.
func (s *StatsService) ClickStats(ctx context.Context, whopID uuid.UUID) (*ClickStatsDTO, error) {
	if _, err := s.whopRepo.FindByID(ctx, whopID); err != nil {
		return nil, err
	}

	dayStart, dayEnd := todayWindow()
	clicks, err := s.eventsRepo.ClickCount(ctx, whopID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return &ClickStatsDTO{TodayClicks: clicks}, nil
}

// MostClaimedOffer returns the whop whose promo code has the highest
// all-time copy count, falling back to the whop with the most events of any
// type when no copies exist yet or the leading promo code has since been
// deleted. Returns nil only on an empty ledger.
func (s *StatsService) MostClaimedOffer(ctx context.Context) (*MostClaimedOfferDTO, error) {
	top, err := s.eventsRepo.TopPromoByCopies(ctx)
	switch {
	case err == nil:
		p, perr := s.promoRepo.FindByID(ctx, top.ID)
		if perr == nil {
			return s.offerForWhop(ctx, p.WhopID(), top.Count)
		}
		if !errors.Is(perr, domain.ErrNotFound) {
			return nil, perr
		}
		// The ledger keeps events for deleted promo codes; a dead
		// reference at the top must not blank the whole statistic.
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	// No live copy leader: fall back to raw event volume.
	topWhop, err := s.eventsRepo.TopWhopByAnyEvent(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.offerForWhop(ctx, topWhop.ID, topWhop.Count)
}

func (s *StatsService) offerForWhop(ctx context.Context, whopID uuid.UUID, count int64) (*MostClaimedOfferDTO, error) {
	w, err := s.whopRepo.FindByID(ctx, whopID)
	if err != nil {
		return nil, err
	}
	return &MostClaimedOfferDTO{
		WhopID:     w.ID(),
		WhopName:   w.Name(),
		WhopSlug:   w.Slug(),
		ClaimCount: count,
	}, nil
}

// SiteStatistics returns the dashboard aggregate. This surface is
// best-effort: any store failure degrades to a zeroed response instead of
// breaking page rendering.
func (s *StatsService) SiteStatistics(ctx context.Context) *SiteStatisticsDTO {
	stats := &SiteStatisticsDTO{}

	visitors, err := s.eventsRepo.DistinctPathCount(ctx)
	if err != nil {
		s.logger.Warn("site statistics degraded", zap.Error(err))
		return stats
	}
	stats.TotalUsers = visitors

	claimed, err := s.eventsRepo.TotalCopyCount(ctx)
	if err != nil {
		s.logger.Warn("site statistics degraded", zap.Error(err))
		return stats
	}
	stats.PromoCodesClaimed = claimed

	counts, err := s.whopRepo.CountByPublication(ctx)
	if err != nil {
		s.logger.Warn("site statistics degraded", zap.Error(err))
		return stats
	}
	stats.ActiveWhopsCount = counts.Published
	stats.TotalOffersAvailable = counts.Published

	offer, err := s.MostClaimedOffer(ctx)
	if err != nil {
		s.logger.Warn("most claimed offer lookup failed", zap.Error(err))
		return stats
	}
	stats.MostClaimedOffer = offer
	return stats
}

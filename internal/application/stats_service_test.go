package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/domain/promo"
	"github.com/whopgrid/service-catalog/internal/domain/tracking"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

type statsFixture struct {
	svc       *StatsService
	whopRepo  *fakeWhopRepo
	promoRepo *fakePromoRepo
	events    *fakeEventRepo
	whop      *whop.Whop
	promo     *promo.PromoCode
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	whopRepo := newFakeWhopRepo()
	promoRepo := newFakePromoRepo()
	events := newFakeEventRepo()

	w, err := whop.NewWhop("Trading Alpha", "trading-alpha", "", "", "", 0)
	require.NoError(t, err)
	whopRepo.add(w)

	p, err := promo.NewPromoCode(w.ID(), "20% off", "", nil, "discount", "20%")
	require.NoError(t, err)
	promoRepo.add(p)

	return &statsFixture{
		svc:       NewStatsService(events, whopRepo, promoRepo, zap.NewNop()),
		whopRepo:  whopRepo,
		promoRepo: promoRepo,
		events:    events,
		whop:      w,
		promo:     p,
	}
}

// seedEvent appends a ledger event with a controlled timestamp.
func (f *statsFixture) seedEvent(whopID uuid.UUID, promoID *uuid.UUID, action tracking.ActionType, path string, at time.Time) {
	f.events.add(tracking.Reconstruct(uuid.New(), whopID, promoID, action, path, at))
}

func TestUsageStats_NoEventsYieldsZeros(t *testing.T) {
	f := newStatsFixture(t)

	stats, err := f.svc.UsageStats(context.Background(), f.promo.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TodayCount)
	assert.Equal(t, int64(0), stats.TotalCount)
	assert.Nil(t, stats.LastUsedAt)
}

func TestUsageStats_SplitsTodayFromTotal(t *testing.T) {
	f := newStatsFixture(t)
	promoID := f.promo.ID()
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)

	for i := 0; i < 3; i++ {
		f.seedEvent(f.whop.ID(), &promoID, tracking.ActionCodeCopy, "/a", yesterday)
	}
	f.seedEvent(f.whop.ID(), &promoID, tracking.ActionCodeCopy, "/a", now.Add(-time.Minute))
	f.seedEvent(f.whop.ID(), &promoID, tracking.ActionCodeCopy, "/a", now)
	// Clicks never count as usage.
	f.seedEvent(f.whop.ID(), &promoID, tracking.ActionOfferClick, "/a", now)

	stats, err := f.svc.UsageStats(context.Background(), promoID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TodayCount)
	assert.Equal(t, int64(5), stats.TotalCount)
	require.NotNil(t, stats.LastUsedAt)
	assert.WithinDuration(t, now, *stats.LastUsedAt, time.Second)
}

func TestUsageStats_UnknownPromoRejected(t *testing.T) {
	f := newStatsFixture(t)

	_, err := f.svc.UsageStats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClickStats_CountsTodayClicksOnly(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()

	f.seedEvent(f.whop.ID(), nil, tracking.ActionOfferClick, "/a", now)
	f.seedEvent(f.whop.ID(), nil, tracking.ActionButtonClick, "/a", now)
	f.seedEvent(f.whop.ID(), nil, tracking.ActionCodeCopy, "/a", now)
	f.seedEvent(f.whop.ID(), nil, tracking.ActionOfferClick, "/a", now.AddDate(0, 0, -1))

	stats, err := f.svc.ClickStats(context.Background(), f.whop.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TodayClicks)
}

func TestMostClaimedOffer_HighestCopyCountWins(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()

	other, err := whop.NewWhop("Fitness Pro", "fitness-pro", "", "", "", 1)
	require.NoError(t, err)
	f.whopRepo.add(other)
	otherPromo, err := promo.NewPromoCode(other.ID(), "Trial", "", nil, "free_trial", "")
	require.NoError(t, err)
	f.promoRepo.add(otherPromo)

	leaderID := f.promo.ID()
	runnerUpID := otherPromo.ID()
	for i := 0; i < 3; i++ {
		f.seedEvent(f.whop.ID(), &leaderID, tracking.ActionCodeCopy, "/a", now)
	}
	f.seedEvent(other.ID(), &runnerUpID, tracking.ActionCodeCopy, "/b", now)

	offer, err := f.svc.MostClaimedOffer(context.Background())
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, f.whop.ID(), offer.WhopID)
	assert.Equal(t, "trading-alpha", offer.WhopSlug)
	assert.Equal(t, int64(3), offer.ClaimCount)
}

func TestMostClaimedOffer_FallsBackToEventVolume(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()

	// Only clicks in the ledger, no code copies at all.
	f.seedEvent(f.whop.ID(), nil, tracking.ActionOfferClick, "/a", now)
	f.seedEvent(f.whop.ID(), nil, tracking.ActionButtonClick, "/a", now)

	offer, err := f.svc.MostClaimedOffer(context.Background())
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, f.whop.ID(), offer.WhopID)
	assert.Equal(t, int64(2), offer.ClaimCount)
}

func TestMostClaimedOffer_DeletedLeadingPromoFallsBack(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()

	// The ledger keeps events for promo codes that were deleted later, so
	// the top copy count can point at a code that no longer exists.
	deletedPromoID := uuid.New()
	for i := 0; i < 5; i++ {
		f.seedEvent(f.whop.ID(), &deletedPromoID, tracking.ActionCodeCopy, "/a", now)
	}
	liveID := f.promo.ID()
	f.seedEvent(f.whop.ID(), &liveID, tracking.ActionCodeCopy, "/a", now)

	offer, err := f.svc.MostClaimedOffer(context.Background())
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, f.whop.ID(), offer.WhopID)
	assert.Equal(t, int64(6), offer.ClaimCount)
}

func TestMostClaimedOffer_EmptyLedgerYieldsNil(t *testing.T) {
	f := newStatsFixture(t)

	offer, err := f.svc.MostClaimedOffer(context.Background())
	require.NoError(t, err)
	assert.Nil(t, offer)
}

func TestSiteStatistics_Aggregates(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()
	promoID := f.promo.ID()

	require.NoError(t, f.whop.Publish(now.UTC()))
	f.seedEvent(f.whop.ID(), &promoID, tracking.ActionCodeCopy, "/a", now)
	f.seedEvent(f.whop.ID(), &promoID, tracking.ActionCodeCopy, "/b", now)
	f.seedEvent(f.whop.ID(), nil, tracking.ActionOfferClick, "/b", now)

	stats := f.svc.SiteStatistics(context.Background())
	assert.Equal(t, int64(2), stats.TotalUsers, "distinct paths")
	assert.Equal(t, int64(2), stats.PromoCodesClaimed)
	assert.Equal(t, int64(1), stats.ActiveWhopsCount)
	assert.Equal(t, stats.ActiveWhopsCount, stats.TotalOffersAvailable)
	require.NotNil(t, stats.MostClaimedOffer)
	assert.Equal(t, f.whop.ID(), stats.MostClaimedOffer.WhopID)
}

func TestSiteStatistics_DegradesInsteadOfFailing(t *testing.T) {
	f := newStatsFixture(t)
	f.events.queryErr = errors.New("connection refused")

	stats := f.svc.SiteStatistics(context.Background())
	require.NotNil(t, stats)
	assert.Equal(t, int64(0), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.PromoCodesClaimed)
	assert.Nil(t, stats.MostClaimedOffer)
}

func TestSiteStatistics_PartialDegrade(t *testing.T) {
	f := newStatsFixture(t)
	now := time.Now()
	f.seedEvent(f.whop.ID(), nil, tracking.ActionOfferClick, "/a", now)
	f.whopRepo.countErr = errors.New("connection refused")

	stats := f.svc.SiteStatistics(context.Background())
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.ActiveWhopsCount)
}

package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/domain/promo"
	"github.com/whopgrid/service-catalog/internal/domain/review"
	"github.com/whopgrid/service-catalog/internal/domain/settings"
	"github.com/whopgrid/service-catalog/internal/domain/tracking"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

// fakeWhopRepo is an in-memory WhopRepository that mirrors the store's
// batch ordering: publish oldest-first, unpublish newest-first.
type fakeWhopRepo struct {
	mu       sync.Mutex
	whops    map[uuid.UUID]*whop.Whop
	countErr error
	batchErr error
}

func newFakeWhopRepo() *fakeWhopRepo {
	return &fakeWhopRepo{whops: make(map[uuid.UUID]*whop.Whop)}
}

func (r *fakeWhopRepo) add(w *whop.Whop) { r.whops[w.ID()] = w }

func (r *fakeWhopRepo) Save(ctx context.Context, w *whop.Whop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.whops {
		if existing.Slug() == w.Slug() {
			return domain.NewConflictError("slug already exists")
		}
	}
	r.whops[w.ID()] = w
	return nil
}

func (r *fakeWhopRepo) Update(ctx context.Context, w *whop.Whop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.whops[w.ID()]; !ok {
		return domain.NewNotFoundError("whop", w.ID().String())
	}
	r.whops[w.ID()] = w
	return nil
}

func (r *fakeWhopRepo) FindByID(ctx context.Context, id uuid.UUID) (*whop.Whop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.whops[id]
	if !ok {
		return nil, domain.NewNotFoundError("whop", id.String())
	}
	return w, nil
}

func (r *fakeWhopRepo) FindBySlug(ctx context.Context, slug string) (*whop.Whop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.whops {
		if w.Slug() == slug {
			return w, nil
		}
	}
	return nil, domain.NewNotFoundError("whop", slug)
}

func (r *fakeWhopRepo) ListPublished(ctx context.Context) ([]*whop.Whop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*whop.Whop
	for _, w := range r.whops {
		if w.IsPublished() {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder() != out[j].DisplayOrder() {
			return out[i].DisplayOrder() < out[j].DisplayOrder()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r *fakeWhopRepo) ListAll(ctx context.Context, page, limit int) ([]*whop.Whop, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sortedByAge()
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeWhopRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.whops[id]; !ok {
		return domain.NewNotFoundError("whop", id.String())
	}
	delete(r.whops, id)
	return nil
}

func (r *fakeWhopRepo) PublishBatch(ctx context.Context, limit int, at time.Time) (int64, error) {
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*whop.Whop
	for _, w := range r.whops {
		if !w.IsPublished() {
			pending = append(pending, w)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt().Equal(pending[j].CreatedAt()) {
			return pending[i].CreatedAt().Before(pending[j].CreatedAt())
		}
		return pending[i].ID().String() < pending[j].ID().String()
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	for _, w := range pending {
		if err := w.Publish(at); err != nil {
			return 0, err
		}
	}
	return int64(len(pending)), nil
}

func (r *fakeWhopRepo) UnpublishBatch(ctx context.Context, limit int) (int64, error) {
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var published []*whop.Whop
	for _, w := range r.whops {
		if w.IsPublished() {
			published = append(published, w)
		}
	}
	sort.Slice(published, func(i, j int) bool {
		if !published[i].PublishedAt().Equal(*published[j].PublishedAt()) {
			return published[i].PublishedAt().After(*published[j].PublishedAt())
		}
		return published[i].ID().String() > published[j].ID().String()
	})
	if len(published) > limit {
		published = published[:limit]
	}
	for _, w := range published {
		w.Unpublish()
	}
	return int64(len(published)), nil
}

func (r *fakeWhopRepo) ResetPublication(ctx context.Context, limit int, at time.Time) error {
	if r.batchErr != nil {
		return r.batchErr
	}
	r.mu.Lock()
	for _, w := range r.whops {
		w.Unpublish()
	}
	r.mu.Unlock()
	_, err := r.PublishBatch(ctx, limit, at)
	return err
}

func (r *fakeWhopRepo) CountByPublication(ctx context.Context) (whop.PublicationCounts, error) {
	if r.countErr != nil {
		return whop.PublicationCounts{}, r.countErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts whop.PublicationCounts
	for _, w := range r.whops {
		counts.Total++
		if w.IsPublished() {
			counts.Published++
		} else {
			counts.Unpublished++
		}
	}
	return counts, nil
}

func (r *fakeWhopRepo) sortedByAge() []*whop.Whop {
	var all []*whop.Whop
	for _, w := range r.whops {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt().Before(all[j].CreatedAt())
	})
	return all
}

// fakePromoRepo is an in-memory PromoRepository.
type fakePromoRepo struct {
	promos map[uuid.UUID]*promo.PromoCode
}

func newFakePromoRepo() *fakePromoRepo {
	return &fakePromoRepo{promos: make(map[uuid.UUID]*promo.PromoCode)}
}

func (r *fakePromoRepo) add(p *promo.PromoCode) { r.promos[p.ID()] = p }

func (r *fakePromoRepo) Save(ctx context.Context, p *promo.PromoCode) error {
	r.promos[p.ID()] = p
	return nil
}

func (r *fakePromoRepo) Update(ctx context.Context, p *promo.PromoCode) error {
	if _, ok := r.promos[p.ID()]; !ok {
		return domain.NewNotFoundError("promo code", p.ID().String())
	}
	r.promos[p.ID()] = p
	return nil
}

func (r *fakePromoRepo) FindByID(ctx context.Context, id uuid.UUID) (*promo.PromoCode, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, domain.NewNotFoundError("promo code", id.String())
	}
	return p, nil
}

func (r *fakePromoRepo) ListByWhop(ctx context.Context, whopID uuid.UUID) ([]*promo.PromoCode, error) {
	var out []*promo.PromoCode
	for _, p := range r.promos {
		if p.WhopID() == whopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.promos[id]; !ok {
		return domain.NewNotFoundError("promo code", id.String())
	}
	delete(r.promos, id)
	return nil
}

func (r *fakePromoRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.promos[id]
	return ok, nil
}

// fakeEventRepo is an in-memory append-only ledger with the same derived
// aggregation rules as the SQL queries.
type fakeEventRepo struct {
	events    []*tracking.Event
	appendErr error
	queryErr  error
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{} }

func (r *fakeEventRepo) add(e *tracking.Event) { r.events = append(r.events, e) }

func (r *fakeEventRepo) Append(ctx context.Context, e *tracking.Event) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) UsageStats(ctx context.Context, promoCodeID uuid.UUID, dayStart, dayEnd time.Time) (tracking.UsageCounts, error) {
	if r.queryErr != nil {
		return tracking.UsageCounts{}, r.queryErr
	}
	var counts tracking.UsageCounts
	for _, e := range r.events {
		if e.ActionType() != tracking.ActionCodeCopy || e.PromoCodeID() == nil || *e.PromoCodeID() != promoCodeID {
			continue
		}
		counts.TotalCount++
		if !e.CreatedAt().Before(dayStart) && e.CreatedAt().Before(dayEnd) {
			counts.TodayCount++
		}
		at := e.CreatedAt()
		if counts.LastUsedAt == nil || at.After(*counts.LastUsedAt) {
			counts.LastUsedAt = &at
		}
	}
	return counts, nil
}

func (r *fakeEventRepo) ClickCount(ctx context.Context, whopID uuid.UUID, dayStart, dayEnd time.Time) (int64, error) {
	if r.queryErr != nil {
		return 0, r.queryErr
	}
	var count int64
	for _, e := range r.events {
		if e.WhopID() != whopID {
			continue
		}
		if e.ActionType() != tracking.ActionOfferClick && e.ActionType() != tracking.ActionButtonClick {
			continue
		}
		if !e.CreatedAt().Before(dayStart) && e.CreatedAt().Before(dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *fakeEventRepo) TopPromoByCopies(ctx context.Context) (tracking.TopEntry, error) {
	if r.queryErr != nil {
		return tracking.TopEntry{}, r.queryErr
	}
	counts := make(map[uuid.UUID]int64)
	for _, e := range r.events {
		if e.ActionType() == tracking.ActionCodeCopy && e.PromoCodeID() != nil {
			counts[*e.PromoCodeID()]++
		}
	}
	return topOf(counts)
}

func (r *fakeEventRepo) TopWhopByAnyEvent(ctx context.Context) (tracking.TopEntry, error) {
	if r.queryErr != nil {
		return tracking.TopEntry{}, r.queryErr
	}
	counts := make(map[uuid.UUID]int64)
	for _, e := range r.events {
		counts[e.WhopID()]++
	}
	return topOf(counts)
}

func (r *fakeEventRepo) DistinctPathCount(ctx context.Context) (int64, error) {
	if r.queryErr != nil {
		return 0, r.queryErr
	}
	paths := make(map[string]struct{})
	for _, e := range r.events {
		paths[e.Path()] = struct{}{}
	}
	return int64(len(paths)), nil
}

func (r *fakeEventRepo) TotalCopyCount(ctx context.Context) (int64, error) {
	if r.queryErr != nil {
		return 0, r.queryErr
	}
	var count int64
	for _, e := range r.events {
		if e.ActionType() == tracking.ActionCodeCopy {
			count++
		}
	}
	return count, nil
}

// topOf picks the highest count, ties broken by lowest id.
func topOf(counts map[uuid.UUID]int64) (tracking.TopEntry, error) {
	var top tracking.TopEntry
	for id, count := range counts {
		if count > top.Count || (count == top.Count && top.Count > 0 && id.String() < top.ID.String()) {
			top = tracking.TopEntry{ID: id, Count: count}
		}
	}
	if top.Count == 0 {
		return tracking.TopEntry{}, domain.NewNotFoundError("top entry", "none")
	}
	return top, nil
}

// fakeReviewRepo is an in-memory ReviewRepository that recomputes the whop
// rating over verified reviews like the SQL implementation does.
type fakeReviewRepo struct {
	reviews map[uuid.UUID]*review.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*review.Review)}
}

func (r *fakeReviewRepo) Save(ctx context.Context, rv *review.Review) error {
	r.reviews[rv.ID()] = rv
	return nil
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, domain.NewNotFoundError("review", id.String())
	}
	return rv, nil
}

func (r *fakeReviewRepo) ListByWhop(ctx context.Context, whopID uuid.UUID, verifiedOnly bool) ([]*review.Review, error) {
	var out []*review.Review
	for _, rv := range r.reviews {
		if rv.WhopID() != whopID {
			continue
		}
		if verifiedOnly && !rv.Verified() {
			continue
		}
		out = append(out, rv)
	}
	return out, nil
}

func (r *fakeReviewRepo) ListAll(ctx context.Context, page, limit int) ([]*review.Review, int64, error) {
	var out []*review.Review
	for _, rv := range r.reviews {
		out = append(out, rv)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) Verify(ctx context.Context, id uuid.UUID) (*review.Review, float64, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, 0, domain.NewNotFoundError("review", id.String())
	}
	if err := rv.Verify(); err != nil {
		return nil, 0, err
	}
	return rv, r.meanVerified(rv.WhopID()), nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.reviews[id]; !ok {
		return domain.NewNotFoundError("review", id.String())
	}
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) meanVerified(whopID uuid.UUID) float64 {
	var sum, n int
	for _, rv := range r.reviews {
		if rv.WhopID() == whopID && rv.Verified() {
			sum += rv.Rating()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// fakeSettingsRepo is an in-memory SettingsRepository.
type fakeSettingsRepo struct {
	current *settings.SiteSettings
}

func (r *fakeSettingsRepo) GetOrCreateDefault(ctx context.Context) (*settings.SiteSettings, error) {
	if r.current == nil {
		r.current = settings.Default()
	}
	return r.current, nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, s *settings.SiteSettings) error {
	r.current = s
	return nil
}

package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	userdomain "github.com/cristianortiz/numismaticMarket/internal/user/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore backs the fake repositories; fakeTx snapshots it so a failed unit
// of work leaves no trace, like a rolled back transaction.
type memStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]domain.Listing
	bids     []domain.Bid
	watch    map[[2]uuid.UUID]time.Time

	// beforeListingSave simulates a competing writer landing mid transaction.
	beforeListingSave func(s *memStore, id uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		listings: map[uuid.UUID]domain.Listing{},
		watch:    map[[2]uuid.UUID]time.Time{},
	}
}

type snapshot struct {
	listings map[uuid.UUID]domain.Listing
	bids     []domain.Bid
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	listings := make(map[uuid.UUID]domain.Listing, len(s.listings))
	for k, v := range s.listings {
		listings[k] = v
	}
	return snapshot{listings: listings, bids: append([]domain.Bid(nil), s.bids...)}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = snap.listings
	s.bids = snap.bids
}

func (s *memStore) put(l *domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = *l
}

func (s *memStore) listing(id uuid.UUID) domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings[id]
}

func (s *memStore) bidCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bids)
}

type fakeTx struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	snap := f.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		f.store.restore(snap)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fakeListingRepo struct{ s *memStore }

func (r fakeListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.s.put(l)
	return nil
}

func (r fakeListingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

func (r fakeListingRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r fakeListingRepo) Save(_ context.Context, _ pgx.Tx, l *domain.Listing, expected decimal.Decimal) error {
	if r.s.beforeListingSave != nil {
		r.s.beforeListingSave(r.s, l.ID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.listings[l.ID]
	if !ok || !stored.CurrentPrice.Equal(expected) {
		return domain.ErrConcurrentBid
	}
	stored.CurrentPrice = l.CurrentPrice
	stored.EndsAt = l.EndsAt
	stored.Status = l.Status
	r.s.listings[l.ID] = stored
	return nil
}

func (r fakeListingRepo) filter(keep func(domain.Listing) bool) []*domain.Listing {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Listing{}
	for _, l := range r.s.listings {
		if keep(l) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EndsAt.Equal(out[j].EndsAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].EndsAt.Before(out[j].EndsAt)
	})
	return out
}

func (r fakeListingRepo) GetActive(_ context.Context, now time.Time) ([]*domain.Listing, error) {
	return r.filter(func(l domain.Listing) bool { return l.Status == domain.StatusActive && l.EndsAt.After(now) }), nil
}

func (r fakeListingRepo) GetExpiredActive(_ context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	out := r.filter(func(l domain.Listing) bool { return l.Status == domain.StatusActive && !l.EndsAt.After(now) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeListingRepo) CountActive(ctx context.Context, now time.Time) (int64, error) {
	active, _ := r.GetActive(ctx, now)
	return int64(len(active)), nil
}

func (r fakeListingRepo) CountEndingBetween(_ context.Context, from, to time.Time) (int64, error) {
	return int64(len(r.filter(func(l domain.Listing) bool {
		return l.Status == domain.StatusActive && l.EndsAt.After(from) && !l.EndsAt.After(to)
	}))), nil
}

type fakeBidRepo struct{ s *memStore }

func (r fakeBidRepo) Save(_ context.Context, _ pgx.Tx, b *domain.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bids = append(r.s.bids, *b)
	return nil
}

func (r fakeBidRepo) selectBids(keep func(domain.Bid) bool, less func(a, b domain.Bid) bool) []*domain.Bid {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Bid{}
	for _, b := range r.s.bids {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(*out[i], *out[j]) })
	return out
}

func byAmountDesc(a, b domain.Bid) bool { return a.Amount.GreaterThan(b.Amount) }

func (r fakeBidRepo) GetByListing(_ context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	return r.selectBids(func(b domain.Bid) bool { return b.ListingID == listingID }, byAmountDesc), nil
}

func (r fakeBidRepo) GetByBidder(_ context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	return r.selectBids(func(b domain.Bid) bool { return b.BidderID == bidderID },
		func(a, b domain.Bid) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r fakeBidRepo) GetHighest(_ context.Context, _ pgx.Tx, listingID uuid.UUID) (*domain.Bid, error) {
	bids := r.selectBids(func(b domain.Bid) bool { return b.ListingID == listingID }, byAmountDesc)
	if len(bids) == 0 {
		return nil, nil
	}
	return bids[0], nil
}

func (r fakeBidRepo) MarkWinning(_ context.Context, _ pgx.Tx, bidID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bids {
		if r.s.bids[i].ID == bidID {
			r.s.bids[i].IsWinning = true
		}
	}
	return nil
}

func (r fakeBidRepo) SummarizeSince(_ context.Context, since time.Time) (int64, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	sum := decimal.Zero
	for _, b := range r.s.bids {
		if !b.CreatedAt.Before(since) {
			n++
			sum = sum.Add(b.Amount)
		}
	}
	return n, sum, nil
}

type fakeWatchlistRepo struct{ s *memStore }

func (r fakeWatchlistRepo) Add(_ context.Context, userID, listingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[listingID]; !ok {
		return domain.ErrListingNotFound
	}
	key := [2]uuid.UUID{userID, listingID}
	if _, ok := r.s.watch[key]; !ok {
		r.s.watch[key] = time.Now()
	}
	return nil
}

func (r fakeWatchlistRepo) Remove(_ context.Context, userID, listingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.watch, [2]uuid.UUID{userID, listingID})
	return nil
}

func (r fakeWatchlistRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Listing{}
	for key := range r.s.watch {
		if key[0] == userID {
			l := r.s.listings[key[1]]
			out = append(out, &l)
		}
	}
	return out, nil
}

type fakeUserRepo map[uuid.UUID]bool

func (f fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*userdomain.User, error) {
	if !f[id] {
		return nil, userdomain.ErrUserNotFound
	}
	return &userdomain.User{ID: id}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

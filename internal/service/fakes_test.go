package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/pricing"
	"github.com/iliyamo/auction-market/internal/queue"
	"github.com/iliyamo/auction-market/internal/repository"
)

// fakeStore is an in-memory Store. WithAuctionTx snapshots the auction and
// its ledger and restores both when the callback errors, mirroring the
// rollback semantics of the SQL implementation.
type fakeStore struct {
	mu          sync.Mutex
	auctions    map[uint64]*model.Auction
	bids        map[uint64][]model.Bid
	categories  map[uint64]bool
	nextAuction uint64
	nextBid     uint64

	txErr map[uint64]error // per-auction injected failure
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		auctions:   map[uint64]*model.Auction{},
		bids:       map[uint64][]model.Bid{},
		categories: map[uint64]bool{1: true},
		txErr:      map[uint64]error{},
	}
}

func (s *fakeStore) addAuction(a model.Auction) *model.Auction {
	s.nextAuction++
	a.ID = s.nextAuction
	if a.Status == "" {
		a.Status = model.StatusOngoing
	}
	if a.CurrentPrice == 0 {
		a.CurrentPrice = a.StartPrice
	}
	s.auctions[a.ID] = &a
	return s.auctions[a.ID]
}

func (s *fakeStore) addBid(auctionID, bidderID uint64, amount int64, at time.Time) {
	s.nextBid++
	s.bids[auctionID] = append(s.bids[auctionID], model.Bid{
		ID: s.nextBid, AuctionID: auctionID, BidderID: bidderID, Amount: amount, CreatedAt: at,
	})
}

func (s *fakeStore) InsertAuction(ctx context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAuction++
	a.ID = s.nextAuction
	a.Status = model.StatusOngoing
	a.CurrentPrice = a.StartPrice
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *fakeStore) AuctionDetail(ctx context.Context, id uint64) (*repository.AuctionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, repository.ErrAuctionNotFound
	}
	ledger := s.bids[id]
	det := &repository.AuctionDetail{
		Auction:      *a,
		CurrentPrice: pricing.CurrentPrice(a, ledger),
		Bids:         []repository.BidEntry{},
	}
	for i := len(ledger) - 1; i >= 0; i-- {
		b := ledger[i]
		det.Bids = append(det.Bids, repository.BidEntry{
			ID: b.ID, BidderID: b.BidderID, Amount: b.Amount, CreatedAt: b.CreatedAt,
		})
	}
	return det, nil
}

func (s *fakeStore) ListAuctions(ctx context.Context, q repository.AuctionListQuery, now time.Time) ([]repository.AuctionSummary, int64, error) {
	return []repository.AuctionSummary{}, 0, nil
}

func (s *fakeStore) ExpiredOngoing(ctx context.Context, now time.Time) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint64
	for id, a := range s.auctions {
		if a.Status == model.StatusOngoing && !a.CloseTime.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeStore) WithAuctionTx(ctx context.Context, id uint64, fn func(tx AuctionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.txErr[id]; ok && err != nil {
		return err
	}
	a, ok := s.auctions[id]
	if !ok {
		return repository.ErrAuctionNotFound
	}

	snapshot := *a
	bidsSnapshot := append([]model.Bid(nil), s.bids[id]...)

	if err := fn(&fakeTx{store: s, auction: a}); err != nil {
		*a = snapshot
		s.bids[id] = bidsSnapshot
		return err
	}
	return nil
}

func (s *fakeStore) CategoryExists(ctx context.Context, id uint64) (bool, error) {
	return s.categories[id], nil
}

func (s *fakeStore) Dashboard(ctx context.Context, userID uint64, now time.Time) (*repository.Dashboard, error) {
	return &repository.Dashboard{}, nil
}

// fakeTx operates directly on the store maps; the store mutex is already
// held for the duration of the callback.
type fakeTx struct {
	store   *fakeStore
	auction *model.Auction
}

func (t *fakeTx) Auction() *model.Auction { return t.auction }

func (t *fakeTx) Bids(ctx context.Context) ([]model.Bid, error) {
	return append([]model.Bid(nil), t.store.bids[t.auction.ID]...), nil
}

func (t *fakeTx) InsertBid(ctx context.Context, bidderID uint64, amount int64, at time.Time) (uint64, error) {
	t.store.nextBid++
	t.store.bids[t.auction.ID] = append(t.store.bids[t.auction.ID], model.Bid{
		ID: t.store.nextBid, AuctionID: t.auction.ID, BidderID: bidderID, Amount: amount, CreatedAt: at,
	})
	return t.store.nextBid, nil
}

func (t *fakeTx) SetCurrentPrice(ctx context.Context, price int64) error {
	t.auction.CurrentPrice = price
	return nil
}

func (t *fakeTx) Close(ctx context.Context, winnerID *uint64, amount *int64) (bool, error) {
	if t.auction.Status != model.StatusOngoing {
		return false, nil
	}
	t.auction.Status = model.StatusEnded
	t.auction.WinnerID = winnerID
	t.auction.WinningAmount = amount
	if amount != nil {
		t.auction.CurrentPrice = *amount
	}
	return true, nil
}

// fakePublisher records published events in order.
type fakePublisher struct {
	bidEvents   []queue.BidPlacedEvent
	closeEvents []queue.AuctionClosedEvent
}

func (p *fakePublisher) PublishBidPlaced(ctx context.Context, ev queue.BidPlacedEvent) error {
	p.bidEvents = append(p.bidEvents, ev)
	return nil
}

func (p *fakePublisher) PublishAuctionClosed(ctx context.Context, ev queue.AuctionClosedEvent) error {
	p.closeEvents = append(p.closeEvents, ev)
	return nil
}

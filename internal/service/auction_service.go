package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/auction-market/internal/clock"
	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/pricing"
	"github.com/iliyamo/auction-market/internal/queue"
	"github.com/iliyamo/auction-market/internal/repository"
)

// AuctionService owns the auction lifecycle. Every state-exposing entry
// point sweeps expired auctions first, so callers never observe an auction
// that is past its close time but still flagged ongoing.
type AuctionService struct {
	store  Store
	events EventPublisher
	clock  clock.Clock
}

// NewAuctionService wires the service. events may be nil when no broker is
// configured; publishing is skipped in that case.
func NewAuctionService(store Store, events EventPublisher, clk clock.Clock) *AuctionService {
	return &AuctionService{store: store, events: events, clock: clk}
}

// CreateAuctionInput carries the validated-at-the-service-layer fields for
// a new listing. Money values are integer minor units.
type CreateAuctionInput struct {
	Title         string
	Description   string
	CategoryID    *uint64
	StartPrice    int64
	PurchasePrice *int64
	CloseTime     time.Time
	ImageURL      string
}

// Create validates the input and inserts a new ongoing auction for the
// seller. The close time is fixed here and never changes afterwards.
func (s *AuctionService) Create(ctx context.Context, sellerID uint64, in CreateAuctionInput) (*model.Auction, error) {
	now := s.clock.Now()

	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if in.CategoryID == nil {
		return nil, &ValidationError{Field: "categoryId", Reason: "required"}
	}
	if in.StartPrice <= 0 {
		return nil, &ValidationError{Field: "startPrice", Reason: "must be a positive amount"}
	}
	if in.PurchasePrice != nil && *in.PurchasePrice < in.StartPrice {
		return nil, &ValidationError{Field: "immediatePurchasePrice", Reason: "must not be below the start price"}
	}
	if in.CloseTime.IsZero() {
		return nil, &ValidationError{Field: "closeTime", Reason: "required"}
	}
	if !in.CloseTime.After(now) {
		return nil, &ValidationError{Field: "closeTime", Reason: "must be in the future"}
	}

	ok, err := s.store.CategoryExists(ctx, *in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return nil, &ValidationError{Field: "categoryId", Reason: "unknown category"}
	}

	a := &model.Auction{
		SellerID:      sellerID,
		CategoryID:    in.CategoryID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		ImageURL:      in.ImageURL,
		StartPrice:    in.StartPrice,
		PurchasePrice: in.PurchasePrice,
		CloseTime:     in.CloseTime.UTC(),
	}
	if err := s.store.InsertAuction(ctx, a); err != nil {
		return nil, fmt.Errorf("insert auction: %w", err)
	}
	return a, nil
}

// PlaceBid accepts a bid on an ongoing auction. All checks and the insert
// happen inside the per-auction critical section, so two concurrent bids
// at the same amount cannot both pass the minimum check.
func (s *AuctionService) PlaceBid(ctx context.Context, bidderID, auctionID uint64, amount int64) (*model.Bid, error) {
	s.sweep(ctx)
	now := s.clock.Now()

	var (
		bid     *model.Bid
		auction model.Auction
	)
	err := s.store.WithAuctionTx(ctx, auctionID, func(tx AuctionTx) error {
		a := tx.Auction()
		if !a.Open(now) {
			return ErrAuctionClosed
		}
		if a.SellerID == bidderID {
			return ErrSelfBidForbidden
		}
		bids, err := tx.Bids(ctx)
		if err != nil {
			return fmt.Errorf("load bid ledger: %w", err)
		}
		min := pricing.MinimumNextBid(a, bids)
		if amount < min {
			return &BidTooLowError{Minimum: min}
		}
		id, err := tx.InsertBid(ctx, bidderID, amount, now)
		if err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		if err := tx.SetCurrentPrice(ctx, amount); err != nil {
			return fmt.Errorf("update current price: %w", err)
		}
		auction = *a
		bid = &model.Bid{ID: id, AuctionID: auctionID, BidderID: bidderID, Amount: amount, CreatedAt: now}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.events != nil {
		ev := queue.BidPlacedEvent{
			BidID:        bid.ID,
			AuctionID:    auctionID,
			AuctionTitle: auction.Title,
			BidderID:     bidderID,
			SellerID:     auction.SellerID,
			Amount:       amount,
			PlacedAt:     now.Format(time.RFC3339),
		}
		if err := s.events.PublishBidPlaced(ctx, ev); err != nil {
			log.Printf("auction-service: publish bid.placed failed: %v", err)
		}
	}
	return bid, nil
}

// Purchase ends an ongoing auction immediately at its immediate purchase
// price. Unavailable when no immediate price is set or when bidding has
// already reached it; in that case the auction runs to its close time.
func (s *AuctionService) Purchase(ctx context.Context, buyerID, auctionID uint64) (int64, error) {
	s.sweep(ctx)
	now := s.clock.Now()

	var (
		amount  int64
		auction model.Auction
	)
	err := s.store.WithAuctionTx(ctx, auctionID, func(tx AuctionTx) error {
		a := tx.Auction()
		if !a.Open(now) {
			return ErrAuctionClosed
		}
		if a.SellerID == buyerID {
			return ErrSelfPurchaseForbidden
		}
		if a.PurchasePrice == nil {
			return ErrPurchaseUnavailable
		}
		bids, err := tx.Bids(ctx)
		if err != nil {
			return fmt.Errorf("load bid ledger: %w", err)
		}
		if pricing.CurrentPrice(a, bids) >= *a.PurchasePrice {
			return ErrPurchaseUnavailable
		}
		price := *a.PurchasePrice
		done, err := tx.Close(ctx, &buyerID, &price)
		if err != nil {
			return fmt.Errorf("close auction: %w", err)
		}
		if !done {
			return ErrAuctionClosed
		}
		amount = price
		auction = *a
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if s.events != nil {
		ev := queue.AuctionClosedEvent{
			AuctionID:     auctionID,
			AuctionTitle:  auction.Title,
			SellerID:      auction.SellerID,
			WinnerID:      &buyerID,
			WinningAmount: &amount,
			Reason:        "purchase",
			ClosedAt:      now.Format(time.RFC3339),
		}
		if err := s.events.PublishAuctionClosed(ctx, ev); err != nil {
			log.Printf("auction-service: publish auction.closed failed: %v", err)
		}
	}
	return amount, nil
}

// Get returns the auction detail view, sweeping first so a just-expired
// auction reads back as ended with its winner settled.
func (s *AuctionService) Get(ctx context.Context, auctionID uint64) (*repository.AuctionDetail, error) {
	s.sweep(ctx)
	det, err := s.store.AuctionDetail(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load auction detail: %w", err)
	}
	return det, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// List returns one page of auction summaries plus the total match count
// before pagination. Page numbers are 1-indexed; out-of-range values are
// normalized rather than rejected.
func (s *AuctionService) List(ctx context.Context, q repository.AuctionListQuery) ([]repository.AuctionSummary, int64, error) {
	s.sweep(ctx)

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	items, total, err := s.store.ListAuctions(ctx, q, s.clock.Now())
	if err != nil {
		return nil, 0, fmt.Errorf("list auctions: %w", err)
	}
	return items, total, nil
}

// Dashboard returns the per-user dashboard after a sweep, so stats and
// statuses reflect every auction that has expired by now.
func (s *AuctionService) Dashboard(ctx context.Context, userID uint64) (*repository.Dashboard, error) {
	s.sweep(ctx)
	d, err := s.store.Dashboard(ctx, userID, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}

// sweep settles expired auctions before a read or a guarded write. Sweep
// failures are logged, not surfaced; the per-operation checks still hold
// without it.
func (s *AuctionService) sweep(ctx context.Context) {
	if _, err := s.CloseExpired(ctx); err != nil {
		log.Printf("auction-service: expiry sweep: %v", err)
	}
}

package service

import (
	"context"
	"time"

	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/queue"
	"github.com/iliyamo/auction-market/internal/repository"
)

// AuctionTx is the transaction-scoped view of one auction handed to
// critical sections. The auction row is locked for the lifetime of the
// callback, so reads through it are consistent with the writes.
type AuctionTx interface {
	Auction() *model.Auction
	Bids(ctx context.Context) ([]model.Bid, error)
	InsertBid(ctx context.Context, bidderID uint64, amount int64, at time.Time) (uint64, error)
	SetCurrentPrice(ctx context.Context, price int64) error
	Close(ctx context.Context, winnerID *uint64, amount *int64) (bool, error)
}

// Store is the persistence surface the service depends on. The production
// implementation is SQLStore; tests substitute in-memory fakes.
type Store interface {
	InsertAuction(ctx context.Context, a *model.Auction) error
	AuctionDetail(ctx context.Context, id uint64) (*repository.AuctionDetail, error)
	ListAuctions(ctx context.Context, q repository.AuctionListQuery, now time.Time) ([]repository.AuctionSummary, int64, error)
	ExpiredOngoing(ctx context.Context, now time.Time) ([]uint64, error)
	WithAuctionTx(ctx context.Context, id uint64, fn func(tx AuctionTx) error) error
	CategoryExists(ctx context.Context, id uint64) (bool, error)
	Dashboard(ctx context.Context, userID uint64, now time.Time) (*repository.Dashboard, error)
}

// EventPublisher publishes domain events after successful state changes.
// Publishing is best effort; the service logs failures and never fails a
// request over them.
type EventPublisher interface {
	PublishBidPlaced(ctx context.Context, event queue.BidPlacedEvent) error
	PublishAuctionClosed(ctx context.Context, event queue.AuctionClosedEvent) error
}

// SQLStore adapts the MySQL repositories to the Store interface.
type SQLStore struct {
	auctions   *repository.AuctionRepo
	categories *repository.CategoryRepo
	dashboards *repository.DashboardRepo
}

func NewSQLStore(auctions *repository.AuctionRepo, categories *repository.CategoryRepo, dashboards *repository.DashboardRepo) *SQLStore {
	return &SQLStore{auctions: auctions, categories: categories, dashboards: dashboards}
}

func (s *SQLStore) InsertAuction(ctx context.Context, a *model.Auction) error {
	return s.auctions.Create(ctx, a)
}

func (s *SQLStore) AuctionDetail(ctx context.Context, id uint64) (*repository.AuctionDetail, error) {
	return s.auctions.Detail(ctx, id)
}

func (s *SQLStore) ListAuctions(ctx context.Context, q repository.AuctionListQuery, now time.Time) ([]repository.AuctionSummary, int64, error) {
	return s.auctions.List(ctx, q, now)
}

func (s *SQLStore) ExpiredOngoing(ctx context.Context, now time.Time) ([]uint64, error) {
	return s.auctions.ExpiredOngoing(ctx, now)
}

func (s *SQLStore) WithAuctionTx(ctx context.Context, id uint64, fn func(tx AuctionTx) error) error {
	return s.auctions.WithAuctionTx(ctx, id, func(tx *repository.AuctionTx) error {
		return fn(tx)
	})
}

func (s *SQLStore) CategoryExists(ctx context.Context, id uint64) (bool, error) {
	return s.categories.Exists(ctx, id)
}

func (s *SQLStore) Dashboard(ctx context.Context, userID uint64, now time.Time) (*repository.Dashboard, error) {
	return s.dashboards.Fetch(ctx, userID, now)
}

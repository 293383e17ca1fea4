package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/pricing"
)

// AuctionRepo provides data access to the auctions table. Reads that
// surface a price reconcile against the bid ledger instead of trusting the
// cached current_price column. All timestamps are stored as UTC DATETIME.
type AuctionRepo struct {
	db *sql.DB
}

// NewAuctionRepo returns a new AuctionRepo bound to the given database.
func NewAuctionRepo(db *sql.DB) *AuctionRepo { return &AuctionRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *AuctionRepo) DB() *sql.DB { return r.db }

const auctionColumns = `id, seller_id, category_id, title, description, image_url,
	start_price, current_price, immediate_purchase_price, status, close_time,
	winner_id, winning_bid_amount, created_at, updated_at`

// scanAuction reads one auctions row. The row must select auctionColumns
// in order.
func scanAuction(row interface{ Scan(...any) error }) (*model.Auction, error) {
	a := &model.Auction{}
	var (
		categoryID  sql.NullInt64
		description sql.NullString
		imageURL    sql.NullString
		purchase    sql.NullInt64
		winnerID    sql.NullInt64
		winning     sql.NullInt64
	)
	err := row.Scan(
		&a.ID, &a.SellerID, &categoryID, &a.Title, &description, &imageURL,
		&a.StartPrice, &a.CurrentPrice, &purchase, &a.Status, &a.CloseTime,
		&winnerID, &winning, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		v := uint64(categoryID.Int64)
		a.CategoryID = &v
	}
	a.Description = description.String
	a.ImageURL = imageURL.String
	if purchase.Valid {
		v := purchase.Int64
		a.PurchasePrice = &v
	}
	if winnerID.Valid {
		v := uint64(winnerID.Int64)
		a.WinnerID = &v
	}
	if winning.Valid {
		v := winning.Int64
		a.WinningAmount = &v
	}
	return a, nil
}

// Create inserts a new auction row and populates the generated ID. The
// caller is responsible for having validated the record; the insert always
// starts the auction as ongoing with current_price = start_price.
func (r *AuctionRepo) Create(ctx context.Context, a *model.Auction) error {
	var categoryID any
	if a.CategoryID != nil {
		categoryID = *a.CategoryID
	}
	var description any
	if a.Description != "" {
		description = a.Description
	}
	var imageURL any
	if a.ImageURL != "" {
		imageURL = a.ImageURL
	}
	var purchase any
	if a.PurchasePrice != nil {
		purchase = *a.PurchasePrice
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO auctions
			(seller_id, category_id, title, description, image_url,
			 start_price, current_price, immediate_purchase_price, status, close_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SellerID, categoryID, a.Title, description, imageURL,
		a.StartPrice, a.StartPrice, purchase, model.StatusOngoing,
		a.CloseTime.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.CurrentPrice = a.StartPrice
	a.Status = model.StatusOngoing
	return nil
}

// GetByID fetches a single auction row.
func (r *AuctionRepo) GetByID(ctx context.Context, id uint64) (*model.Auction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = ?`, id)
	a, err := scanAuction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuctionNotFound
	}
	return a, err
}

// BidEntry is one row of an auction's bid history as shown on the detail
// view, newest first.
type BidEntry struct {
	ID             uint64    `json:"id"`
	BidderID       uint64    `json:"bidder_id"`
	BidderNickname string    `json:"bidder_nickname"`
	Amount         int64     `json:"amount"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuctionDetail bundles an auction with its seller/category display names,
// the full bid history and the ledger-reconciled current price.
type AuctionDetail struct {
	Auction        model.Auction
	SellerNickname string
	CategoryName   string
	CurrentPrice   int64
	Bids           []BidEntry
}

// Detail loads an auction together with its bid history. The returned
// CurrentPrice is recomputed from the ledger; the stored column is only a
// cache and is not trusted here.
func (r *AuctionRepo) Detail(ctx context.Context, id uint64) (*AuctionDetail, error) {
	const q = `SELECT a.id, a.seller_id, a.category_id, a.title, a.description, a.image_url,
			a.start_price, a.current_price, a.immediate_purchase_price, a.status, a.close_time,
			a.winner_id, a.winning_bid_amount, a.created_at, a.updated_at,
			IFNULL(u.nickname, ''), IFNULL(c.name, '')
		FROM auctions a
		LEFT JOIN users u ON u.id = a.seller_id
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.id = ?`
	det := &AuctionDetail{}
	a := &det.Auction
	var (
		categoryID  sql.NullInt64
		description sql.NullString
		imageURL    sql.NullString
		purchase    sql.NullInt64
		winnerID    sql.NullInt64
		winning     sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.SellerID, &categoryID, &a.Title, &description, &imageURL,
		&a.StartPrice, &a.CurrentPrice, &purchase, &a.Status, &a.CloseTime,
		&winnerID, &winning, &a.CreatedAt, &a.UpdatedAt,
		&det.SellerNickname, &det.CategoryName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	if categoryID.Valid {
		v := uint64(categoryID.Int64)
		a.CategoryID = &v
	}
	a.Description = description.String
	a.ImageURL = imageURL.String
	if purchase.Valid {
		v := purchase.Int64
		a.PurchasePrice = &v
	}
	if winnerID.Valid {
		v := uint64(winnerID.Int64)
		a.WinnerID = &v
	}
	if winning.Valid {
		v := winning.Int64
		a.WinningAmount = &v
	}

	// Bid history, newest first, with the plain ledger rows kept alongside
	// so the current price can be recomputed from them.
	const bidQ = `SELECT b.id, b.bidder_id, IFNULL(u.nickname, ''), b.amount, b.created_at
		FROM bids b
		LEFT JOIN users u ON u.id = b.bidder_id
		WHERE b.auction_id = ?
		ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, bidQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Bids = []BidEntry{}
	ledger := []model.Bid{}
	for rows.Next() {
		var e BidEntry
		if err := rows.Scan(&e.ID, &e.BidderID, &e.BidderNickname, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		det.Bids = append(det.Bids, e)
		ledger = append(ledger, model.Bid{
			ID: e.ID, AuctionID: id, BidderID: e.BidderID,
			Amount: e.Amount, CreatedAt: e.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	det.CurrentPrice = pricing.CurrentPrice(a, ledger)
	return det, nil
}

// ExpiredOngoing returns the ids of auctions still flagged ongoing whose
// close time has passed. The sweep closes each of them independently.
func (r *AuctionRepo) ExpiredOngoing(ctx context.Context, now time.Time) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM auctions WHERE status = ? AND close_time <= ?`,
		model.StatusOngoing, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

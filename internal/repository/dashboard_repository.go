package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// DashboardRepo assembles the per-user dashboard: profile, aggregate stats,
// the user's own listings and their bid history. Every price surfaced here
// goes through the ledger-reconciling expression, because the dashboard is
// exactly where a stale current_price cache would be most visible.
type DashboardRepo struct{ db *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// Profile is the user header of the dashboard.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DashboardStats aggregates the user's marketplace activity. TotalAmount
// sums winning amounts of finished trades the user took part in on either
// side.
type DashboardStats struct {
	Listed      int   `json:"listed"`
	Bidding     int   `json:"bidding"`
	Wins        int64 `json:"wins"`
	TotalAmount int64 `json:"totalAmount"`
}

// DashboardAuction is one of the user's own listings.
type DashboardAuction struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	CurrentPrice int64     `json:"currentPrice"`
	Status       string    `json:"status"`
	CloseTime    time.Time `json:"closeTime"`
	RegisteredAt time.Time `json:"registeredAt"`
	BidCount     int64     `json:"bidCount"`
}

// DashboardBid is one auction the user has bid on. MyBid is the user's
// standing in that auction: the winning amount when they won, otherwise
// their own highest bid.
type DashboardBid struct {
	AuctionID    uint64    `json:"auction_id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	CurrentPrice int64     `json:"currentPrice"`
	Status       string    `json:"status"`
	CloseTime    time.Time `json:"closeTime"`
	MyBid        int64     `json:"myBid"`
	BidCount     int64     `json:"bidCount"`
}

// Dashboard bundles everything the my-page view needs.
type Dashboard struct {
	Profile    Profile            `json:"profile"`
	Stats      DashboardStats     `json:"stats"`
	MyAuctions []DashboardAuction `json:"myAuctions"`
	BidHistory []DashboardBid     `json:"bidHistory"`
}

// Fetch loads the dashboard for one user. Returns ErrUserNotFound when the
// user id does not exist.
func (r *DashboardRepo) Fetch(ctx context.Context, userID uint64, now time.Time) (*Dashboard, error) {
	ts := now.UTC().Format("2006-01-02 15:04:05")

	d := &Dashboard{MyAuctions: []DashboardAuction{}, BidHistory: []DashboardBid{}}

	err := r.db.QueryRowContext(ctx,
		"SELECT nickname, email FROM users WHERE id = ?", userID).
		Scan(&d.Profile.Name, &d.Profile.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Own listings, newest first.
	myQ := `SELECT a.id, a.title, IFNULL(c.name, ''), IFNULL(a.image_url, ''),
			` + currentPriceExpr + ` AS current_price,
			CASE WHEN a.status = 'ended' OR a.close_time <= ? THEN 'ended' ELSE 'ongoing' END AS status,
			a.close_time, a.created_at,
			IFNULL((SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id), 0) AS bid_count
		FROM auctions a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.seller_id = ?
		ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, myQ, ts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m DashboardAuction
		if err := rows.Scan(&m.ID, &m.Title, &m.Category, &m.ImageURL,
			&m.CurrentPrice, &m.Status, &m.CloseTime, &m.RegisteredAt, &m.BidCount); err != nil {
			return nil, err
		}
		d.MyAuctions = append(d.MyAuctions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Auctions the user has bid on, grouped per auction. When the user won,
	// their standing is the recorded winning amount; otherwise their own
	// highest bid.
	bidQ := `SELECT a.id, a.title, IFNULL(c.name, ''), IFNULL(a.image_url, ''),
			` + currentPriceExpr + ` AS current_price,
			CASE WHEN a.status = 'ended' OR a.close_time <= ? THEN 'ended' ELSE 'ongoing' END AS status,
			a.close_time,
			CASE
				WHEN a.winner_id = ? THEN COALESCE(a.winning_bid_amount, a.immediate_purchase_price, a.current_price)
				ELSE MAX(b.amount)
			END AS my_bid,
			COUNT(*) AS bid_count
		FROM bids b
		JOIN auctions a ON a.id = b.auction_id
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE b.bidder_id = ?
		GROUP BY a.id, a.title, c.name, a.image_url, a.status, a.close_time,
			a.start_price, a.current_price, a.immediate_purchase_price,
			a.winner_id, a.winning_bid_amount
		ORDER BY a.close_time DESC`
	brows, err := r.db.QueryContext(ctx, bidQ, ts, userID, userID)
	if err != nil {
		return nil, err
	}
	defer brows.Close()
	for brows.Next() {
		var b DashboardBid
		if err := brows.Scan(&b.AuctionID, &b.Title, &b.Category, &b.ImageURL,
			&b.CurrentPrice, &b.Status, &b.CloseTime, &b.MyBid, &b.BidCount); err != nil {
			return nil, err
		}
		d.BidHistory = append(d.BidHistory, b)
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM auctions WHERE winner_id = ? AND close_time <= ?",
		userID, ts).Scan(&d.Stats.Wins)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT IFNULL(SUM(winning_bid_amount), 0) FROM auctions
		 WHERE winning_bid_amount IS NOT NULL AND close_time <= ?
		 AND (seller_id = ? OR winner_id = ?)`,
		ts, userID, userID).Scan(&d.Stats.TotalAmount)
	if err != nil {
		return nil, err
	}

	d.Stats.Listed = len(d.MyAuctions)
	for _, b := range d.BidHistory {
		if b.Status == "ongoing" {
			d.Stats.Bidding++
		}
	}
	return d, nil
}

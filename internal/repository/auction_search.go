package repository

import (
	"context"
	"strings"
	"time"
)

// currentPriceExpr reconciles the cached current_price column against the
// bid ledger, falling back to the start price when no bids exist. The cache
// can drift, so every read that surfaces a price uses this expression
// instead of the raw column.
const currentPriceExpr = `GREATEST(
	IFNULL(a.current_price, 0),
	IFNULL((SELECT MAX(amount) FROM bids WHERE auction_id = a.id), 0),
	IFNULL(a.start_price, 0))`

// AuctionListQuery defines filters & pagination for browsing auctions.
// Page is 1-indexed. Status accepts "", "all", "ongoing" or "ended".
type AuctionListQuery struct {
	Status     string
	CategoryID uint64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string // latest | popular | priceDesc | endingSoon
	Page       int
	PageSize   int
}

// AuctionSummary is one row of the browse listing.
type AuctionSummary struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"image_url"`
	StartPrice     int64     `json:"start_price"`
	CurrentPrice   int64     `json:"current_price"`
	Status         string    `json:"status"`
	CloseTime      time.Time `json:"close_time"`
	CreatedAt      time.Time `json:"created_at"`
	SellerNickname string    `json:"seller_nickname"`
	CategoryName   string    `json:"category_name"`
	BidCount       int64     `json:"bid_count"`
}

// buildAuctionConditions assembles the WHERE clause for a list query.
// The ended filter matches rows already flagged ended OR whose close time
// has passed but have not been swept yet; the ongoing filter requires both
// the flag and a future close time. now is passed in rather than read from
// NOW() so the service clock stays authoritative.
func buildAuctionConditions(q AuctionListQuery, now time.Time) (string, []any) {
	where := []string{}
	args := []any{}
	ts := now.UTC().Format("2006-01-02 15:04:05")

	switch q.Status {
	case "", "all":
	case "ended":
		where = append(where, "(a.status = 'ended' OR a.close_time <= ?)")
		args = append(args, ts)
	case "ongoing":
		where = append(where, "(a.status = 'ongoing' AND a.close_time > ?)")
		args = append(args, ts)
	default:
		where = append(where, "a.status = ?")
		args = append(args, q.Status)
	}

	if q.CategoryID != 0 {
		where = append(where, "a.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.MinPrice != nil {
		where = append(where, currentPriceExpr+" >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, currentPriceExpr+" <= ?")
		args = append(args, *q.MaxPrice)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// orderClause maps a sort name to its ORDER BY. Every mode carries the
// stable secondary sort on created_at DESC.
func orderClause(sort string) string {
	switch sort {
	case "popular":
		return "bid_count DESC, a.created_at DESC"
	case "priceDesc":
		return "current_price DESC, a.created_at DESC"
	case "endingSoon":
		return "a.close_time ASC, a.created_at DESC"
	default: // latest
		return "a.created_at DESC"
	}
}

// List returns one page of auctions matching the query plus the total count
// of the filtered set before pagination. Row status is derived from the
// close time so a not-yet-swept expired auction already reads as ended.
func (r *AuctionRepo) List(ctx context.Context, q AuctionListQuery, now time.Time) ([]AuctionSummary, int64, error) {
	cond, args := buildAuctionConditions(q, now)
	ts := now.UTC().Format("2006-01-02 15:04:05")

	var total int64
	countSQL := `SELECT COUNT(*) FROM auctions a WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 20
	}
	limit := size
	offset := (page - 1) * size

	dataSQL := `SELECT
			a.id,
			a.title,
			IFNULL(a.image_url, '') AS image_url,
			a.start_price,
			` + currentPriceExpr + ` AS current_price,
			CASE WHEN a.status = 'ended' OR a.close_time <= ? THEN 'ended' ELSE 'ongoing' END AS status,
			a.close_time,
			a.created_at,
			IFNULL(u.nickname, '') AS seller_nickname,
			IFNULL(c.name, '') AS category_name,
			(SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id) AS bid_count
		FROM auctions a
		LEFT JOIN users u ON u.id = a.seller_id
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE ` + cond + `
		ORDER BY ` + orderClause(q.Sort) + `
		LIMIT ? OFFSET ?`

	argsData := append([]any{ts}, args...)
	argsData = append(argsData, limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]AuctionSummary, 0, limit)
	for rows.Next() {
		var s AuctionSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.ImageURL, &s.StartPrice, &s.CurrentPrice,
			&s.Status, &s.CloseTime, &s.CreatedAt,
			&s.SellerNickname, &s.CategoryName, &s.BidCount,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

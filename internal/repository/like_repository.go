package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// LikeRepo manages the likes (favorites) table.
type LikeRepo struct{ db *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{db: db} }

// Add bookmarks an auction for a user. INSERT IGNORE makes re-adding an
// existing like a no-op instead of an error. A foreign key failure (MySQL
// error 1452) means the auction does not exist.
func (r *LikeRepo) Add(ctx context.Context, userID, auctionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO likes (user_id, auction_id) VALUES (?, ?)",
		userID, auctionID)
	if err != nil && strings.Contains(err.Error(), "1452") {
		return ErrAuctionNotFound
	}
	return err
}

// Remove deletes a bookmark. Removing a like that does not exist is a no-op.
func (r *LikeRepo) Remove(ctx context.Context, userID, auctionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM likes WHERE user_id = ? AND auction_id = ?",
		userID, auctionID)
	return err
}

// LikedAuction is one row of a user's favorites list.
type LikedAuction struct {
	AuctionID    uint64    `json:"auction_id"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"image_url"`
	CurrentPrice int64     `json:"current_price"`
	Status       string    `json:"status"`
	CloseTime    time.Time `json:"close_time"`
	LikedAt      time.Time `json:"liked_at"`
}

// ListByUser returns the user's bookmarked auctions, newest bookmark first.
// Status and price are derived the same way the browse listing derives them.
func (r *LikeRepo) ListByUser(ctx context.Context, userID uint64, now time.Time) ([]LikedAuction, error) {
	const q = `SELECT a.id, a.title, IFNULL(a.image_url, ''),
			` + currentPriceExpr + ` AS current_price,
			CASE WHEN a.status = 'ended' OR a.close_time <= ? THEN 'ended' ELSE 'ongoing' END AS status,
			a.close_time, l.created_at
		FROM likes l
		JOIN auctions a ON a.id = l.auction_id
		WHERE l.user_id = ?
		ORDER BY l.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q,
		now.UTC().Format("2006-01-02 15:04:05"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LikedAuction{}
	for rows.Next() {
		var la LikedAuction
		if err := rows.Scan(&la.AuctionID, &la.Title, &la.ImageURL,
			&la.CurrentPrice, &la.Status, &la.CloseTime, &la.LikedAt); err != nil {
			return nil, err
		}
		out = append(out, la)
	}
	return out, rows.Err()
}

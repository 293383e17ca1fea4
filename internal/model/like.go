package model

import "time"

// Like mirrors the `likes` table: a user bookmarking an auction. The
// (user_id, auction_id) pair is unique; adding an existing like is a no-op.
type Like struct {
	ID        uint64    // likes.id
	UserID    uint64    // likes.user_id
	AuctionID uint64    // likes.auction_id
	CreatedAt time.Time // likes.created_at
}

package model

import "time"

// Bid mirrors the `bids` table. Rows are append-only: a bid is never
// updated or deleted once accepted. For one auction the accepted amounts
// are strictly increasing over time.
type Bid struct {
	ID        uint64    // bids.id
	AuctionID uint64    // bids.auction_id
	BidderID  uint64    // bids.bidder_id
	Amount    int64     // bids.amount, integer minor units
	CreatedAt time.Time // bids.created_at
}

package model

import "time"

// AuctionStatus enumerates the lifecycle states of an auction. There are
// exactly two: an auction is accepting bids or it is over. Both closing
// paths (expiry sweep and immediate purchase) land on StatusEnded and
// there is no transition out of it.
type AuctionStatus string

const (
	StatusOngoing AuctionStatus = "ongoing"
	StatusEnded   AuctionStatus = "ended"
)

// Auction mirrors the `auctions` table. All money fields are integer
// minor units. CurrentPrice is a write-through cache over the bid ledger;
// readers must reconcile it against MAX(bids.amount) instead of trusting
// the stored value.
type Auction struct {
	ID            uint64        // auctions.id
	SellerID      uint64        // auctions.seller_id
	CategoryID    *uint64       // auctions.category_id (nullable)
	Title         string        // auctions.title
	Description   string        // auctions.description
	ImageURL      string        // auctions.image_url
	StartPrice    int64         // auctions.start_price
	CurrentPrice  int64         // auctions.current_price (cache)
	PurchasePrice *int64        // auctions.immediate_purchase_price (nullable)
	Status        AuctionStatus // auctions.status
	CloseTime     time.Time     // auctions.close_time, fixed at creation
	WinnerID      *uint64       // auctions.winner_id, set once at closing
	WinningAmount *int64        // auctions.winning_bid_amount, set once at closing
	CreatedAt     time.Time     // auctions.created_at
	UpdatedAt     time.Time     // auctions.updated_at
}

// Open reports whether the auction can still accept bids at the given
// instant. Both the stored status flag and the wall clock are consulted
// because the flag can lag behind the close time until the next sweep.
func (a *Auction) Open(now time.Time) bool {
	return a.Status == StatusOngoing && a.CloseTime.After(now)
}

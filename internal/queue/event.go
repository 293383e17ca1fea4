// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer plumbing around them.
package queue

// BidPlacedEvent is published after a bid is accepted. It carries enough
// information for downstream consumers to log or notify without querying
// the primary database.
type BidPlacedEvent struct {
	BidID        uint64 `json:"bid_id"`
	AuctionID    uint64 `json:"auction_id"`
	AuctionTitle string `json:"auction_title"`
	BidderID     uint64 `json:"bidder_id"`
	SellerID     uint64 `json:"seller_id"`
	Amount       int64  `json:"amount"`
	PlacedAt     string `json:"placed_at"`
}

// AuctionClosedEvent is published exactly once per auction, when it
// transitions to ended. Reason is "expired" for sweep closures and
// "purchase" for immediate buys.
type AuctionClosedEvent struct {
	AuctionID     uint64  `json:"auction_id"`
	AuctionTitle  string  `json:"auction_title"`
	SellerID      uint64  `json:"seller_id"`
	WinnerID      *uint64 `json:"winner_id,omitempty"`
	WinningAmount *int64  `json:"winning_amount,omitempty"`
	Reason        string  `json:"reason"`
	ClosedAt      string  `json:"closed_at"`
}

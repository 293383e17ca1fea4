// Package pricing derives prices from an auction and its bid ledger. The
// functions here are pure: the stored current_price column is never
// consulted, because it is only a cache and can drift from the ledger.
package pricing

import "github.com/iliyamo/auction-market/internal/model"

// HighestBid returns the bid with the largest amount, or nil when the
// ledger is empty. Ties cannot occur because accepted amounts are strictly
// increasing per auction.
func HighestBid(bids []model.Bid) *model.Bid {
	var top *model.Bid
	for i := range bids {
		if top == nil || bids[i].Amount > top.Amount {
			top = &bids[i]
		}
	}
	return top
}

// CurrentPrice computes the authoritative current price of an auction.
// For an ended auction with a recorded winning amount that amount is
// final; otherwise the highest ledger amount wins, falling back to the
// start price when no bids exist.
func CurrentPrice(a *model.Auction, bids []model.Bid) int64 {
	if a.Status == model.StatusEnded && a.WinningAmount != nil {
		return *a.WinningAmount
	}
	if top := HighestBid(bids); top != nil {
		return top.Amount
	}
	return a.StartPrice
}

// MinimumNextBid returns the smallest acceptable bid amount: strictly
// greater than the current price, so current price plus one minor unit.
func MinimumNextBid(a *model.Auction, bids []model.Bid) int64 {
	return CurrentPrice(a, bids) + 1
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/pricing"
	"github.com/iliyamo/auction-market/internal/queue"
)

// CloseExpired settles every ongoing auction whose close time has passed:
// the highest bidder (if any) becomes the winner and the status flips to
// ended. Each auction is settled in its own transaction so one failure
// cannot block the rest; the first error is returned after all auctions
// have been attempted. Safe to call repeatedly, the status guard makes a
// second settlement a no-op.
func (s *AuctionService) CloseExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()

	ids, err := s.store.ExpiredOngoing(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired auctions: %w", err)
	}

	closed := 0
	var firstErr error
	for _, id := range ids {
		var ev *queue.AuctionClosedEvent
		err := s.store.WithAuctionTx(ctx, id, func(tx AuctionTx) error {
			a := tx.Auction()
			// Re-check under the lock: another request may have settled or
			// purchased this auction between the id scan and here.
			if a.Status != model.StatusOngoing || a.CloseTime.After(now) {
				return nil
			}
			bids, err := tx.Bids(ctx)
			if err != nil {
				return fmt.Errorf("load bid ledger: %w", err)
			}
			var winnerID *uint64
			var amount *int64
			if top := pricing.HighestBid(bids); top != nil {
				winnerID = &top.BidderID
				amount = &top.Amount
			}
			done, err := tx.Close(ctx, winnerID, amount)
			if err != nil {
				return fmt.Errorf("close: %w", err)
			}
			if done {
				ev = &queue.AuctionClosedEvent{
					AuctionID:     a.ID,
					AuctionTitle:  a.Title,
					SellerID:      a.SellerID,
					WinnerID:      winnerID,
					WinningAmount: amount,
					Reason:        "expired",
					ClosedAt:      now.Format(time.RFC3339),
				}
			}
			return nil
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("settle auction %d: %w", id, err)
			}
			continue
		}
		if ev == nil {
			continue
		}
		closed++
		if s.events != nil {
			if perr := s.events.PublishAuctionClosed(ctx, *ev); perr != nil {
				// Best effort: the close is committed either way.
				log.Printf("lifecycle: publish auction.closed failed: %v", perr)
			}
		}
	}
	return closed, firstErr
}

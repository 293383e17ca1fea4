package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auction-market/internal/model"
)

// AuctionTx is a transaction-scoped view of one auction row, locked with
// SELECT ... FOR UPDATE for the lifetime of the transaction. It is the
// per-auction critical section: concurrent bids and purchases against the
// same auction serialize here, while other auctions proceed in parallel.
type AuctionTx struct {
	tx      *sql.Tx
	auction *model.Auction
}

// Auction returns the locked row as read at the start of the transaction.
func (t *AuctionTx) Auction() *model.Auction { return t.auction }

// Bids returns the auction's full ledger, oldest first. Reading it inside
// the transaction guarantees the minimum-bid check sees every bid accepted
// before this one.
func (t *AuctionTx) Bids(ctx context.Context) ([]model.Bid, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, auction_id, bidder_id, amount, created_at
		 FROM bids WHERE auction_id = ? ORDER BY created_at ASC, id ASC`,
		t.auction.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// InsertBid appends a bid to the ledger and returns its id.
func (t *AuctionTx) InsertBid(ctx context.Context, bidderID uint64, amount int64, at time.Time) (uint64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bids (auction_id, bidder_id, amount, created_at) VALUES (?, ?, ?, ?)`,
		t.auction.ID, bidderID, amount, at.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetCurrentPrice refreshes the cached current_price column. The cache is
// a write optimization only; readers reconcile against the ledger.
func (t *AuctionTx) SetCurrentPrice(ctx context.Context, price int64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE auctions SET current_price = ? WHERE id = ?`, price, t.auction.ID)
	if err == nil {
		t.auction.CurrentPrice = price
	}
	return err
}

// Close transitions the auction to ended, recording the winner and amount
// (both nil when the auction expires without bids). The status guard in the
// UPDATE makes the transition exactly-once: a concurrent close already
// committed leaves zero affected rows and Close reports false.
func (t *AuctionTx) Close(ctx context.Context, winnerID *uint64, amount *int64) (bool, error) {
	var winner, winAmount any
	if winnerID != nil {
		winner = *winnerID
	}
	if amount != nil {
		winAmount = *amount
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE auctions
		 SET status = ?, winner_id = ?, winning_bid_amount = ?,
		     current_price = COALESCE(?, current_price)
		 WHERE id = ? AND status = ?`,
		model.StatusEnded, winner, winAmount, winAmount,
		t.auction.ID, model.StatusOngoing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	t.auction.Status = model.StatusEnded
	t.auction.WinnerID = winnerID
	t.auction.WinningAmount = amount
	if amount != nil {
		t.auction.CurrentPrice = *amount
	}
	return true, nil
}

// WithAuctionTx runs fn against a locked view of the auction. It begins a
// transaction, re-reads the auction row FOR UPDATE so concurrent writers on
// the same auction block until this transaction finishes, and commits when
// fn returns nil (rolling back otherwise). Returns ErrAuctionNotFound when
// the id does not exist.
func (r *AuctionRepo) WithAuctionTx(ctx context.Context, id uint64, fn func(tx *AuctionTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = ? FOR UPDATE`, id)
	a, err := scanAuction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAuctionNotFound
		}
		return err
	}

	if err := fn(&AuctionTx{tx: tx, auction: a}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

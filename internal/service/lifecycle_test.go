package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-market/internal/model"
)

func TestCloseExpiredSettlesHighestBidder(t *testing.T) {
	svc, store, events, clk := newTestService()

	expired := store.addAuction(model.Auction{
		SellerID:   1,
		Title:      "old lens",
		StartPrice: 500,
		CloseTime:  testNow.Add(time.Hour),
	})
	store.addBid(expired.ID, 2, 600, testNow)
	store.addBid(expired.ID, 3, 750, testNow)

	alive := store.addAuction(model.Auction{
		SellerID:   1,
		StartPrice: 300,
		CloseTime:  testNow.Add(48 * time.Hour),
	})

	clk.Advance(2 * time.Hour)

	closed, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	require.Equal(t, model.StatusEnded, expired.Status)
	require.Equal(t, uint64(3), *expired.WinnerID)
	require.Equal(t, int64(750), *expired.WinningAmount)
	require.Equal(t, int64(750), expired.CurrentPrice)

	require.Equal(t, model.StatusOngoing, alive.Status)
	require.Nil(t, alive.WinnerID)

	require.Len(t, events.closeEvents, 1)
	require.Equal(t, "expired", events.closeEvents[0].Reason)
	require.Equal(t, expired.ID, events.closeEvents[0].AuctionID)
}

func TestCloseExpiredWithoutBidsLeavesNoWinner(t *testing.T) {
	svc, store, events, clk := newTestService()

	a := store.addAuction(model.Auction{
		SellerID:   1,
		StartPrice: 500,
		CloseTime:  testNow.Add(time.Hour),
	})
	clk.Advance(2 * time.Hour)

	closed, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	require.Equal(t, model.StatusEnded, a.Status)
	require.Nil(t, a.WinnerID)
	require.Nil(t, a.WinningAmount)
	require.Equal(t, int64(500), a.CurrentPrice)

	require.Len(t, events.closeEvents, 1)
	require.Nil(t, events.closeEvents[0].WinnerID)
}

func TestCloseExpiredIsIdempotent(t *testing.T) {
	svc, store, events, clk := newTestService()

	store.addAuction(model.Auction{
		SellerID:   1,
		StartPrice: 500,
		CloseTime:  testNow.Add(time.Hour),
	})
	clk.Advance(2 * time.Hour)

	closed, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	closed, err = svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, closed)
	require.Len(t, events.closeEvents, 1)
}

func TestCloseExpiredFailureIsolation(t *testing.T) {
	svc, store, _, clk := newTestService()

	var ids []uint64
	for i := 0; i < 3; i++ {
		a := store.addAuction(model.Auction{
			SellerID:   1,
			StartPrice: 500,
			CloseTime:  testNow.Add(time.Hour),
		})
		ids = append(ids, a.ID)
	}
	boom := errors.New("deadlock")
	store.txErr[ids[1]] = boom

	clk.Advance(2 * time.Hour)

	closed, err := svc.CloseExpired(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, closed)

	require.Equal(t, model.StatusEnded, store.auctions[ids[0]].Status)
	require.Equal(t, model.StatusOngoing, store.auctions[ids[1]].Status)
	require.Equal(t, model.StatusEnded, store.auctions[ids[2]].Status)

	// The failed auction settles on the next sweep once the fault clears.
	delete(store.txErr, ids[1])
	closed, err = svc.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)
	require.Equal(t, model.StatusEnded, store.auctions[ids[1]].Status)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-market/internal/clock"
	"github.com/iliyamo/auction-market/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*AuctionService, *fakeStore, *fakePublisher, *clock.Fake) {
	store := newFakeStore()
	events := &fakePublisher{}
	clk := clock.NewFake(testNow)
	return NewAuctionService(store, events, clk), store, events, clk
}

func ongoingAuction(store *fakeStore, sellerID uint64, startPrice int64) *model.Auction {
	return store.addAuction(model.Auction{
		SellerID:   sellerID,
		Title:      "vintage camera",
		StartPrice: startPrice,
		CloseTime:  testNow.Add(24 * time.Hour),
	})
}

func TestCreateValidationOrder(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	catID := uint64(1)
	badCat := uint64(99)
	lowBuyNow := int64(400)
	valid := CreateAuctionInput{
		Title:      "vintage camera",
		CategoryID: &catID,
		StartPrice: 500,
		CloseTime:  testNow.Add(time.Hour),
	}

	tests := []struct {
		name      string
		mutate    func(in *CreateAuctionInput)
		wantField string
	}{
		{"missing_title", func(in *CreateAuctionInput) { in.Title = "  " }, "title"},
		{"missing_category", func(in *CreateAuctionInput) { in.CategoryID = nil }, "categoryId"},
		{"zero_start_price", func(in *CreateAuctionInput) { in.StartPrice = 0 }, "startPrice"},
		{"negative_start_price", func(in *CreateAuctionInput) { in.StartPrice = -5 }, "startPrice"},
		{"buy_now_below_start", func(in *CreateAuctionInput) { in.PurchasePrice = &lowBuyNow }, "immediatePurchasePrice"},
		{"missing_close_time", func(in *CreateAuctionInput) { in.CloseTime = time.Time{} }, "closeTime"},
		{"close_time_now", func(in *CreateAuctionInput) { in.CloseTime = testNow }, "closeTime"},
		{"close_time_past", func(in *CreateAuctionInput) { in.CloseTime = testNow.Add(-time.Minute) }, "closeTime"},
		{"unknown_category", func(in *CreateAuctionInput) { in.CategoryID = &badCat }, "categoryId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(ctx, 1, in)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCreateStartsOngoingAtStartPrice(t *testing.T) {
	svc, store, _, _ := newTestService()

	catID := uint64(1)
	buyNow := int64(2000)
	a, err := svc.Create(context.Background(), 7, CreateAuctionInput{
		Title:         "  vintage camera  ",
		CategoryID:    &catID,
		StartPrice:    500,
		PurchasePrice: &buyNow,
		CloseTime:     testNow.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotZero(t, a.ID)
	require.Equal(t, "vintage camera", a.Title)
	require.Equal(t, model.StatusOngoing, a.Status)
	require.Equal(t, int64(500), a.CurrentPrice)
	require.Nil(t, a.WinnerID)

	stored := store.auctions[a.ID]
	require.Equal(t, model.StatusOngoing, stored.Status)
	require.Equal(t, int64(500), stored.CurrentPrice)
}

func TestPlaceBidNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.PlaceBid(context.Background(), 2, 999, 600)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceBidOnEndedAuction(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)
	a.Status = model.StatusEnded

	_, err := svc.PlaceBid(context.Background(), 2, a.ID, 600)
	require.ErrorIs(t, err, ErrAuctionClosed)
}

func TestPlaceBidAfterCloseTimeSettlesWinnerFirst(t *testing.T) {
	// The auction expired but was never swept. The bid must be rejected and
	// the sweep must have settled the standing highest bidder as winner.
	svc, store, _, clk := newTestService()
	a := ongoingAuction(store, 1, 500)
	store.addBid(a.ID, 3, 700, testNow)

	clk.Advance(25 * time.Hour)

	_, err := svc.PlaceBid(context.Background(), 2, a.ID, 800)
	require.ErrorIs(t, err, ErrAuctionClosed)

	require.Equal(t, model.StatusEnded, a.Status)
	require.NotNil(t, a.WinnerID)
	require.Equal(t, uint64(3), *a.WinnerID)
	require.NotNil(t, a.WinningAmount)
	require.Equal(t, int64(700), *a.WinningAmount)
}

func TestPlaceBidSellerForbidden(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)

	_, err := svc.PlaceBid(context.Background(), 1, a.ID, 600)
	require.ErrorIs(t, err, ErrSelfBidForbidden)
	require.Empty(t, store.bids[a.ID])
}

func TestPlaceBidTooLowCarriesMinimum(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)

	// First bid equal to the start price: minimum is start + 1.
	_, err := svc.PlaceBid(context.Background(), 2, a.ID, 500)
	var btl *BidTooLowError
	require.ErrorAs(t, err, &btl)
	require.ErrorIs(t, err, ErrBidTooLow)
	require.Equal(t, int64(501), btl.Minimum)

	// Matching the standing top bid is still too low.
	store.addBid(a.ID, 3, 700, testNow)
	_, err = svc.PlaceBid(context.Background(), 2, a.ID, 700)
	require.ErrorAs(t, err, &btl)
	require.Equal(t, int64(701), btl.Minimum)

	// Nothing was written on either rejection.
	require.Len(t, store.bids[a.ID], 1)
}

func TestPlaceBidAcceptsAndUpdatesPrice(t *testing.T) {
	svc, store, events, _ := newTestService()
	a := ongoingAuction(store, 1, 500)
	store.addBid(a.ID, 3, 700, testNow)

	bid, err := svc.PlaceBid(context.Background(), 2, a.ID, 701)
	require.NoError(t, err)
	require.Equal(t, int64(701), bid.Amount)
	require.Equal(t, uint64(2), bid.BidderID)

	require.Equal(t, int64(701), a.CurrentPrice)
	require.Len(t, store.bids[a.ID], 2)

	require.Len(t, events.bidEvents, 1)
	require.Equal(t, a.ID, events.bidEvents[0].AuctionID)
	require.Equal(t, int64(701), events.bidEvents[0].Amount)
}

func TestPurchaseUnavailableWithoutBuyNowPrice(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)

	_, err := svc.Purchase(context.Background(), 2, a.ID)
	require.ErrorIs(t, err, ErrPurchaseUnavailable)
	require.Equal(t, model.StatusOngoing, a.Status)
}

func TestPurchaseUnavailableOncePriceReached(t *testing.T) {
	svc, store, _, _ := newTestService()
	buyNow := int64(1000)
	a := store.addAuction(model.Auction{
		SellerID:      1,
		StartPrice:    500,
		PurchasePrice: &buyNow,
		CloseTime:     testNow.Add(time.Hour),
	})
	store.addBid(a.ID, 3, 1000, testNow)

	_, err := svc.Purchase(context.Background(), 2, a.ID)
	require.ErrorIs(t, err, ErrPurchaseUnavailable)
	require.Equal(t, model.StatusOngoing, a.Status)
}

func TestPurchaseSellerForbidden(t *testing.T) {
	svc, store, _, _ := newTestService()
	buyNow := int64(1000)
	a := store.addAuction(model.Auction{
		SellerID:      1,
		StartPrice:    500,
		PurchasePrice: &buyNow,
		CloseTime:     testNow.Add(time.Hour),
	})

	_, err := svc.Purchase(context.Background(), 1, a.ID)
	require.ErrorIs(t, err, ErrSelfPurchaseForbidden)
}

func TestPurchaseClosesAtBuyNowPrice(t *testing.T) {
	svc, store, events, _ := newTestService()
	buyNow := int64(1000)
	a := store.addAuction(model.Auction{
		SellerID:      1,
		Title:         "vintage camera",
		StartPrice:    500,
		PurchasePrice: &buyNow,
		CloseTime:     testNow.Add(time.Hour),
	})
	store.addBid(a.ID, 3, 700, testNow)

	amount, err := svc.Purchase(context.Background(), 2, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), amount)

	require.Equal(t, model.StatusEnded, a.Status)
	require.NotNil(t, a.WinnerID)
	require.Equal(t, uint64(2), *a.WinnerID)
	require.Equal(t, int64(1000), *a.WinningAmount)
	require.Equal(t, int64(1000), a.CurrentPrice)

	require.Len(t, events.closeEvents, 1)
	require.Equal(t, "purchase", events.closeEvents[0].Reason)
	require.Equal(t, uint64(2), *events.closeEvents[0].WinnerID)

	// A second purchase attempt finds the auction closed.
	_, err = svc.Purchase(context.Background(), 4, a.ID)
	require.ErrorIs(t, err, ErrAuctionClosed)
	require.Equal(t, uint64(2), *a.WinnerID)
	require.Len(t, events.closeEvents, 1)
}

func TestGetNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetReconcilesCurrentPriceFromLedger(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)
	// Simulate a stale cache: the column lags behind the ledger.
	store.addBid(a.ID, 3, 800, testNow)
	a.CurrentPrice = 500

	det, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(800), det.CurrentPrice)
	require.Len(t, det.Bids, 1)
}

func TestGetSweepsExpiredAuctionFirst(t *testing.T) {
	svc, store, _, clk := newTestService()
	a := ongoingAuction(store, 1, 500)
	store.addBid(a.ID, 3, 700, testNow)

	clk.Advance(25 * time.Hour)

	det, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusEnded, det.Auction.Status)
	require.Equal(t, uint64(3), *det.Auction.WinnerID)
	require.Equal(t, int64(700), det.CurrentPrice)
}

func TestPlaceBidStorageErrorPassesThrough(t *testing.T) {
	svc, store, _, _ := newTestService()
	a := ongoingAuction(store, 1, 500)
	boom := errors.New("connection lost")
	store.txErr[a.ID] = boom

	_, err := svc.PlaceBid(context.Background(), 2, a.ID, 600)
	require.ErrorIs(t, err, boom)
}

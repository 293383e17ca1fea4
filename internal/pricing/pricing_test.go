package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-market/internal/model"
)

func bid(id uint64, amount int64) model.Bid {
	return model.Bid{ID: id, BidderID: id, Amount: amount, CreatedAt: time.Now()}
}

func TestHighestBid(t *testing.T) {
	require.Nil(t, HighestBid(nil))
	require.Nil(t, HighestBid([]model.Bid{}))

	top := HighestBid([]model.Bid{bid(1, 100), bid(2, 350), bid(3, 200)})
	require.NotNil(t, top)
	require.Equal(t, uint64(2), top.ID)
	require.Equal(t, int64(350), top.Amount)
}

func TestCurrentPrice(t *testing.T) {
	win := int64(900)

	tests := []struct {
		name    string
		auction model.Auction
		bids    []model.Bid
		want    int64
	}{
		{
			name:    "no_bids_falls_back_to_start_price",
			auction: model.Auction{StartPrice: 500, Status: model.StatusOngoing},
			want:    500,
		},
		{
			name:    "highest_bid_wins",
			auction: model.Auction{StartPrice: 500, Status: model.StatusOngoing},
			bids:    []model.Bid{bid(1, 600), bid(2, 750)},
			want:    750,
		},
		{
			name:    "ended_with_recorded_amount_is_final",
			auction: model.Auction{StartPrice: 500, Status: model.StatusEnded, WinningAmount: &win},
			bids:    []model.Bid{bid(1, 600)},
			want:    900,
		},
		{
			name:    "ended_without_recorded_amount_uses_ledger",
			auction: model.Auction{StartPrice: 500, Status: model.StatusEnded},
			bids:    []model.Bid{bid(1, 600)},
			want:    600,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CurrentPrice(&tt.auction, tt.bids))
		})
	}
}

func TestMinimumNextBid(t *testing.T) {
	a := model.Auction{StartPrice: 500, Status: model.StatusOngoing}

	// First bid clears the start price by one.
	require.Equal(t, int64(501), MinimumNextBid(&a, nil))

	// Later bids must strictly beat the top of the ledger.
	require.Equal(t, int64(751), MinimumNextBid(&a, []model.Bid{bid(1, 750)}))
}

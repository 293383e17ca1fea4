package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var searchNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBuildAuctionConditions(t *testing.T) {
	ts := "2026-03-10 12:00:00"
	min := int64(100)
	max := int64(900)

	tests := []struct {
		name     string
		query    AuctionListQuery
		wantCond string
		wantArgs []any
	}{
		{
			name:     "no_filters",
			query:    AuctionListQuery{},
			wantCond: "1=1",
			wantArgs: []any{},
		},
		{
			name:     "all_is_no_filter",
			query:    AuctionListQuery{Status: "all"},
			wantCond: "1=1",
			wantArgs: []any{},
		},
		{
			name:     "ended_matches_flag_or_past_close",
			query:    AuctionListQuery{Status: "ended"},
			wantCond: "(a.status = 'ended' OR a.close_time <= ?)",
			wantArgs: []any{ts},
		},
		{
			name:     "ongoing_requires_flag_and_future_close",
			query:    AuctionListQuery{Status: "ongoing"},
			wantCond: "(a.status = 'ongoing' AND a.close_time > ?)",
			wantArgs: []any{ts},
		},
		{
			name:     "category_filter",
			query:    AuctionListQuery{CategoryID: 3},
			wantCond: "a.category_id = ?",
			wantArgs: []any{uint64(3)},
		},
		{
			name:     "price_range_uses_reconciled_price",
			query:    AuctionListQuery{MinPrice: &min, MaxPrice: &max},
			wantCond: currentPriceExpr + " >= ? AND " + currentPriceExpr + " <= ?",
			wantArgs: []any{int64(100), int64(900)},
		},
		{
			name:     "combined",
			query:    AuctionListQuery{Status: "ongoing", CategoryID: 3, MinPrice: &min},
			wantCond: "(a.status = 'ongoing' AND a.close_time > ?) AND a.category_id = ? AND " + currentPriceExpr + " >= ?",
			wantArgs: []any{ts, uint64(3), int64(100)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, args := buildAuctionConditions(tt.query, searchNow)
			require.Equal(t, tt.wantCond, cond)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{"popular", "bid_count DESC, a.created_at DESC"},
		{"priceDesc", "current_price DESC, a.created_at DESC"},
		{"endingSoon", "a.close_time ASC, a.created_at DESC"},
		{"latest", "a.created_at DESC"},
		{"", "a.created_at DESC"},
		{"garbage", "a.created_at DESC"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, orderClause(tt.sort), "sort=%q", tt.sort)
	}
}

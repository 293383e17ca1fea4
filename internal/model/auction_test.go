package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuctionOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  AuctionStatus
		closeAt time.Time
		want    bool
	}{
		{"ongoing_before_close", StatusOngoing, now.Add(time.Minute), true},
		{"ongoing_at_close", StatusOngoing, now, false},
		{"ongoing_past_close", StatusOngoing, now.Add(-time.Minute), false},
		{"ended_before_close", StatusEnded, now.Add(time.Minute), false},
		{"ended_past_close", StatusEnded, now.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Auction{Status: tt.status, CloseTime: tt.closeAt}
			require.Equal(t, tt.want, a.Open(now))
		})
	}
}

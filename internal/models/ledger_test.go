package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newBid(bidID, bidderID string, amount int64, status BidStatus, createdAt time.Time) Bid {
	return Bid{
		BidID:     bidID,
		AuctionID: "auction1",
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestDeriveAggregates(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	start := decimal.NewFromInt(10000)

	tests := []struct {
		name string
		bids []Bid
		want Aggregates
	}{
		{
			name: "empty_ledger",
			bids: nil,
			want: Aggregates{CurrentHighestBid: start},
		},
		{
			name: "two_bidders",
			bids: []Bid{
				newBid("b1", "alice", 10000, BidActive, now),
				newBid("b2", "bob", 11000, BidActive, now.Add(time.Second)),
			},
			want: Aggregates{
				CurrentHighestBid: decimal.NewFromInt(11000),
				LeadingBidID:      "b2",
				LeadingBidderID:   "bob",
				TotalBids:         2,
				TotalBidders:      2,
			},
		},
		{
			name: "repeat_bidder_counted_once",
			bids: []Bid{
				newBid("b1", "alice", 10000, BidActive, now),
				newBid("b2", "bob", 11000, BidActive, now.Add(time.Second)),
				newBid("b3", "alice", 12000, BidWinning, now.Add(2*time.Second)),
			},
			want: Aggregates{
				CurrentHighestBid: decimal.NewFromInt(12000),
				LeadingBidID:      "b3",
				LeadingBidderID:   "alice",
				TotalBids:         3,
				TotalBidders:      2,
			},
		},
		{
			name: "cancelled_bids_ignored",
			bids: []Bid{
				newBid("b1", "alice", 10000, BidActive, now),
				newBid("b2", "bob", 50000, BidCancelled, now.Add(time.Second)),
			},
			want: Aggregates{
				CurrentHighestBid: decimal.NewFromInt(10000),
				LeadingBidID:      "b1",
				LeadingBidderID:   "alice",
				TotalBids:         1,
				TotalBidders:      1,
			},
		},
		{
			name: "tie_goes_to_earliest",
			bids: []Bid{
				newBid("late", "bob", 10000, BidActive, now.Add(time.Second)),
				newBid("early", "alice", 10000, BidActive, now),
			},
			want: Aggregates{
				CurrentHighestBid: decimal.NewFromInt(10000),
				LeadingBidID:      "early",
				LeadingBidderID:   "alice",
				TotalBids:         2,
				TotalBidders:      2,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := DeriveAggregates(start, tc.bids)
			require.True(t, tc.want.Equal(got), "want %+v, got %+v", tc.want, got)
		})
	}
}

func TestSortByRank(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	bids := []Bid{
		newBid("b1", "alice", 100, BidActive, now),
		newBid("b3", "carol", 300, BidActive, now),
		newBid("b2", "bob", 300, BidActive, now.Add(-time.Second)),
	}

	SortByRank(bids)

	require.Equal(t, "b2", bids[0].BidID)
	require.Equal(t, "b3", bids[1].BidID)
	require.Equal(t, "b1", bids[2].BidID)
}

func TestAuctionStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, StatusScheduled.IsTerminal())
	require.False(t, StatusReady.IsTerminal())
	require.False(t, StatusInProgress.IsTerminal())
	require.True(t, StatusCompleted.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.True(t, StatusFailed.IsTerminal())
}

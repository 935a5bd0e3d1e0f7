package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregates are the auction fields derivable from its bid ledger
type Aggregates struct {
	CurrentHighestBid decimal.Decimal `json:"current_highest_bid"`
	LeadingBidID      string          `json:"leading_bid_id"`
	LeadingBidderID   string          `json:"leading_bidder_id"`
	TotalBids         int             `json:"total_bids"`
	TotalBidders      int             `json:"total_bidders"`
}

// AggregatesOf returns the denormalized aggregates currently stored on the auction
func AggregatesOf(a Auction) Aggregates {
	return Aggregates{
		CurrentHighestBid: a.CurrentHighestBid,
		LeadingBidID:      a.LeadingBidID,
		LeadingBidderID:   a.LeadingBidderID,
		TotalBids:         a.TotalBids,
		TotalBidders:      a.TotalBidders,
	}
}

// Equal compares aggregates, treating amounts by value
func (g Aggregates) Equal(o Aggregates) bool {
	return g.CurrentHighestBid.Equal(o.CurrentHighestBid) &&
		g.LeadingBidID == o.LeadingBidID &&
		g.LeadingBidderID == o.LeadingBidderID &&
		g.TotalBids == o.TotalBids &&
		g.TotalBidders == o.TotalBidders
}

// DeriveAggregates recomputes the aggregates from a ledger. Only ACTIVE, WINNING
// and WON bids count. With no counted bid the highest bid is the start price.
func DeriveAggregates(startPrice decimal.Decimal, bids []Bid) Aggregates {
	agg := Aggregates{CurrentHighestBid: startPrice}
	bidders := make(map[string]struct{})

	var leader *Bid
	for i := range bids {
		b := &bids[i]
		if !b.Status.Counts() {
			continue
		}
		agg.TotalBids++
		bidders[b.BidderID] = struct{}{}
		if leader == nil || Outranks(*b, *leader) {
			leader = b
		}
	}

	agg.TotalBidders = len(bidders)
	if leader != nil {
		agg.CurrentHighestBid = leader.Amount
		agg.LeadingBidID = leader.BidID
		agg.LeadingBidderID = leader.BidderID
	}
	return agg
}

// Outranks reports whether a beats b: higher amount first, earlier creation on ties
func Outranks(a, b Bid) bool {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c > 0
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortByRank orders bids highest first, earliest first on equal amounts
func SortByRank(bids []Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		return Outranks(bids[i], bids[j])
	})
}

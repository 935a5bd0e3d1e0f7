// Package events carries committed auction state changes to their side
// effects: push notifications and secondary statistics. Events are queued
// in-process after commit and handled by a worker pool in fresh contexts,
// so a slow or failing subscriber never holds an auction lock.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies what happened
type Kind string

const (
	KindBidPlaced         Kind = "BID_PLACED"
	KindAuctionStarted    Kind = "AUCTION_STARTED"
	KindAuctionEnded      Kind = "AUCTION_ENDED"
	KindAuctionCancelled  Kind = "AUCTION_CANCELLED"
	KindAuctionEndingSoon Kind = "AUCTION_ENDING_SOON"
)

// Event is one committed state change. Fields not relevant to the kind are zero.
type Event struct {
	Kind       Kind      `json:"kind"`
	AuctionID  string    `json:"auction_id"`
	OccurredAt time.Time `json:"occurred_at"`

	// bid placement
	BidID         string          `json:"bid_id,omitempty"`
	BidderID      string          `json:"bidder_id,omitempty"`
	BidderName    string          `json:"bidder_name,omitempty"`
	PreviousBidID string          `json:"previous_bid_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	IsNewBidder   bool            `json:"is_new_bidder,omitempty"`
	IsBuyItNow    bool            `json:"is_buy_it_now,omitempty"`

	// lifecycle
	WinnerID     string    `json:"winner_id,omitempty"`
	WinningBidID string    `json:"winning_bid_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	EndsAt       time.Time `json:"ends_at,omitempty"`
}

// Sink accepts committed events. Publish must not block on delivery.
type Sink interface {
	Publish(evt Event)
}

// AuctionTopic is the public channel of one auction
func AuctionTopic(auctionID string) string {
	return "auction." + auctionID
}

// AuctionsTopic is the public feed of newly started auctions
const AuctionsTopic = "auctions"

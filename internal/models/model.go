package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	StatusScheduled  AuctionStatus = "SCHEDULED"
	StatusReady      AuctionStatus = "READY"
	StatusInProgress AuctionStatus = "IN_PROGRESS"
	StatusCompleted  AuctionStatus = "COMPLETED"
	StatusCancelled  AuctionStatus = "CANCELLED"
	StatusFailed     AuctionStatus = "FAILED"
)

// IsTerminal reports whether no further transition can leave the status
func (s AuctionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// BidStatus is the ranking state of a bid
type BidStatus string

const (
	BidActive    BidStatus = "ACTIVE"
	BidWinning   BidStatus = "WINNING"
	BidWon       BidStatus = "WON"
	BidCancelled BidStatus = "CANCELLED"
)

// Counts reports whether the bid takes part in ranking and aggregates
func (s BidStatus) Counts() bool {
	return s == BidActive || s == BidWinning || s == BidWon
}

// Window is the scheduled start/end of an auction
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Pricing holds every money setting of an auction
type Pricing struct {
	StartPrice    decimal.Decimal     `json:"start_price"`
	MinIncrement  decimal.Decimal     `json:"min_increment"`
	MaxIncrement  decimal.Decimal     `json:"max_increment"`
	BidUnit       decimal.Decimal     `json:"bid_unit"`
	BuyItNowPrice decimal.NullDecimal `json:"buy_it_now_price"`
}

// Auction is the authoritative record of one timed sale of one listing.
// Leader and counter fields are a materialized view over the auction's bids.
type Auction struct {
	AuctionID string        `json:"auction_id" gorm:"column:id;primaryKey;size:36"`
	ListingID string        `json:"listing_id" gorm:"size:64;index"`
	Status    AuctionStatus `json:"status" gorm:"size:16;index"`

	ScheduledStart time.Time  `json:"scheduled_start" gorm:"index"`
	ScheduledEnd   time.Time  `json:"scheduled_end" gorm:"index"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`

	StartPrice        decimal.Decimal     `json:"start_price" gorm:"type:numeric(20,2);not null"`
	CurrentHighestBid decimal.Decimal     `json:"current_highest_bid" gorm:"type:numeric(20,2);not null"`
	BuyItNowPrice     decimal.NullDecimal `json:"buy_it_now_price" gorm:"type:numeric(20,2)"`
	MinIncrement      decimal.Decimal     `json:"min_increment" gorm:"type:numeric(20,2);not null"`
	MaxIncrement      decimal.Decimal     `json:"max_increment" gorm:"type:numeric(20,2);not null"`
	BidUnit           decimal.Decimal     `json:"bid_unit" gorm:"type:numeric(20,2);not null"`

	TotalBids         int    `json:"total_bids"`
	TotalBidders      int    `json:"total_bidders"`
	LeadingBidID      string `json:"leading_bid_id,omitempty" gorm:"size:36"`
	LeadingBidderID   string `json:"leading_bidder_id,omitempty" gorm:"size:64"`
	LeadingBidderName string `json:"leading_bidder_name,omitempty"`
	WinnerID          string `json:"winner_id,omitempty" gorm:"size:64"`
	WinningBidID      string `json:"winning_bid_id,omitempty" gorm:"size:36"`

	CreatedBy string `json:"created_by" gorm:"size:64"`
	StartedBy string `json:"started_by,omitempty" gorm:"size:64"`
	EndedBy   string `json:"ended_by,omitempty" gorm:"size:64"`
	EndReason string `json:"end_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Auction) TableName() string { return "auctions" }

// ApplyPricing copies pricing settings onto the auction
func (a *Auction) ApplyPricing(p Pricing) {
	a.StartPrice = p.StartPrice
	a.MinIncrement = p.MinIncrement
	a.MaxIncrement = p.MaxIncrement
	a.BidUnit = p.BidUnit
	a.BuyItNowPrice = p.BuyItNowPrice
}

// HasLeader reports whether any bid has been accepted
func (a Auction) HasLeader() bool {
	return a.LeadingBidID != ""
}

// Bid is one offer against one auction by one bidder
type Bid struct {
	BidID      string          `json:"bid_id" gorm:"column:id;primaryKey;size:36"`
	AuctionID  string          `json:"auction_id" gorm:"size:36;index:idx_bids_auction_bidder,priority:1"`
	BidderID   string          `json:"bidder_id" gorm:"size:64;index:idx_bids_auction_bidder,priority:2"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(20,2);not null"`
	Status     BidStatus       `json:"status" gorm:"size:16"`
	IsBuyItNow bool            `json:"is_buy_it_now"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Bid) TableName() string { return "bids" }

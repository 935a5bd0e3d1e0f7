package helpers

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PricingRequest struct {
	StartPrice    decimal.Decimal     `json:"start_price"`
	MinIncrement  decimal.Decimal     `json:"min_increment"`
	MaxIncrement  decimal.Decimal     `json:"max_increment"`
	BidUnit       decimal.Decimal     `json:"bid_unit"`
	BuyItNowPrice decimal.NullDecimal `json:"buy_it_now_price"`
}

func (p PricingRequest) Pricing() model.Pricing {
	return model.Pricing{
		StartPrice:    p.StartPrice,
		MinIncrement:  p.MinIncrement,
		MaxIncrement:  p.MaxIncrement,
		BidUnit:       p.BidUnit,
		BuyItNowPrice: p.BuyItNowPrice,
	}
}

type ScheduleAuctionRequest struct {
	ListingID string    `json:"listing_id" binding:"required"`
	AdminID   string    `json:"admin_id" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
	End       time.Time `json:"end" binding:"required"`
	PricingRequest
}

type UpdateAuctionRequest struct {
	AdminID string    `json:"admin_id" binding:"required"`
	Start   time.Time `json:"start" binding:"required"`
	End     time.Time `json:"end" binding:"required"`
	PricingRequest
}

// StartAuctionRequest starts immediately unless both start and end are given
type StartAuctionRequest struct {
	AdminID string     `json:"admin_id" binding:"required"`
	Start   *time.Time `json:"start"`
	End     *time.Time `json:"end"`
}

// AdminActionRequest is the body of end and cancel
type AdminActionRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	Reason  string `json:"reason"`
}

type PlaceBidRequest struct {
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type BuyItNowRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
}

type BidResponse struct {
	BidID      string `json:"bid_id"`
	AuctionID  string `json:"auction_id"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	IsBuyItNow bool   `json:"is_buy_it_now"`
	CreatedAt  string `json:"created_at"`
}

func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:      bid.BidID,
		AuctionID:  bid.AuctionID,
		BidderID:   bid.BidderID,
		BidderName: bid.BidderName,
		Amount:     bid.Amount.StringFixed(2),
		Status:     string(bid.Status),
		IsBuyItNow: bid.IsBuyItNow,
		CreatedAt:  bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

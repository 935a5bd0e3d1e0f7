package handler

import (
	"context"
	"fmt"
	"net/http"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	ScheduleAuction(ctx context.Context, listingID, adminID string, window model.Window, pricing model.Pricing) (model.Auction, error)
	UpdateAuction(ctx context.Context, auctionID, adminID string, window model.Window, pricing model.Pricing) (model.Auction, error)
	StartAuction(ctx context.Context, auctionID, adminID string, opts auction.StartOptions) (model.Auction, error)
	EndAuction(ctx context.Context, auctionID, adminID, reason string) (model.Auction, error)
	CancelAuction(ctx context.Context, auctionID, adminID, reason string) (model.Auction, error)
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error)
	BuyItNow(ctx context.Context, auctionID, bidderID string) (model.Bid, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ScheduleAuctionHandler handles POST /auctions
func (h *AuctionHandler) ScheduleAuctionHandler(c *gin.Context) {
	var req helpers.ScheduleAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ScheduleAuctionHandler", err)
		return
	}

	window := model.Window{Start: req.Start, End: req.End}
	a, err := h.service.ScheduleAuction(c.Request.Context(), req.ListingID, req.AdminID, window, req.Pricing())
	if err != nil {
		helpers.RespondError(c, "ScheduleAuctionHandler", err, map[string]any{
			"listing_id": req.ListingID,
			"admin_id":   req.AdminID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, a, "auction scheduled successfully")
	helpers.LogSuccess("ScheduleAuctionHandler", "auction scheduled successfully", map[string]any{
		"auction_id": a.AuctionID,
		"listing_id": a.ListingID,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	a, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction retrieved successfully")
}

// UpdateAuctionHandler handles PATCH /auctions/:auction_id
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	window := model.Window{Start: req.Start, End: req.End}
	a, err := h.service.UpdateAuction(c.Request.Context(), auctionID, req.AdminID, window, req.Pricing())
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"admin_id":   req.AdminID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction updated successfully")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{"auction_id": auctionID})
}

// StartAuctionHandler handles POST /auctions/:auction_id/start
func (h *AuctionHandler) StartAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.StartAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartAuctionHandler", err)
		return
	}

	opts := auction.Immediate()
	switch {
	case req.Start != nil && req.End != nil:
		opts = auction.WithWindow(model.Window{Start: *req.Start, End: *req.End})
	case req.Start != nil || req.End != nil:
		helpers.HandleBindError(c, "StartAuctionHandler", fmt.Errorf("start and end must be given together"))
		return
	}

	a, err := h.service.StartAuction(c.Request.Context(), auctionID, req.AdminID, opts)
	if err != nil {
		helpers.RespondError(c, "StartAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"admin_id":   req.AdminID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction started successfully")
	helpers.LogSuccess("StartAuctionHandler", "auction started successfully", map[string]any{
		"auction_id": auctionID,
		"ends_at":    a.ScheduledEnd,
	})
}

// EndAuctionHandler handles POST /auctions/:auction_id/end
func (h *AuctionHandler) EndAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EndAuctionHandler", err)
		return
	}

	a, err := h.service.EndAuction(c.Request.Context(), auctionID, req.AdminID, req.Reason)
	if err != nil {
		helpers.RespondError(c, "EndAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"admin_id":   req.AdminID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction ended successfully")
	helpers.LogSuccess("EndAuctionHandler", "auction ended successfully", map[string]any{
		"auction_id": auctionID,
		"status":     a.Status,
		"winner_id":  a.WinnerID,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CancelAuctionHandler", err)
		return
	}

	a, err := h.service.CancelAuction(c.Request.Context(), auctionID, req.AdminID, req.Reason)
	if err != nil {
		helpers.RespondError(c, "CancelAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"admin_id":   req.AdminID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction cancelled successfully")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled successfully", map[string]any{"auction_id": auctionID})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	if !req.Amount.IsPositive() {
		helpers.HandleBindError(c, "PlaceBidHandler", fmt.Errorf("amount must be positive"))
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, req.BidderID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     bid.Amount.String(),
	})
}

// BuyItNowHandler handles POST /auctions/:auction_id/buy-it-now
func (h *AuctionHandler) BuyItNowHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.BuyItNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "BuyItNowHandler", err)
		return
	}

	bid, err := h.service.BuyItNow(c.Request.Context(), auctionID, req.BidderID)
	if err != nil {
		helpers.RespondError(c, "BuyItNowHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "auction bought successfully")
	helpers.LogSuccess("BuyItNowHandler", "auction bought successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetAuctionsByBidderHandler handles GET /bidders/:bidder_id/auctions
func (h *AuctionHandler) GetAuctionsByBidderHandler(c *gin.Context) {
	bidderID := c.Param("bidder_id")
	auctions, err := h.service.GetAuctionsByBidder(c.Request.Context(), bidderID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionsByBidderHandler", err, map[string]any{"bidder_id": bidderID})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByBidderHandler", "auctions retrieved successfully", map[string]any{
		"bidder_id":      bidderID,
		"auctions_count": len(auctions),
	})
}

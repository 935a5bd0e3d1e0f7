package server

import (
	"net/http"

	handler "auction-engine/services/auction/handler"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, nil, "ok")
	})

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.ScheduleAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.PATCH("/:auction_id", auctionHandler.UpdateAuctionHandler)
		auctions.POST("/:auction_id/start", auctionHandler.StartAuctionHandler)
		auctions.POST("/:auction_id/end", auctionHandler.EndAuctionHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.POST("/:auction_id/buy-it-now", auctionHandler.BuyItNowHandler)
	}

	bidders := router.Group("/bidders")
	{
		bidders.GET("/:bidder_id/auctions", auctionHandler.GetAuctionsByBidderHandler)
	}

	return router
}

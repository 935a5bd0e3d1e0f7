package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/collaborators"
	"auction-engine/internal/gate"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	benchAdmin   = "admin"
	benchBidders = 1000
)

func bidderID(i int) string { return fmt.Sprintf("user_%d", i%benchBidders) }

// setupService creates a service over in-memory storage with numAuctions
// running auctions, each starting at 50 with an increment of 1
func setupService(tb testing.TB, numAuctions int) (*auction.Service, []string) {
	tb.Helper()

	inv := collaborators.NewMemoryInventory()
	bidders := collaborators.NewMemoryBidders()
	for i := 0; i < benchBidders; i++ {
		bidders.Add(collaborators.Bidder{BidderID: bidderID(i), DisplayName: bidderID(i)})
	}

	svc := auction.NewService(auction.Deps{
		Repo:       repository.NewMemoryRepo(),
		Gate:       gate.NewMemoryLocker(5 * time.Second),
		Authorizer: collaborators.NewRoleAuthorizer(benchAdmin),
		Bidders:    bidders,
		Inventory:  inv,
		Policy:     auction.DefaultPolicy,
	})

	ctx := context.Background()
	now := time.Now()
	pricing := model.Pricing{StartPrice: decimal.NewFromInt(50), MinIncrement: decimal.NewFromInt(1)}
	window := model.Window{Start: now.Add(time.Minute), End: now.Add(24 * time.Hour)}

	ids := make([]string, 0, numAuctions)
	for i := 0; i < numAuctions; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		inv.AddListing(collaborators.Listing{ListingID: listingID, Status: collaborators.ListingSellable, UnitCount: 1})

		a, err := svc.ScheduleAuction(ctx, listingID, benchAdmin, window, pricing)
		if err != nil {
			tb.Fatalf("failed to schedule auction: %v", err)
		}
		if _, err := svc.StartAuction(ctx, a.AuctionID, benchAdmin, auction.Immediate()); err != nil {
			tb.Fatalf("failed to start auction: %v", err)
		}
		ids = append(ids, a.AuctionID)
	}
	return svc, ids
}

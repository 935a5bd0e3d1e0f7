package auction

import (
	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/collaborators"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PlaceBid validates and records a bid against a running auction
func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	bidder, err := s.lookupBidder(ctx, bidderID, collaborators.ActionPlaceBid)
	if err != nil {
		return model.Bid{}, err
	}

	var (
		bid model.Bid
		evt events.Event
	)
	err = s.locked(ctx, auctionID, func(_ context.Context, tx repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if err := ensureBiddable(*a, now); err != nil {
			return err
		}
		if err := s.validateAmount(*a, amount); err != nil {
			return err
		}

		seen, err := tx.HasBidFrom(bidderID)
		if err != nil {
			return fmt.Errorf("service: check previous bids of %s: %w", bidderID, err)
		}

		bid = model.Bid{
			BidID:      utils.GenerateID(),
			AuctionID:  auctionID,
			BidderID:   bidderID,
			BidderName: bidder.DisplayName,
			Amount:     amount,
			Status:     model.BidActive,
			CreatedAt:  now,
		}
		if err := tx.InsertBid(bid); err != nil {
			return fmt.Errorf("service: failed to record bid for auction %s by bidder %s: %w", auctionID, bidderID, err)
		}

		evt = bidPlacedEvent(*a, bid, !seen)
		applyBid(a, bid, seen, now)
		return nil
	}, nil)
	if err != nil {
		utils.Warn("bid rejected", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"amount":     amount.String(),
			"error":      err.Error(),
		})
		return model.Bid{}, err
	}

	s.events.Publish(evt)
	utils.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.BidID,
		"bidder_id":  bidderID,
		"amount":     amount.String(),
	})
	return bid, nil
}

// BuyItNow sells the listing to bidderID at the buy-it-now price and ends the auction
func (s *Service) BuyItNow(ctx context.Context, auctionID, bidderID string) (model.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}

	bidder, err := s.lookupBidder(ctx, bidderID, collaborators.ActionBuyItNow)
	if err != nil {
		return model.Bid{}, err
	}

	var (
		bid           model.Bid
		placed, ended events.Event
	)
	err = s.locked(ctx, auctionID, func(ctx context.Context, tx repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if err := ensureBiddable(*a, now); err != nil {
			return err
		}
		if err := s.checkBuyItNow(ctx, *a); err != nil {
			return err
		}

		seen, err := tx.HasBidFrom(bidderID)
		if err != nil {
			return fmt.Errorf("service: check previous bids of %s: %w", bidderID, err)
		}

		bid = model.Bid{
			BidID:      utils.GenerateID(),
			AuctionID:  auctionID,
			BidderID:   bidderID,
			BidderName: bidder.DisplayName,
			Amount:     a.BuyItNowPrice.Decimal,
			Status:     model.BidWon,
			IsBuyItNow: true,
			CreatedAt:  now,
		}
		if err := tx.InsertBid(bid); err != nil {
			return fmt.Errorf("service: failed to record buy-it-now for auction %s by bidder %s: %w", auctionID, bidderID, err)
		}

		placed = bidPlacedEvent(*a, bid, !seen)
		applyBid(a, bid, seen, now)

		if err := transition(a, model.StatusCompleted); err != nil {
			return err
		}
		a.ActualEnd = &now
		a.EndedBy = bidderID
		a.EndReason = "buy-it-now"
		a.WinnerID = bidderID
		a.WinningBidID = bid.BidID
		if err := s.setListing(ctx, a.ListingID, collaborators.ListingSold); err != nil {
			return err
		}

		ended = events.Event{
			Kind:         events.KindAuctionEnded,
			AuctionID:    auctionID,
			OccurredAt:   now,
			WinnerID:     bidderID,
			WinningBidID: bid.BidID,
			Amount:       bid.Amount,
			IsBuyItNow:   true,
			Reason:       a.EndReason,
		}
		return nil
	}, func() {
		s.scheduler.Cancel(auctionID)
	})
	if err != nil {
		utils.Warn("buy-it-now rejected", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return model.Bid{}, err
	}

	s.events.Publish(placed)
	s.events.Publish(ended)
	utils.Info("auction sold through buy-it-now", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.BidID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount.String(),
	})
	return bid, nil
}

// lookupBidder resolves and authorizes the bidder before any lock is taken
func (s *Service) lookupBidder(ctx context.Context, bidderID string, action collaborators.Action) (collaborators.Bidder, error) {
	bidder, err := s.bidders.Lookup(ctx, bidderID)
	if err != nil {
		return collaborators.Bidder{}, fmt.Errorf("service: lookup bidder %s: %w", bidderID, err)
	}
	if err := s.authorize(ctx, bidderID, action); err != nil {
		return collaborators.Bidder{}, err
	}
	return bidder, nil
}

// validateAmount checks an incremental bid against the current leader and pricing
func (s *Service) validateAmount(a model.Auction, amount decimal.Decimal) error {
	if a.HasLeader() {
		floor := a.CurrentHighestBid.Add(a.MinIncrement)
		if amount.LessThan(floor) {
			return fmt.Errorf("service: %w - current highest bid is %s, minimum next bid is %s",
				auctionerrors.ErrBidTooLow, a.CurrentHighestBid.StringFixed(2), floor.StringFixed(2))
		}
	} else if s.policy.FirstBidStrict {
		if !amount.GreaterThan(a.StartPrice) {
			return fmt.Errorf("service: %w - first bid must exceed start price %s",
				auctionerrors.ErrBidTooLow, a.StartPrice.StringFixed(2))
		}
	} else if amount.LessThan(a.StartPrice) {
		return fmt.Errorf("service: %w - minimum bid is start price %s",
			auctionerrors.ErrBidTooLow, a.StartPrice.StringFixed(2))
	}

	if s.policy.EnforceCeiling && a.MaxIncrement.IsPositive() {
		reference := a.StartPrice
		if a.HasLeader() {
			reference = a.CurrentHighestBid
		}
		ceiling := reference.Add(a.MaxIncrement)
		if amount.GreaterThan(ceiling) {
			return fmt.Errorf("service: %w - maximum next bid is %s",
				auctionerrors.ErrBidExceedsCeiling, ceiling.StringFixed(2))
		}
	}

	if a.BidUnit.IsPositive() && !amount.Mod(a.BidUnit).IsZero() {
		return fmt.Errorf("service: %w - amount must be a multiple of %s", auctionerrors.ErrInvalidBid, a.BidUnit.StringFixed(2))
	}
	return nil
}

func (s *Service) checkBuyItNow(ctx context.Context, a model.Auction) error {
	if !a.BuyItNowPrice.Valid {
		return fmt.Errorf("service: %w - auction %s has no buy-it-now price", auctionerrors.ErrBuyItNowUnavailable, a.AuctionID)
	}
	if a.HasLeader() && !a.CurrentHighestBid.LessThan(a.BuyItNowPrice.Decimal) {
		return fmt.Errorf("service: %w - current highest bid %s already reached buy-it-now price",
			auctionerrors.ErrBuyItNowUnavailable, a.CurrentHighestBid.StringFixed(2))
	}

	listing, err := s.inventory.GetListing(ctx, a.ListingID)
	if err != nil {
		return fmt.Errorf("service: get listing %s: %w", a.ListingID, err)
	}
	if listing.UnitCount != 1 {
		return fmt.Errorf("service: %w - listing %s has %d units", auctionerrors.ErrBuyItNowUnavailable, a.ListingID, listing.UnitCount)
	}
	return nil
}

// applyBid moves the auction aggregates to reflect an accepted bid
func applyBid(a *model.Auction, bid model.Bid, seen bool, now time.Time) {
	a.TotalBids++
	if !seen {
		a.TotalBidders++
	}
	a.CurrentHighestBid = bid.Amount
	a.LeadingBidID = bid.BidID
	a.LeadingBidderID = bid.BidderID
	a.LeadingBidderName = bid.BidderName
	a.UpdatedAt = now
}

// bidPlacedEvent must be built before applyBid so PreviousBidID is the old leader
func bidPlacedEvent(a model.Auction, bid model.Bid, isNewBidder bool) events.Event {
	return events.Event{
		Kind:          events.KindBidPlaced,
		AuctionID:     a.AuctionID,
		OccurredAt:    bid.CreatedAt,
		BidID:         bid.BidID,
		BidderID:      bid.BidderID,
		BidderName:    bid.BidderName,
		PreviousBidID: a.LeadingBidID,
		Amount:        bid.Amount,
		IsNewBidder:   isNewBidder,
		IsBuyItNow:    bid.IsBuyItNow,
	}
}

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
)

// StartOptions selects how an auction is started by hand.
// A nil Window starts immediately with the scheduled end.
type StartOptions struct {
	Window *model.Window
}

// Immediate starts the auction now
func Immediate() StartOptions { return StartOptions{} }

// WithWindow starts the auction now and replaces its window
func WithWindow(w model.Window) StartOptions { return StartOptions{Window: &w} }

const reasonScheduledEnd = "scheduled end"

// ScheduleAuction creates a SCHEDULED auction for a sellable listing and
// registers its timed start
func (s *Service) ScheduleAuction(ctx context.Context, listingID, adminID string, window model.Window, pricing model.Pricing) (model.Auction, error) {
	if listingID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing listingID", auctionerrors.ErrListingNotFound)
	}
	if err := s.authorize(ctx, adminID, collaborators.ActionScheduleAuction); err != nil {
		return model.Auction{}, err
	}

	now := s.clock.Now()
	if err := s.validateWindow(window, now); err != nil {
		return model.Auction{}, err
	}
	if err := validatePricing(pricing); err != nil {
		return model.Auction{}, err
	}

	// listings share the gate namespace with auctions so two schedules of one
	// listing cannot both see it sellable
	release, err := s.gate.Acquire(ctx, "listing:"+listingID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	defer release()

	if err := s.checkListing(ctx, listingID, pricing, true); err != nil {
		return model.Auction{}, err
	}

	a := model.Auction{
		AuctionID:         utils.GenerateID(),
		ListingID:         listingID,
		Status:            model.StatusScheduled,
		ScheduledStart:    window.Start.UTC(),
		ScheduledEnd:      window.End.UTC(),
		CurrentHighestBid: pricing.StartPrice,
		CreatedBy:         adminID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	a.ApplyPricing(pricing)

	if err := s.setListing(ctx, listingID, collaborators.ListingReservedForAuction); err != nil {
		return model.Auction{}, err
	}
	if err := s.repo.CreateAuction(ctx, a); err != nil {
		if revertErr := s.setListing(ctx, listingID, collaborators.ListingSellable); revertErr != nil {
			utils.Error("failed to release listing after create failure", map[string]any{
				"listing_id": listingID,
				"error":      revertErr.Error(),
			})
		}
		return model.Auction{}, fmt.Errorf("service: failed to create auction for listing %s: %w", listingID, err)
	}

	s.scheduler.ScheduleStart(a.AuctionID, a.ScheduledStart)
	utils.Info("auction scheduled", map[string]any{
		"auction_id": a.AuctionID,
		"listing_id": listingID,
		"start":      a.ScheduledStart,
		"end":        a.ScheduledEnd,
		"admin_id":   adminID,
	})
	return a, nil
}

// UpdateAuction replaces window and pricing of an auction that has not started
func (s *Service) UpdateAuction(ctx context.Context, auctionID, adminID string, window model.Window, pricing model.Pricing) (model.Auction, error) {
	if err := s.authorize(ctx, adminID, collaborators.ActionUpdateAuction); err != nil {
		return model.Auction{}, err
	}
	if err := validatePricing(pricing); err != nil {
		return model.Auction{}, err
	}

	var updated model.Auction
	err := s.locked(ctx, auctionID, func(ctx context.Context, _ repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if !isEditable(*a) {
			return fmt.Errorf("service: %w - auction %s is %s", auctionerrors.ErrNotEditable, a.AuctionID, a.Status)
		}
		if err := s.validateWindow(window, now); err != nil {
			return err
		}
		if err := s.checkListing(ctx, a.ListingID, pricing, false); err != nil {
			return err
		}

		a.ScheduledStart = window.Start.UTC()
		a.ScheduledEnd = window.End.UTC()
		a.ApplyPricing(pricing)
		a.CurrentHighestBid = pricing.StartPrice
		a.UpdatedAt = now

		updated = *a
		return nil
	}, func() {
		s.scheduler.ScheduleStart(updated.AuctionID, updated.ScheduledStart)
	})
	if err != nil {
		return model.Auction{}, err
	}

	utils.Info("auction updated", map[string]any{
		"auction_id": auctionID,
		"start":      updated.ScheduledStart,
		"end":        updated.ScheduledEnd,
		"admin_id":   adminID,
	})
	return updated, nil
}

// StartAuction opens bidding on a scheduled auction ahead of its timer
func (s *Service) StartAuction(ctx context.Context, auctionID, adminID string, opts StartOptions) (model.Auction, error) {
	if err := s.authorize(ctx, adminID, collaborators.ActionStartAuction); err != nil {
		return model.Auction{}, err
	}
	return s.start(ctx, auctionID, adminID, opts, false)
}

// StartDue starts an auction whose scheduled start has passed. It reports
// ErrNotDue when called early so the caller can re-register its timer.
func (s *Service) StartDue(ctx context.Context, auctionID string) error {
	_, err := s.start(ctx, auctionID, collaborators.SystemActor, Immediate(), true)
	return err
}

func (s *Service) start(ctx context.Context, auctionID, actorID string, opts StartOptions, requireDue bool) (model.Auction, error) {
	var (
		started model.Auction
		evt     events.Event
	)
	err := s.locked(ctx, auctionID, func(ctx context.Context, _ repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if !canStart(*a) {
			return fmt.Errorf("service: %w - auction %s is %s, cannot start",
				auctionerrors.ErrInvalidTransition, a.AuctionID, a.Status)
		}
		if requireDue && now.Before(a.ScheduledStart) {
			return fmt.Errorf("service: %w - auction %s starts at %s",
				auctionerrors.ErrNotDue, a.AuctionID, a.ScheduledStart.Format(time.RFC3339))
		}

		switch {
		case opts.Window != nil:
			if err := s.validateWindow(*opts.Window, now); err != nil {
				return err
			}
			a.ScheduledStart = opts.Window.Start.UTC()
			a.ScheduledEnd = opts.Window.End.UTC()
		case !a.ScheduledEnd.After(now):
			a.ScheduledEnd = now.Add(s.policy.DefaultRunTime)
		}

		if err := transition(a, model.StatusInProgress); err != nil {
			return err
		}
		a.ActualStart = &now
		a.StartedBy = actorID
		a.CurrentHighestBid = a.StartPrice
		a.UpdatedAt = now

		if err := s.setListing(ctx, a.ListingID, collaborators.ListingInAuction); err != nil {
			return err
		}

		started = *a
		evt = events.Event{
			Kind:       events.KindAuctionStarted,
			AuctionID:  a.AuctionID,
			OccurredAt: now,
			EndsAt:     a.ScheduledEnd,
		}
		return nil
	}, func() {
		s.scheduler.Cancel(started.AuctionID)
		s.scheduler.ScheduleEnd(started.AuctionID, started.ScheduledEnd)
	})
	if err != nil {
		return model.Auction{}, err
	}

	s.events.Publish(evt)
	utils.Info("auction started", map[string]any{
		"auction_id": auctionID,
		"actor_id":   actorID,
		"ends_at":    started.ScheduledEnd,
	})
	return started, nil
}

// EndAuction closes a running auction ahead of its timer and settles the winner
func (s *Service) EndAuction(ctx context.Context, auctionID, adminID, reason string) (model.Auction, error) {
	if err := s.authorize(ctx, adminID, collaborators.ActionEndAuction); err != nil {
		return model.Auction{}, err
	}
	if reason == "" {
		reason = "ended by administrator"
	}
	return s.end(ctx, auctionID, adminID, reason, false)
}

// EndDue ends an auction whose scheduled end has passed. It reports
// ErrNotDue when called early so the caller can re-register its timer.
func (s *Service) EndDue(ctx context.Context, auctionID string) error {
	_, err := s.end(ctx, auctionID, collaborators.SystemActor, reasonScheduledEnd, true)
	return err
}

func (s *Service) end(ctx context.Context, auctionID, actorID, reason string, requireDue bool) (model.Auction, error) {
	var (
		ended model.Auction
		evt   events.Event
	)
	err := s.locked(ctx, auctionID, func(ctx context.Context, tx repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if !canEnd(*a) {
			return fmt.Errorf("service: %w - auction %s is %s, cannot end",
				auctionerrors.ErrInvalidTransition, a.AuctionID, a.Status)
		}
		if requireDue && now.Before(a.ScheduledEnd) {
			return fmt.Errorf("service: %w - auction %s ends at %s",
				auctionerrors.ErrNotDue, a.AuctionID, a.ScheduledEnd.Format(time.RFC3339))
		}

		var err error
		evt, err = s.settle(ctx, tx, a, now)
		if err != nil {
			return err
		}
		a.ActualEnd = &now
		a.EndedBy = actorID
		a.EndReason = reason
		a.UpdatedAt = now
		evt.Reason = reason

		ended = *a
		return nil
	}, func() {
		s.scheduler.Cancel(ended.AuctionID)
	})
	if err != nil {
		return model.Auction{}, err
	}

	s.events.Publish(evt)
	utils.Info("auction ended", map[string]any{
		"auction_id": auctionID,
		"status":     ended.Status,
		"winner_id":  ended.WinnerID,
		"actor_id":   actorID,
		"reason":     reason,
	})
	return ended, nil
}

// settle picks the outcome of an ending auction: the leader wins and the
// listing is sold, or with no bids the auction fails and the listing returns
// to sale.
func (s *Service) settle(ctx context.Context, tx repository.AuctionTx, a *model.Auction, now time.Time) (events.Event, error) {
	evt := events.Event{
		Kind:       events.KindAuctionEnded,
		AuctionID:  a.AuctionID,
		OccurredAt: now,
	}

	if !a.HasLeader() {
		if err := transition(a, model.StatusFailed); err != nil {
			return events.Event{}, err
		}
		if err := s.setListing(ctx, a.ListingID, collaborators.ListingSellable); err != nil {
			return events.Event{}, err
		}
		return evt, nil
	}

	leader, err := tx.GetBid(a.LeadingBidID)
	if err != nil {
		return events.Event{}, fmt.Errorf("service: load leading bid %s: %w", a.LeadingBidID, err)
	}
	if err := tx.UpdateBidStatus(leader.BidID, model.BidWinning); err != nil {
		return events.Event{}, fmt.Errorf("service: mark winning bid %s: %w", leader.BidID, err)
	}
	if err := transition(a, model.StatusCompleted); err != nil {
		return events.Event{}, err
	}
	a.WinnerID = leader.BidderID
	a.WinningBidID = leader.BidID

	if err := s.setListing(ctx, a.ListingID, collaborators.ListingSold); err != nil {
		return events.Event{}, err
	}

	evt.WinnerID = leader.BidderID
	evt.WinningBidID = leader.BidID
	evt.Amount = leader.Amount
	return evt, nil
}

// CancelAuction withdraws an auction that has not finished. No winner is
// chosen and the listing returns to sale.
func (s *Service) CancelAuction(ctx context.Context, auctionID, adminID, reason string) (model.Auction, error) {
	if err := s.authorize(ctx, adminID, collaborators.ActionCancelAuction); err != nil {
		return model.Auction{}, err
	}
	if reason == "" {
		reason = "cancelled by administrator"
	}

	var (
		cancelled model.Auction
		evt       events.Event
	)
	err := s.locked(ctx, auctionID, func(ctx context.Context, _ repository.AuctionTx, a *model.Auction) error {
		now := s.clock.Now()
		if err := transition(a, model.StatusCancelled); err != nil {
			return err
		}
		a.ActualEnd = &now
		a.EndedBy = adminID
		a.EndReason = reason
		a.UpdatedAt = now

		if err := s.setListing(ctx, a.ListingID, collaborators.ListingSellable); err != nil {
			return err
		}

		cancelled = *a
		evt = events.Event{
			Kind:       events.KindAuctionCancelled,
			AuctionID:  a.AuctionID,
			OccurredAt: now,
			Reason:     reason,
		}
		return nil
	}, func() {
		s.scheduler.Cancel(cancelled.AuctionID)
	})
	if err != nil {
		return model.Auction{}, err
	}

	s.events.Publish(evt)
	utils.Info("auction cancelled", map[string]any{
		"auction_id": auctionID,
		"admin_id":   adminID,
		"reason":     reason,
	})
	return cancelled, nil
}

// checkListing verifies the listing can carry an auction with pricing.
// requireSellable is false for auctions that already hold the listing.
func (s *Service) checkListing(ctx context.Context, listingID string, pricing model.Pricing, requireSellable bool) error {
	listing, err := s.inventory.GetListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("service: get listing %s: %w", listingID, err)
	}
	if requireSellable && listing.Status != collaborators.ListingSellable {
		return fmt.Errorf("service: %w - listing %s is %s", auctionerrors.ErrListingUnavailable, listingID, listing.Status)
	}
	if pricing.BuyItNowPrice.Valid && listing.UnitCount != 1 {
		return fmt.Errorf("service: %w - buy-it-now requires a single-unit listing, %s has %d",
			auctionerrors.ErrInvalidPricing, listingID, listing.UnitCount)
	}
	return nil
}

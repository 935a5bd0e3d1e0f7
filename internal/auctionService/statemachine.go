package auction

import (
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"fmt"
	"time"
)

// transitions lists the statuses each status may move to.
// READY is never produced here; rows prepared outside the engine enter in it
// and start like SCHEDULED ones.
var transitions = map[model.AuctionStatus][]model.AuctionStatus{
	model.StatusScheduled:  {model.StatusInProgress, model.StatusCancelled},
	model.StatusReady:      {model.StatusInProgress, model.StatusCancelled},
	model.StatusInProgress: {model.StatusCompleted, model.StatusFailed, model.StatusCancelled},
}

func canTransition(from, to model.AuctionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the auction to status or reports ErrInvalidTransition
func transition(a *model.Auction, to model.AuctionStatus) error {
	if !canTransition(a.Status, to) {
		return fmt.Errorf("service: %w - auction %s is %s, cannot become %s",
			auctionerrors.ErrInvalidTransition, a.AuctionID, a.Status, to)
	}
	a.Status = to
	return nil
}

func canStart(a model.Auction) bool {
	return a.Status == model.StatusScheduled || a.Status == model.StatusReady
}

func canEnd(a model.Auction) bool {
	return a.Status == model.StatusInProgress
}

// isEditable reports whether window and pricing may still change
func isEditable(a model.Auction) bool {
	return canStart(a) && a.TotalBids == 0
}

// ensureBiddable checks that bids are accepted at now
func ensureBiddable(a model.Auction, now time.Time) error {
	if a.Status != model.StatusInProgress {
		return fmt.Errorf("service: %w - auction %s is %s", auctionerrors.ErrAuctionNotInProgress, a.AuctionID, a.Status)
	}
	if !now.Before(a.ScheduledEnd) {
		return fmt.Errorf("service: %w - bidding on auction %s closed at %s",
			auctionerrors.ErrAuctionNotInProgress, a.AuctionID, a.ScheduledEnd.Format(time.RFC3339))
	}
	return nil
}

func (s *Service) validateWindow(w model.Window, now time.Time) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("service: %w - start and end are required", auctionerrors.ErrInvalidSchedule)
	}
	if w.Start.Before(now.Add(-s.policy.StartGrace)) {
		return fmt.Errorf("service: %w - start %s is in the past", auctionerrors.ErrInvalidSchedule, w.Start.Format(time.RFC3339))
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("service: %w - end must be after start", auctionerrors.ErrInvalidSchedule)
	}
	if w.End.Sub(w.Start) < s.policy.MinDuration {
		return fmt.Errorf("service: %w - auction must run at least %s", auctionerrors.ErrInvalidSchedule, s.policy.MinDuration)
	}
	return nil
}

func validatePricing(p model.Pricing) error {
	if !p.StartPrice.IsPositive() {
		return fmt.Errorf("service: %w - start price must be positive", auctionerrors.ErrInvalidPricing)
	}
	if !p.MinIncrement.IsPositive() {
		return fmt.Errorf("service: %w - min increment must be positive", auctionerrors.ErrInvalidPricing)
	}
	if p.MaxIncrement.IsNegative() {
		return fmt.Errorf("service: %w - max increment must not be negative", auctionerrors.ErrInvalidPricing)
	}
	if p.MaxIncrement.IsPositive() && p.MaxIncrement.LessThan(p.MinIncrement) {
		return fmt.Errorf("service: %w - max increment %s below min increment %s",
			auctionerrors.ErrInvalidPricing, p.MaxIncrement, p.MinIncrement)
	}
	if p.BidUnit.IsNegative() {
		return fmt.Errorf("service: %w - bid unit must not be negative", auctionerrors.ErrInvalidPricing)
	}
	if p.BidUnit.IsPositive() {
		if !p.StartPrice.Mod(p.BidUnit).IsZero() || !p.MinIncrement.Mod(p.BidUnit).IsZero() {
			return fmt.Errorf("service: %w - start price and min increment must be multiples of bid unit %s",
				auctionerrors.ErrInvalidPricing, p.BidUnit)
		}
	}
	if p.BuyItNowPrice.Valid && !p.BuyItNowPrice.Decimal.GreaterThan(p.StartPrice) {
		return fmt.Errorf("service: %w - buy-it-now price must exceed start price", auctionerrors.ErrInvalidPricing)
	}
	return nil
}

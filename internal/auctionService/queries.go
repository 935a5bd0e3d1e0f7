package auction

import (
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"context"
	"fmt"
)

// GetAuction returns the latest committed state of an auction
func (s *Service) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrAuctionNotFound)
	}

	a, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// GetBids returns the bids of an auction, highest first
func (s *Service) GetBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrAuctionNotFound)
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (s *Service) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ID", auctionerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidderID, err)
	}
	return auctions, nil
}

// Audit re-derives the aggregates of an auction from its bid ledger and
// reports ErrAggregateDrift when the stored view disagrees. It holds the gate
// so no write lands between the two reads.
func (s *Service) Audit(ctx context.Context, auctionID string) (model.Aggregates, error) {
	release, err := s.gate.Acquire(ctx, auctionID)
	if err != nil {
		return model.Aggregates{}, fmt.Errorf("service: %w", err)
	}
	defer release()

	a, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Aggregates{}, fmt.Errorf("service: audit auction %s: %w", auctionID, err)
	}
	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return model.Aggregates{}, fmt.Errorf("service: audit auction %s: %w", auctionID, err)
	}

	stored := model.AggregatesOf(a)
	derived := model.DeriveAggregates(a.StartPrice, bids)
	if !stored.Equal(derived) {
		return derived, fmt.Errorf("service: %w - auction %s stored %+v, ledger %+v",
			auctionerrors.ErrAggregateDrift, auctionID, stored, derived)
	}
	return derived, nil
}

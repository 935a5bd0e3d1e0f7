package events

import (
	"auction-engine/internal/collaborators"
	"context"
	"fmt"
)

// ParticipationCounter bumps a bidder's participation statistic the first time
// they bid on an auction. It runs only from the dispatcher, never under an
// auction lock, so the user record is never locked inside the bid transaction.
type ParticipationCounter struct {
	recorder collaborators.ParticipationRecorder
}

func NewParticipationCounter(recorder collaborators.ParticipationRecorder) *ParticipationCounter {
	return &ParticipationCounter{recorder: recorder}
}

func (p *ParticipationCounter) Name() string { return "participation" }

func (p *ParticipationCounter) Handle(ctx context.Context, evt Event) error {
	if evt.Kind != KindBidPlaced || !evt.IsNewBidder {
		return nil
	}
	if err := p.recorder.IncrementParticipation(ctx, evt.BidderID); err != nil {
		return fmt.Errorf("participation: bidder %s: %w", evt.BidderID, err)
	}
	return nil
}

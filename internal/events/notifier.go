package events

import (
	"auction-engine/internal/collaborators"
	model "auction-engine/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NotificationType is the type tag subscribers switch on
type NotificationType string

const (
	NotifyNewBid            NotificationType = "NEW_BID"
	NotifyOutbid            NotificationType = "BID_OUTBID"
	NotifyAuctionStarted    NotificationType = "AUCTION_STARTED"
	NotifyAuctionEnded      NotificationType = "AUCTION_ENDED"
	NotifyBuyItNowCompleted NotificationType = "BUY_IT_NOW_COMPLETED"
	NotifyPaymentRequired   NotificationType = "PAYMENT_REQUIRED"
	NotifyAuctionCancelled  NotificationType = "AUCTION_CANCELLED"
	NotifyAuctionEndingSoon NotificationType = "AUCTION_ENDING_SOON"
)

// Notification is the payload pushed to subscribers
type Notification struct {
	Type      NotificationType `json:"type"`
	AuctionID string           `json:"auction_id"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// BidReader is the read access the notifier needs, outside any lock
type BidReader interface {
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
}

// Notifier turns events into public broadcasts and private messages
type Notifier struct {
	bids      BidReader
	publisher collaborators.Publisher
}

func NewNotifier(bids BidReader, publisher collaborators.Publisher) *Notifier {
	return &Notifier{bids: bids, publisher: publisher}
}

func (n *Notifier) Name() string { return "notifier" }

func (n *Notifier) Handle(ctx context.Context, evt Event) error {
	switch evt.Kind {
	case KindBidPlaced:
		return n.bidPlaced(ctx, evt)
	case KindAuctionStarted:
		return n.auctionStarted(ctx, evt)
	case KindAuctionEnded:
		return n.auctionEnded(ctx, evt)
	case KindAuctionCancelled:
		return n.broadcast(ctx, evt, Notification{
			Type:    NotifyAuctionCancelled,
			Message: "auction cancelled",
			Data:    map[string]any{"reason": evt.Reason},
		})
	case KindAuctionEndingSoon:
		return n.broadcast(ctx, evt, Notification{
			Type:    NotifyAuctionEndingSoon,
			Message: "auction ending soon",
			Data:    map[string]any{"ends_at": evt.EndsAt},
		})
	default:
		return nil
	}
}

func (n *Notifier) bidPlaced(ctx context.Context, evt Event) error {
	err := n.broadcast(ctx, evt, Notification{
		Type:    NotifyNewBid,
		Message: "new bid placed",
		Data: map[string]any{
			"bid_id":        evt.BidID,
			"bidder_id":     evt.BidderID,
			"bidder_name":   evt.BidderName,
			"amount":        evt.Amount.String(),
			"is_buy_it_now": evt.IsBuyItNow,
		},
	})

	if evt.PreviousBidID == "" {
		return err
	}

	previous, getErr := n.bids.GetBid(ctx, evt.PreviousBidID)
	if getErr != nil {
		return errors.Join(err, fmt.Errorf("notifier: load previous bid: %w", getErr))
	}
	if previous.BidderID == evt.BidderID {
		return err
	}

	outbid := n.send(ctx, previous.BidderID, evt, Notification{
		Type:    NotifyOutbid,
		Message: "you have been outbid",
		Data: map[string]any{
			"your_bid_id":   previous.BidID,
			"your_amount":   previous.Amount.String(),
			"new_amount":    evt.Amount.String(),
			"new_bid_id":    evt.BidID,
			"is_buy_it_now": evt.IsBuyItNow,
		},
	})
	return errors.Join(err, outbid)
}

func (n *Notifier) auctionStarted(ctx context.Context, evt Event) error {
	note := Notification{
		Type:    NotifyAuctionStarted,
		Message: "auction started",
		Data:    map[string]any{"ends_at": evt.EndsAt},
	}
	return errors.Join(
		n.broadcast(ctx, evt, note),
		n.publish(ctx, AuctionsTopic, evt, note),
	)
}

func (n *Notifier) auctionEnded(ctx context.Context, evt Event) error {
	note := Notification{
		Type:    NotifyAuctionEnded,
		Message: "auction ended",
		Data: map[string]any{
			"winner_id":      evt.WinnerID,
			"winning_bid_id": evt.WinningBidID,
			"amount":         evt.Amount.String(),
			"reason":         evt.Reason,
		},
	}
	if evt.WinnerID == "" {
		note.Message = "auction ended without a winner"
	}
	if evt.IsBuyItNow {
		note.Type = NotifyBuyItNowCompleted
		note.Message = "auction sold through buy-it-now"
	}

	err := n.broadcast(ctx, evt, note)
	if evt.WinnerID == "" {
		return err
	}

	payment := n.send(ctx, evt.WinnerID, evt, Notification{
		Type:    NotifyPaymentRequired,
		Message: "you won the auction, payment required",
		Data: map[string]any{
			"winning_bid_id": evt.WinningBidID,
			"amount":         evt.Amount.String(),
		},
	})
	return errors.Join(err, payment)
}

func (n *Notifier) broadcast(ctx context.Context, evt Event, note Notification) error {
	return n.publish(ctx, AuctionTopic(evt.AuctionID), evt, note)
}

func (n *Notifier) publish(ctx context.Context, topic string, evt Event, note Notification) error {
	payload, err := encode(evt, note)
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("notifier: publish %s to %s: %w", note.Type, topic, err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, subscriberID string, evt Event, note Notification) error {
	payload, err := encode(evt, note)
	if err != nil {
		return err
	}
	if err := n.publisher.SendToSubscriber(ctx, subscriberID, payload); err != nil {
		return fmt.Errorf("notifier: send %s to %s: %w", note.Type, subscriberID, err)
	}
	return nil
}

func encode(evt Event, note Notification) ([]byte, error) {
	note.AuctionID = evt.AuctionID
	note.Timestamp = evt.OccurredAt
	payload, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("notifier: encode %s: %w", note.Type, err)
	}
	return payload, nil
}

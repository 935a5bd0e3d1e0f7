// Package collaborators declares the services the auction engine consumes but
// does not own: identity and authorization, the bidder directory, inventory,
// push transport and user statistics.
package collaborators

import "context"

// Action names an operation subject to authorization
type Action string

const (
	ActionScheduleAuction Action = "auction.schedule"
	ActionUpdateAuction   Action = "auction.update"
	ActionStartAuction    Action = "auction.start"
	ActionEndAuction      Action = "auction.end"
	ActionCancelAuction   Action = "auction.cancel"
	ActionPlaceBid        Action = "bid.place"
	ActionBuyItNow        Action = "bid.buy_it_now"
)

// IsAdministrative reports whether the action is reserved for administrators
func (a Action) IsAdministrative() bool {
	switch a {
	case ActionPlaceBid, ActionBuyItNow:
		return false
	default:
		return true
	}
}

// SystemActor is the identity the scheduler acts under
const SystemActor = "system:scheduler"

// ListingStatus is the product-lifecycle state of a listing
type ListingStatus string

const (
	ListingSellable           ListingStatus = "sellable"
	ListingReservedForAuction ListingStatus = "reserved_for_auction"
	ListingInAuction          ListingStatus = "in_auction"
	ListingSold               ListingStatus = "sold"
)

// Listing is the inventory view of a product offered at auction
type Listing struct {
	ListingID string        `json:"listing_id"`
	Status    ListingStatus `json:"status"`
	UnitCount int           `json:"unit_count"`
}

// Bidder is the identity view of a user who may bid
type Bidder struct {
	BidderID    string `json:"bidder_id"`
	DisplayName string `json:"display_name"`
}

// Authorizer decides whether an actor may perform an action.
// A denial is reported as auctionerrors.ErrForbidden.
type Authorizer interface {
	Authorize(ctx context.Context, actorID string, action Action) error
}

// BidderDirectory resolves bidder identities.
// Unknown bidders are reported as auctionerrors.ErrBidderNotFound.
type BidderDirectory interface {
	Lookup(ctx context.Context, bidderID string) (Bidder, error)
}

// Inventory owns listing state.
// Unknown listings are reported as auctionerrors.ErrListingNotFound.
type Inventory interface {
	GetListing(ctx context.Context, listingID string) (Listing, error)
	SetListingStatus(ctx context.Context, listingID string, status ListingStatus) error
}

// Publisher pushes payloads to subscribers without delivery acknowledgement
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	SendToSubscriber(ctx context.Context, subscriberID string, payload []byte) error
}

// ParticipationRecorder maintains per-user participation statistics.
// It must never be called while an auction lock is held.
type ParticipationRecorder interface {
	IncrementParticipation(ctx context.Context, bidderID string) error
}

package collaborators

import (
	"auction-engine/internal/auctionerrors"
	"context"
	"fmt"
	"sync"
)

// RoleAuthorizer allows administrative actions to configured admins and the
// scheduler, and bidding actions to any non-empty actor.
type RoleAuthorizer struct {
	admins map[string]struct{}
}

// NewRoleAuthorizer creates a RoleAuthorizer for the given admin ids
func NewRoleAuthorizer(adminIDs ...string) *RoleAuthorizer {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &RoleAuthorizer{admins: admins}
}

func (a *RoleAuthorizer) Authorize(_ context.Context, actorID string, action Action) error {
	if actorID == "" {
		return fmt.Errorf("authorize %s: %w - anonymous actor", action, auctionerrors.ErrForbidden)
	}
	if !action.IsAdministrative() {
		return nil
	}
	if actorID == SystemActor {
		switch action {
		case ActionStartAuction, ActionEndAuction:
			return nil
		}
		return fmt.Errorf("authorize %s: %w - scheduler may only start or end auctions", action, auctionerrors.ErrForbidden)
	}
	if _, ok := a.admins[actorID]; !ok {
		return fmt.Errorf("authorize %s: %w - %s is not an admin", action, auctionerrors.ErrForbidden, actorID)
	}
	return nil
}

// MemoryBidders is an in-memory BidderDirectory that also keeps participation counters
type MemoryBidders struct {
	mu            sync.RWMutex
	bidders       map[string]Bidder
	participation map[string]int
}

// NewMemoryBidders creates a directory seeded with bidders
func NewMemoryBidders(bidders ...Bidder) *MemoryBidders {
	d := &MemoryBidders{
		bidders:       make(map[string]Bidder),
		participation: make(map[string]int),
	}
	for _, b := range bidders {
		d.bidders[b.BidderID] = b
	}
	return d
}

// Add registers a bidder
func (d *MemoryBidders) Add(b Bidder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bidders[b.BidderID] = b
}

func (d *MemoryBidders) Lookup(_ context.Context, bidderID string) (Bidder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.bidders[bidderID]
	if !ok {
		return Bidder{}, fmt.Errorf("lookup bidder %s: %w", bidderID, auctionerrors.ErrBidderNotFound)
	}
	return b, nil
}

func (d *MemoryBidders) IncrementParticipation(_ context.Context, bidderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.bidders[bidderID]; !ok {
		return fmt.Errorf("increment participation of %s: %w", bidderID, auctionerrors.ErrBidderNotFound)
	}
	d.participation[bidderID]++
	return nil
}

// EnsureBidder registers a bidder unless it is already known
func (d *MemoryBidders) EnsureBidder(_ context.Context, b Bidder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.bidders[b.BidderID]; !ok {
		d.bidders[b.BidderID] = b
	}
	return nil
}

// Participation returns how many distinct auctions a bidder has joined
func (d *MemoryBidders) Participation(_ context.Context, bidderID string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.bidders[bidderID]; !ok {
		return 0, fmt.Errorf("participation of %s: %w", bidderID, auctionerrors.ErrBidderNotFound)
	}
	return d.participation[bidderID], nil
}

// MemoryInventory is an in-memory Inventory
type MemoryInventory struct {
	mu       sync.RWMutex
	listings map[string]Listing
}

// NewMemoryInventory creates an inventory seeded with listings
func NewMemoryInventory(listings ...Listing) *MemoryInventory {
	inv := &MemoryInventory{listings: make(map[string]Listing)}
	for _, l := range listings {
		inv.listings[l.ListingID] = l
	}
	return inv
}

// AddListing registers a listing
func (inv *MemoryInventory) AddListing(l Listing) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.listings[l.ListingID] = l
}

// EnsureListing registers a listing unless it is already known
func (inv *MemoryInventory) EnsureListing(_ context.Context, l Listing) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, ok := inv.listings[l.ListingID]; !ok {
		inv.listings[l.ListingID] = l
	}
	return nil
}

func (inv *MemoryInventory) GetListing(_ context.Context, listingID string) (Listing, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	l, ok := inv.listings[listingID]
	if !ok {
		return Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return l, nil
}

func (inv *MemoryInventory) SetListingStatus(_ context.Context, listingID string, status ListingStatus) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	l, ok := inv.listings[listingID]
	if !ok {
		return fmt.Errorf("set listing %s status: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	l.Status = status
	inv.listings[listingID] = l
	return nil
}

// Package auction owns the auction lifecycle and the bid ledger. Every
// read-validate-write sequence against one auction runs behind the
// per-auction gate and inside one locked unit of work; events leave the
// service only after that unit of work commits.
package auction

import (
	"auction-engine/internal/clock"
	"auction-engine/internal/collaborators"
	"auction-engine/internal/events"
	"auction-engine/internal/gate"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"context"
	"fmt"
	"time"
)

// TaskScheduler registers the timed start and end of auctions
type TaskScheduler interface {
	ScheduleStart(auctionID string, at time.Time)
	ScheduleEnd(auctionID string, at time.Time)
	Cancel(auctionID string)
}

type noopScheduler struct{}

func (noopScheduler) ScheduleStart(string, time.Time) {}
func (noopScheduler) ScheduleEnd(string, time.Time)   {}
func (noopScheduler) Cancel(string)                   {}

type discardSink struct{}

func (discardSink) Publish(events.Event) {}

// Policy holds the business rules that deployments may tune
type Policy struct {
	// FirstBidStrict requires the first bid to exceed the start price instead of matching it
	FirstBidStrict bool
	// EnforceCeiling rejects bids above highest + max increment when a max increment is set
	EnforceCeiling bool
	MinDuration    time.Duration
	StartGrace     time.Duration
	// DefaultRunTime replaces a past-due end when an auction is started by hand
	DefaultRunTime time.Duration
}

// DefaultPolicy is the policy used for unset fields
var DefaultPolicy = Policy{
	EnforceCeiling: true,
	MinDuration:    10 * time.Minute,
	StartGrace:     5 * time.Minute,
	DefaultRunTime: time.Hour,
}

// Deps are the collaborators of the Service. Scheduler, Events, Gate and
// Clock fall back to inert or in-process defaults when nil.
type Deps struct {
	Repo       repository.AuctionDB
	Gate       gate.Locker
	Scheduler  TaskScheduler
	Events     events.Sink
	Authorizer collaborators.Authorizer
	Bidders    collaborators.BidderDirectory
	Inventory  collaborators.Inventory
	Clock      clock.Clock
	Policy     Policy
}

// Service defines the business logic for auctions and bidding
type Service struct {
	repo      repository.AuctionDB
	gate      gate.Locker
	scheduler TaskScheduler
	events    events.Sink
	authz     collaborators.Authorizer
	bidders   collaborators.BidderDirectory
	inventory collaborators.Inventory
	clock     clock.Clock
	policy    Policy
}

// NewService creates a new Service instance
func NewService(d Deps) *Service {
	s := &Service{
		repo:      d.Repo,
		gate:      d.Gate,
		scheduler: d.Scheduler,
		events:    d.Events,
		authz:     d.Authorizer,
		bidders:   d.Bidders,
		inventory: d.Inventory,
		clock:     d.Clock,
		policy:    d.Policy,
	}
	if s.gate == nil {
		s.gate = gate.NewMemoryLocker(2 * time.Second)
	}
	if s.scheduler == nil {
		s.scheduler = noopScheduler{}
	}
	if s.events == nil {
		s.events = discardSink{}
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.policy.MinDuration <= 0 {
		s.policy.MinDuration = DefaultPolicy.MinDuration
	}
	if s.policy.StartGrace <= 0 {
		s.policy.StartGrace = DefaultPolicy.StartGrace
	}
	if s.policy.DefaultRunTime <= 0 {
		s.policy.DefaultRunTime = DefaultPolicy.DefaultRunTime
	}
	return s
}

// locked runs fn behind the auction gate and inside a locked unit of work.
// committed, when set, runs once the unit of work has committed and before
// the gate is released; timer changes belong there so a rollback leaves the
// scheduler untouched. Errors returned by fn are passed through untouched;
// gate and storage failures are wrapped.
func (s *Service) locked(ctx context.Context, auctionID string, fn func(ctx context.Context, tx repository.AuctionTx, a *model.Auction) error, committed func()) error {
	release, err := s.gate.Acquire(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	defer release()

	var fnErr error
	err = s.repo.WithAuctionLocked(ctx, auctionID, func(ctx context.Context, tx repository.AuctionTx, a *model.Auction) error {
		fnErr = fn(ctx, tx, a)
		return fnErr
	})
	if err != nil {
		if fnErr == nil {
			return fmt.Errorf("service: auction %s: %w", auctionID, err)
		}
		return err
	}

	if committed != nil {
		committed()
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, actorID string, action collaborators.Action) error {
	if err := s.authz.Authorize(ctx, actorID, action); err != nil {
		return fmt.Errorf("service: %s by %q: %w", action, actorID, err)
	}
	return nil
}

func (s *Service) setListing(ctx context.Context, listingID string, status collaborators.ListingStatus) error {
	if err := s.inventory.SetListingStatus(ctx, listingID, status); err != nil {
		return fmt.Errorf("service: set listing %s to %s: %w", listingID, status, err)
	}
	return nil
}

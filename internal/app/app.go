// Package app wires a configured auction engine: storage, concurrency gate,
// notification transport, event dispatcher, scheduler and service.
package app

import (
	"context"
	"errors"
	"fmt"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/clock"
	"auction-engine/internal/collaborators"
	"auction-engine/internal/config"
	"auction-engine/internal/events"
	"auction-engine/internal/gate"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/transport"
	"auction-engine/utils"

	"github.com/redis/go-redis/v9"
)

// App holds every long-lived component of a running engine
type App struct {
	Config     config.Config
	Service    *auction.Service
	Scheduler  *scheduler.Scheduler
	Dispatcher *events.Dispatcher
	Repo       repository.AuctionDB
	Inventory  ListingStore
	Bidders    BidderStore

	closers []func() error
}

// ListingStore is the inventory collaborator together with its registration
type ListingStore interface {
	collaborators.Inventory
	EnsureListing(ctx context.Context, l collaborators.Listing) error
}

// BidderStore is the bidder directory together with its registration and
// participation counters
type BidderStore interface {
	collaborators.BidderDirectory
	collaborators.ParticipationRecorder
	EnsureBidder(ctx context.Context, b collaborators.Bidder) error
	Participation(ctx context.Context, bidderID string) (int, error)
}

// Options overrides parts of the wiring, mostly for tests
type Options struct {
	Clock     clock.Clock
	Publisher collaborators.Publisher
	Seed      bool
}

// Build wires an App from cfg. The caller owns Close.
func Build(cfg config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	if err := a.openStores(cfg); err != nil {
		return nil, err
	}
	repo := a.Repo

	var rdb *redis.Client
	if cfg.LockBackend == "redis" || cfg.Transport == "redis" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
	}

	var locker gate.Locker
	switch cfg.LockBackend {
	case "redis":
		locker = gate.NewRedisLocker(rdb, cfg.LockWaitTimeout, cfg.LockTTL)
	default:
		locker = gate.NewMemoryLocker(cfg.LockWaitTimeout)
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher = a.openPublisher(cfg, rdb)
	}

	if opts.Seed {
		if err := seed(context.Background(), a.Inventory, a.Bidders); err != nil {
			_ = a.closeBackends()
			return nil, err
		}
	}

	a.Dispatcher = events.NewDispatcher(events.Config{
		Workers:     cfg.NotifyWorkers,
		MaxAttempts: cfg.NotifyMaxAttempts,
		RetryDelay:  cfg.NotifyRetryDelay,
	},
		events.NewNotifier(repo, publisher),
		events.NewParticipationCounter(a.Bidders),
	)

	schedCfg := scheduler.DefaultConfig()
	schedCfg.SweepInterval = cfg.SweepInterval
	schedCfg.EndingSoonWindow = cfg.EndingSoonWindow
	a.Scheduler = scheduler.New(repo, a.Dispatcher, clk, schedCfg)

	a.Service = auction.NewService(auction.Deps{
		Repo:       repo,
		Gate:       locker,
		Scheduler:  a.Scheduler,
		Events:     a.Dispatcher,
		Authorizer: collaborators.NewRoleAuthorizer(cfg.AdminIDs...),
		Bidders:    a.Bidders,
		Inventory:  a.Inventory,
		Clock:      clk,
		Policy: auction.Policy{
			FirstBidStrict: cfg.FirstBidStrict,
			EnforceCeiling: cfg.EnforceCeiling,
			MinDuration:    cfg.MinAuctionDuration,
			StartGrace:     cfg.StartGracePeriod,
			DefaultRunTime: cfg.DefaultRunTime,
		},
	})
	a.Scheduler.SetTarget(a.Service)

	utils.Info("auction engine wired", map[string]any{
		"database":  cfg.DatabaseDriver,
		"lock":      cfg.LockBackend,
		"transport": cfg.Transport,
	})
	return a, nil
}

// openStores picks the auction store and the listing and bidder stores. A
// durable auction store gets durable collaborators in the same database, so
// listing changes commit with the auction and survive a restart.
func (a *App) openStores(cfg config.Config) error {
	if cfg.DatabaseDriver == "memory" {
		a.Repo = repository.NewMemoryRepo()
		a.Inventory = collaborators.NewMemoryInventory()
		a.Bidders = collaborators.NewMemoryBidders()
		return nil
	}

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	a.Repo = repository.NewGormRepo(db)
	a.Inventory = repository.NewGormInventory(db)
	a.Bidders = repository.NewGormBidders(db)
	return nil
}

func (a *App) openPublisher(cfg config.Config, rdb *redis.Client) collaborators.Publisher {
	switch cfg.Transport {
	case "redis":
		return transport.NewRedisPublisher(rdb)
	case "kafka":
		p := transport.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, p.Close)
		return p
	default:
		return transport.NewLogPublisher()
	}
}

// Close stops timers, drains queued events and releases backend connections
func (a *App) Close() error {
	a.Scheduler.Close()
	a.Dispatcher.Close()
	return a.closeBackends()
}

func (a *App) closeBackends() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// seed registers sample listings and bidders that are not yet known, the
// collaborators' data being owned elsewhere in a real deployment
func seed(ctx context.Context, listings ListingStore, bidders BidderStore) error {
	for _, l := range []collaborators.Listing{
		{ListingID: "listing1", Status: collaborators.ListingSellable, UnitCount: 1},
		{ListingID: "listing2", Status: collaborators.ListingSellable, UnitCount: 1},
		{ListingID: "listing3", Status: collaborators.ListingSellable, UnitCount: 3},
	} {
		if err := listings.EnsureListing(ctx, l); err != nil {
			return fmt.Errorf("app: seed: %w", err)
		}
	}

	for _, b := range []collaborators.Bidder{
		{BidderID: "user1", DisplayName: "User One"},
		{BidderID: "user2", DisplayName: "User Two"},
		{BidderID: "user3", DisplayName: "User Three"},
	} {
		if err := bidders.EnsureBidder(ctx, b); err != nil {
			return fmt.Errorf("app: seed: %w", err)
		}
	}
	return nil
}

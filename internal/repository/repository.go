package repository

import (
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AuctionDB defines the durable storage for auctions and their bid ledgers
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error)

	ListByStatus(ctx context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error)
	ListDueToStart(ctx context.Context, now time.Time) ([]model.Auction, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]model.Auction, error)
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]model.Auction, error)

	// WithAuctionLocked runs fn in one unit of work holding an exclusive lock on
	// the auction row. The auction passed to fn is read after the lock is taken;
	// it is persisted together with every bid change when fn returns nil, and
	// nothing is persisted when fn returns an error. The context passed to fn
	// carries the unit of work, so stores sharing the database join it.
	WithAuctionLocked(ctx context.Context, auctionID string, fn func(ctx context.Context, tx AuctionTx, auction *model.Auction) error) error
}

// AuctionTx is the ledger view available inside a locked unit of work
type AuctionTx interface {
	InsertBid(bid model.Bid) error
	UpdateBidStatus(bidID string, status model.BidStatus) error
	GetBid(bidID string) (model.Bid, error)
	HasBidFrom(bidderID string) (bool, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu             sync.RWMutex
	auctions       map[string]model.Auction // key: auctionID -> value: auction snapshot
	bids           map[string]model.Bid     // key: bidID -> value: bid
	ledger         map[string][]string      // key: auctionID -> value: bidIDs in insertion order
	bidderAuctions map[string][]string      // key: bidderID -> value: auctionIDs bidder has bid on
	rowLocks       map[string]*sync.Mutex   // key: auctionID -> value: row lock
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:       make(map[string]model.Auction),
		bids:           make(map[string]model.Bid),
		ledger:         make(map[string][]string),
		bidderAuctions: make(map[string][]string),
		rowLocks:       make(map[string]*sync.Mutex),
	}
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: empty auction id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.AuctionID]; exists {
		return fmt.Errorf("create auction %s: already exists", auction.AuctionID)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns the latest committed snapshot of an auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// GetBid returns a committed bid
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return b, nil
}

// GetBidsByAuction returns the ledger of an auction, highest bid first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	ids := r.ledger[auctionID]
	bids := make([]model.Bid, 0, len(ids))
	for _, id := range ids {
		bids = append(bids, r.bids[id])
	}
	model.SortByRank(bids)
	return bids, nil
}

// GetAuctionsByBidder returns every auction a bidder has bid on
func (r *MemoryRepo) GetAuctionsByBidder(_ context.Context, bidderID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bidderAuctions[bidderID]
	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, a)
		}
	}
	return auctions, nil
}

// ListByStatus returns auctions in any of the given statuses, oldest scheduled start first
func (r *MemoryRepo) ListByStatus(_ context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error) {
	return r.filter(func(a model.Auction) bool {
		return hasStatus(a, statuses...)
	}, byStart), nil
}

// ListDueToStart returns SCHEDULED/READY auctions whose scheduled start is not after now
func (r *MemoryRepo) ListDueToStart(_ context.Context, now time.Time) ([]model.Auction, error) {
	return r.filter(func(a model.Auction) bool {
		return hasStatus(a, model.StatusScheduled, model.StatusReady) && !a.ScheduledStart.After(now)
	}, byStart), nil
}

// ListDueToEnd returns IN_PROGRESS auctions whose scheduled end is not after now
func (r *MemoryRepo) ListDueToEnd(_ context.Context, now time.Time) ([]model.Auction, error) {
	return r.filter(func(a model.Auction) bool {
		return a.Status == model.StatusInProgress && !a.ScheduledEnd.After(now)
	}, byEnd), nil
}

// ListEndingBetween returns IN_PROGRESS auctions ending in (from, to]
func (r *MemoryRepo) ListEndingBetween(_ context.Context, from, to time.Time) ([]model.Auction, error) {
	return r.filter(func(a model.Auction) bool {
		return a.Status == model.StatusInProgress && a.ScheduledEnd.After(from) && !a.ScheduledEnd.After(to)
	}, byEnd), nil
}

// WithAuctionLocked serializes fn against every other unit of work on the same auction.
// Bid changes are staged and applied together with the auction snapshot.
func (r *MemoryRepo) WithAuctionLocked(ctx context.Context, auctionID string, fn func(ctx context.Context, tx AuctionTx, auction *model.Auction) error) error {
	rowLock := r.rowLock(auctionID)
	rowLock.Lock()
	defer rowLock.Unlock()

	r.mu.RLock()
	current, ok := r.auctions[auctionID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("lock auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	tx := &memoryTx{
		repo:      r,
		auctionID: auctionID,
		statuses:  make(map[string]model.BidStatus),
	}
	working := current
	if err := fn(ctx, tx, &working); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit auction %s: %w", auctionID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range tx.inserted {
		r.bids[b.BidID] = b
		r.ledger[auctionID] = append(r.ledger[auctionID], b.BidID)
		r.indexBidder(b.BidderID, auctionID)
	}
	for bidID, status := range tx.statuses {
		b := r.bids[bidID]
		b.Status = status
		r.bids[bidID] = b
	}
	r.auctions[auctionID] = working
	return nil
}

func (r *MemoryRepo) rowLock(auctionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.rowLocks[auctionID]
	if !ok {
		l = &sync.Mutex{}
		r.rowLocks[auctionID] = l
	}
	return l
}

func (r *MemoryRepo) indexBidder(bidderID, auctionID string) {
	for _, id := range r.bidderAuctions[bidderID] {
		if id == auctionID {
			return
		}
	}
	r.bidderAuctions[bidderID] = append(r.bidderAuctions[bidderID], auctionID)
}

func (r *MemoryRepo) filter(keep func(model.Auction) bool, less func(a, b model.Auction) bool) []model.Auction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func hasStatus(a model.Auction, statuses ...model.AuctionStatus) bool {
	for _, s := range statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

func byStart(a, b model.Auction) bool { return a.ScheduledStart.Before(b.ScheduledStart) }
func byEnd(a, b model.Auction) bool   { return a.ScheduledEnd.Before(b.ScheduledEnd) }

// memoryTx stages ledger writes until the unit of work commits
type memoryTx struct {
	repo      *MemoryRepo
	auctionID string
	inserted  []model.Bid
	statuses  map[string]model.BidStatus
}

func (tx *memoryTx) InsertBid(bid model.Bid) error {
	if bid.AuctionID != tx.auctionID {
		return fmt.Errorf("insert bid %s: belongs to auction %s, not %s", bid.BidID, bid.AuctionID, tx.auctionID)
	}
	if _, err := tx.GetBid(bid.BidID); err == nil {
		return fmt.Errorf("insert bid %s: already exists", bid.BidID)
	}
	tx.inserted = append(tx.inserted, bid)
	return nil
}

func (tx *memoryTx) UpdateBidStatus(bidID string, status model.BidStatus) error {
	for i := range tx.inserted {
		if tx.inserted[i].BidID == bidID {
			tx.inserted[i].Status = status
			return nil
		}
	}
	if _, err := tx.GetBid(bidID); err != nil {
		return err
	}
	tx.statuses[bidID] = status
	return nil
}

func (tx *memoryTx) GetBid(bidID string) (model.Bid, error) {
	for _, b := range tx.inserted {
		if b.BidID == bidID {
			return b, nil
		}
	}

	tx.repo.mu.RLock()
	b, ok := tx.repo.bids[bidID]
	tx.repo.mu.RUnlock()
	if !ok || b.AuctionID != tx.auctionID {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if status, staged := tx.statuses[bidID]; staged {
		b.Status = status
	}
	return b, nil
}

func (tx *memoryTx) HasBidFrom(bidderID string) (bool, error) {
	for _, b := range tx.inserted {
		if b.BidderID == bidderID && b.Status.Counts() {
			return true, nil
		}
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	for _, id := range tx.repo.ledger[tx.auctionID] {
		b := tx.repo.bids[id]
		if b.BidderID == bidderID && b.Status.Counts() {
			return true, nil
		}
	}
	return false, nil
}

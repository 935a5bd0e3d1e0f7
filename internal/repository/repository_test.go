package repository

import (
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Helper to create a new Auction
func newAuction(auctionID string, status model.AuctionStatus, start, end time.Time) model.Auction {
	return model.Auction{
		AuctionID:         auctionID,
		ListingID:         "listing-" + auctionID,
		Status:            status,
		ScheduledStart:    start,
		ScheduledEnd:      end,
		StartPrice:        decimal.NewFromInt(10000),
		CurrentHighestBid: decimal.NewFromInt(10000),
		MinIncrement:      decimal.NewFromInt(1000),
		MaxIncrement:      decimal.Zero,
		BidUnit:           decimal.Zero,
		CreatedBy:         "admin",
		CreatedAt:         base,
	}
}

// Helper to create a new Bid
func newBid(bidID, auctionID, bidderID string, amount int64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		Status:    model.BidActive,
		CreatedAt: createdAt,
	}
}

// placeBid appends a bid and moves the auction aggregates the way the service does
func placeBid(t *testing.T, repo AuctionDB, bid model.Bid) {
	t.Helper()
	err := repo.WithAuctionLocked(context.Background(), bid.AuctionID, func(_ context.Context, tx AuctionTx, a *model.Auction) error {
		seen, err := tx.HasBidFrom(bid.BidderID)
		if err != nil {
			return err
		}
		if err := tx.InsertBid(bid); err != nil {
			return err
		}
		a.TotalBids++
		if !seen {
			a.TotalBidders++
		}
		a.CurrentHighestBid = bid.Amount
		a.LeadingBidID = bid.BidID
		a.LeadingBidderID = bid.BidderID
		return nil
	})
	require.NoError(t, err)
}

type repoFactory func(t *testing.T) AuctionDB

func runRepoSuite(t *testing.T, newRepo repoFactory) {
	t.Run("create_and_get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a := newAuction("a1", model.StatusScheduled, base, base.Add(time.Hour))
		a.BuyItNowPrice = decimal.NewNullDecimal(decimal.NewFromInt(200000))

		require.NoError(t, repo.CreateAuction(ctx, a))
		require.Error(t, repo.CreateAuction(ctx, a), "duplicate id must fail")

		got, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, a.AuctionID, got.AuctionID)
		require.Equal(t, model.StatusScheduled, got.Status)
		require.True(t, a.StartPrice.Equal(got.StartPrice))
		require.True(t, got.BuyItNowPrice.Valid)
		require.True(t, got.BuyItNowPrice.Decimal.Equal(decimal.NewFromInt(200000)))
		require.True(t, got.ScheduledStart.Equal(base))

		_, err = repo.GetAuction(ctx, "missing")
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
	})

	t.Run("locked_unit_commits_bids_and_aggregate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", model.StatusInProgress, base, base.Add(time.Hour))))

		placeBid(t, repo, newBid("b1", "a1", "alice", 10000, base))
		placeBid(t, repo, newBid("b2", "a1", "bob", 11000, base.Add(time.Second)))
		placeBid(t, repo, newBid("b3", "a1", "alice", 12000, base.Add(2*time.Second)))

		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, 3, a.TotalBids)
		require.Equal(t, 2, a.TotalBidders)
		require.Equal(t, "b3", a.LeadingBidID)

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 3)
		require.Equal(t, "b3", bids[0].BidID)
		require.True(t, model.AggregatesOf(a).Equal(model.DeriveAggregates(a.StartPrice, bids)))

		byBidder, err := repo.GetAuctionsByBidder(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, byBidder, 1)
	})

	t.Run("failed_unit_rolls_back", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", model.StatusInProgress, base, base.Add(time.Hour))))

		boom := errors.New("validation failed")
		err := repo.WithAuctionLocked(ctx, "a1", func(_ context.Context, tx AuctionTx, a *model.Auction) error {
			require.NoError(t, tx.InsertBid(newBid("b1", "a1", "alice", 10000, base)))
			a.TotalBids = 99
			a.Status = model.StatusCompleted
			return boom
		})
		require.ErrorIs(t, err, boom)

		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, model.StatusInProgress, a.Status)
		require.Zero(t, a.TotalBids)

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Empty(t, bids)

		_, err = repo.GetBid(ctx, "b1")
		require.True(t, errors.Is(err, auctionerrors.ErrBidNotFound))
	})

	t.Run("tx_sees_own_writes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", model.StatusInProgress, base, base.Add(time.Hour))))

		err := repo.WithAuctionLocked(ctx, "a1", func(_ context.Context, tx AuctionTx, _ *model.Auction) error {
			seen, err := tx.HasBidFrom("alice")
			require.NoError(t, err)
			require.False(t, seen)

			require.NoError(t, tx.InsertBid(newBid("b1", "a1", "alice", 10000, base)))
			seen, err = tx.HasBidFrom("alice")
			require.NoError(t, err)
			require.True(t, seen)

			require.NoError(t, tx.UpdateBidStatus("b1", model.BidWinning))
			b, err := tx.GetBid("b1")
			require.NoError(t, err)
			require.Equal(t, model.BidWinning, b.Status)

			require.True(t, errors.Is(tx.UpdateBidStatus("nope", model.BidWon), auctionerrors.ErrBidNotFound))
			require.Error(t, tx.InsertBid(newBid("b2", "other", "bob", 1, base)))
			return nil
		})
		require.NoError(t, err)

		b, err := repo.GetBid(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, model.BidWinning, b.Status)
	})

	t.Run("lock_missing_auction", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.WithAuctionLocked(context.Background(), "missing", func(context.Context, AuctionTx, *model.Auction) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
	})

	t.Run("due_listings", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := base.Add(2 * time.Hour)

		seed := []model.Auction{
			newAuction("due-start", model.StatusScheduled, now.Add(-time.Minute), now.Add(time.Hour)),
			newAuction("ready-start", model.StatusReady, now, now.Add(time.Hour)),
			newAuction("future-start", model.StatusScheduled, now.Add(time.Minute), now.Add(time.Hour)),
			newAuction("due-end", model.StatusInProgress, base, now.Add(-time.Second)),
			newAuction("ending-soon", model.StatusInProgress, base, now.Add(30*time.Second)),
			newAuction("running", model.StatusInProgress, base, now.Add(time.Hour)),
			newAuction("cancelled", model.StatusCancelled, base, now.Add(-time.Hour)),
		}
		for _, a := range seed {
			require.NoError(t, repo.CreateAuction(ctx, a))
		}

		toStart, err := repo.ListDueToStart(ctx, now)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"due-start", "ready-start"}, ids(toStart))

		toEnd, err := repo.ListDueToEnd(ctx, now)
		require.NoError(t, err)
		require.Equal(t, []string{"due-end"}, ids(toEnd))

		soon, err := repo.ListEndingBetween(ctx, now, now.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, []string{"ending-soon"}, ids(soon))

		running, err := repo.ListByStatus(ctx, model.StatusInProgress)
		require.NoError(t, err)
		require.Len(t, running, 3)
	})

	t.Run("concurrent_units_serialize", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", model.StatusInProgress, base, base.Add(time.Hour))))

		var wg sync.WaitGroup
		concurrentCount := 25

		for i := 0; i < concurrentCount; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				err := repo.WithAuctionLocked(ctx, "a1", func(_ context.Context, tx AuctionTx, a *model.Auction) error {
					a.TotalBids++
					return tx.InsertBid(newBid(fmt.Sprintf("bid-%d", i), "a1", fmt.Sprintf("user-%d", i), int64(10000+i), base))
				})
				require.NoError(t, err)
			}()
		}

		wg.Wait()

		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, concurrentCount, a.TotalBids, "no increment may be lost")

		bids, err := repo.GetBidsByAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, concurrentCount)
	})
}

func ids(auctions []model.Auction) []string {
	out := make([]string, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, a.AuctionID)
	}
	return out
}

func TestMemoryRepo(t *testing.T) {
	t.Parallel()

	runRepoSuite(t, func(t *testing.T) AuctionDB {
		return NewMemoryRepo()
	})
}

func TestMemoryRepo_StagedStatusIsInvisibleUntilCommit(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", model.StatusInProgress, base, base.Add(time.Hour))))
	placeBid(t, repo, newBid("b1", "a1", "alice", 10000, base))

	err := repo.WithAuctionLocked(ctx, "a1", func(_ context.Context, tx AuctionTx, _ *model.Auction) error {
		require.NoError(t, tx.UpdateBidStatus("b1", model.BidWinning))

		committed, err := repo.GetBid(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, model.BidActive, committed.Status)
		return nil
	})
	require.NoError(t, err)

	committed, err := repo.GetBid(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, model.BidWinning, committed.Status)
}

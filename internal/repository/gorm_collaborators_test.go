package repository

import (
	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/collaborators"
	model "auction-engine/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGormInventory(t *testing.T) {
	t.Parallel()

	inv := NewGormInventory(newSQLiteDB(t))
	ctx := context.Background()

	require.NoError(t, inv.EnsureListing(ctx, collaborators.Listing{ListingID: "l1", Status: collaborators.ListingSellable, UnitCount: 1}))
	require.NoError(t, inv.SetListingStatus(ctx, "l1", collaborators.ListingReservedForAuction))

	require.NoError(t, inv.EnsureListing(ctx, collaborators.Listing{ListingID: "l1", Status: collaborators.ListingSellable, UnitCount: 1}))
	l, err := inv.GetListing(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, collaborators.ListingReservedForAuction, l.Status, "ensure keeps a known listing")
	require.Equal(t, 1, l.UnitCount)

	_, err = inv.GetListing(ctx, "nope")
	require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	require.ErrorIs(t, inv.SetListingStatus(ctx, "nope", collaborators.ListingSold), auctionerrors.ErrListingNotFound)
}

func TestGormInventory_JoinsAuctionUnitOfWork(t *testing.T) {
	t.Parallel()

	db := newSQLiteDB(t)
	repo := NewGormRepo(db)
	inv := NewGormInventory(db)
	ctx := context.Background()

	a := newAuction("a1", model.StatusScheduled, base, base.Add(time.Hour))
	require.NoError(t, repo.CreateAuction(ctx, a))
	require.NoError(t, inv.EnsureListing(ctx, collaborators.Listing{ListingID: a.ListingID, Status: collaborators.ListingReservedForAuction, UnitCount: 1}))

	errAbort := errors.New("abort")
	err := repo.WithAuctionLocked(ctx, "a1", func(ctx context.Context, _ AuctionTx, stored *model.Auction) error {
		stored.Status = model.StatusInProgress
		if err := inv.SetListingStatus(ctx, stored.ListingID, collaborators.ListingInAuction); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	l, err := inv.GetListing(ctx, a.ListingID)
	require.NoError(t, err)
	require.Equal(t, collaborators.ListingReservedForAuction, l.Status, "listing change rolls back with the auction")

	err = repo.WithAuctionLocked(ctx, "a1", func(ctx context.Context, _ AuctionTx, stored *model.Auction) error {
		stored.Status = model.StatusInProgress
		return inv.SetListingStatus(ctx, stored.ListingID, collaborators.ListingInAuction)
	})
	require.NoError(t, err)

	l, err = inv.GetListing(ctx, a.ListingID)
	require.NoError(t, err)
	require.Equal(t, collaborators.ListingInAuction, l.Status)
}

func TestGormBidders(t *testing.T) {
	t.Parallel()

	d := NewGormBidders(newSQLiteDB(t))
	ctx := context.Background()

	require.NoError(t, d.EnsureBidder(ctx, collaborators.Bidder{BidderID: "alice", DisplayName: "Alice"}))
	require.NoError(t, d.EnsureBidder(ctx, collaborators.Bidder{BidderID: "alice", DisplayName: "Renamed"}))

	b, err := d.Lookup(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", b.DisplayName)

	_, err = d.Lookup(ctx, "ghost")
	require.ErrorIs(t, err, auctionerrors.ErrBidderNotFound)

	require.NoError(t, d.IncrementParticipation(ctx, "alice"))
	require.NoError(t, d.IncrementParticipation(ctx, "alice"))
	count, err := d.Participation(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.ErrorIs(t, d.IncrementParticipation(ctx, "ghost"), auctionerrors.ErrBidderNotFound)
	_, err = d.Participation(ctx, "ghost")
	require.ErrorIs(t, err, auctionerrors.ErrBidderNotFound)
}

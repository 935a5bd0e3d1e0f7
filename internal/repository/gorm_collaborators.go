package repository

import (
	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/collaborators"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// withTx marks ctx as running inside the transaction db
func withTx(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, db)
}

// conn returns the transaction carried by ctx, or db outside a unit of work.
// sqlite runs on a single connection, so a query issued beside an open
// transaction would wait on the pool forever.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type listingRow struct {
	ListingID string                      `gorm:"column:id;primaryKey;size:64"`
	Status    collaborators.ListingStatus `gorm:"size:32;not null"`
	UnitCount int                         `gorm:"not null"`
}

func (listingRow) TableName() string { return "listings" }

type bidderRow struct {
	BidderID      string `gorm:"column:id;primaryKey;size:64"`
	DisplayName   string `gorm:"not null"`
	Participation int    `gorm:"not null;default:0"`
}

func (bidderRow) TableName() string { return "bidders" }

// GormInventory keeps listing state next to the auctions that hold it.
// Status changes made inside WithAuctionLocked commit or roll back with the auction.
type GormInventory struct {
	db *gorm.DB
}

func NewGormInventory(db *gorm.DB) *GormInventory {
	return &GormInventory{db: db}
}

// EnsureListing registers a listing unless it is already known, leaving an
// existing row and its status untouched
func (inv *GormInventory) EnsureListing(ctx context.Context, l collaborators.Listing) error {
	row := listingRow{ListingID: l.ListingID, Status: l.Status, UnitCount: l.UnitCount}
	if err := conn(ctx, inv.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("ensure listing %s: %w", l.ListingID, err)
	}
	return nil
}

func (inv *GormInventory) GetListing(ctx context.Context, listingID string) (collaborators.Listing, error) {
	var row listingRow
	err := conn(ctx, inv.db).Where("id = ?", listingID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return collaborators.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return collaborators.Listing{}, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return collaborators.Listing{ListingID: row.ListingID, Status: row.Status, UnitCount: row.UnitCount}, nil
}

func (inv *GormInventory) SetListingStatus(ctx context.Context, listingID string, status collaborators.ListingStatus) error {
	res := conn(ctx, inv.db).Model(&listingRow{}).Where("id = ?", listingID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set listing %s status: %w", listingID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set listing %s status: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

// GormBidders is the durable bidder directory with participation counters
type GormBidders struct {
	db *gorm.DB
}

func NewGormBidders(db *gorm.DB) *GormBidders {
	return &GormBidders{db: db}
}

// EnsureBidder registers a bidder unless it is already known
func (d *GormBidders) EnsureBidder(ctx context.Context, b collaborators.Bidder) error {
	row := bidderRow{BidderID: b.BidderID, DisplayName: b.DisplayName}
	if err := conn(ctx, d.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("ensure bidder %s: %w", b.BidderID, err)
	}
	return nil
}

func (d *GormBidders) Lookup(ctx context.Context, bidderID string) (collaborators.Bidder, error) {
	row, err := d.get(ctx, bidderID)
	if err != nil {
		return collaborators.Bidder{}, fmt.Errorf("lookup bidder %s: %w", bidderID, err)
	}
	return collaborators.Bidder{BidderID: row.BidderID, DisplayName: row.DisplayName}, nil
}

func (d *GormBidders) IncrementParticipation(ctx context.Context, bidderID string) error {
	res := conn(ctx, d.db).Model(&bidderRow{}).
		Where("id = ?", bidderID).
		Update("participation", gorm.Expr("participation + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment participation of %s: %w", bidderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment participation of %s: %w", bidderID, auctionerrors.ErrBidderNotFound)
	}
	return nil
}

// Participation returns how many distinct auctions a bidder has joined
func (d *GormBidders) Participation(ctx context.Context, bidderID string) (int, error) {
	row, err := d.get(ctx, bidderID)
	if err != nil {
		return 0, fmt.Errorf("participation of %s: %w", bidderID, err)
	}
	return row.Participation, nil
}

func (d *GormBidders) get(ctx context.Context, bidderID string) (bidderRow, error) {
	var row bidderRow
	err := conn(ctx, d.db).Where("id = ?", bidderID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bidderRow{}, auctionerrors.ErrBidderNotFound
	}
	return row, err
}

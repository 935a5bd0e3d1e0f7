package repository

import (
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open connects to a sqlite or postgres database and migrates the schema
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("open database: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// sqlite allows one writer; a single connection queues writers in the pool instead of failing with SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("open sqlite database: %s: %w", pragma, err)
			}
		}
		if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
			if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
				return nil, fmt.Errorf("open sqlite database: enable WAL: %w", err)
			}
		}
	}

	if err := db.AutoMigrate(&model.Auction{}, &model.Bid{}, &listingRow{}, &bidderRow{}); err != nil {
		return nil, fmt.Errorf("migrate %s database: %w", driver, err)
	}
	return db, nil
}

// GormRepo is the durable implementation of AuctionDB.
// On postgres the unit of work takes SELECT ... FOR UPDATE on the auction row;
// sqlite has no row locks and relies on its single-writer transactions.
type GormRepo struct {
	db         *gorm.DB
	rowLocking bool
}

// NewGormRepo wraps an opened database
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{
		db:         db,
		rowLocking: db.Dialector.Name() != "sqlite",
	}
}

// CreateAuction inserts a new auction row
func (r *GormRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	if err := r.db.WithContext(ctx).Create(&auction).Error; err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction reads one auction row
func (r *GormRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var a model.Auction
	err := r.db.WithContext(ctx).Where("id = ?", auctionID).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// GetBid reads one bid row
func (r *GormRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	return getBid(r.db.WithContext(ctx), bidID, "")
}

// GetBidsByAuction returns the ledger of an auction, highest bid first
func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := r.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}

	var bids []model.Bid
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	// amounts are ranked as decimals in Go; numeric ordering differs between dialects
	model.SortByRank(bids)
	return bids, nil
}

// GetAuctionsByBidder returns every auction a bidder has bid on
func (r *GormRepo) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	var auctions []model.Auction
	sub := r.db.Model(&model.Bid{}).Select("auction_id").Where("bidder_id = ?", bidderID)
	err := r.db.WithContext(ctx).Where("id IN (?)", sub).Order("scheduled_start").Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, err)
	}
	return auctions, nil
}

// ListByStatus returns auctions in any of the given statuses, oldest scheduled start first
func (r *GormRepo) ListByStatus(ctx context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).Where("status IN ?", statuses).Order("scheduled_start").Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list auctions by status: %w", err)
	}
	return auctions, nil
}

// ListDueToStart returns SCHEDULED/READY auctions whose scheduled start is not after now
func (r *GormRepo) ListDueToStart(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND scheduled_start <= ?", []model.AuctionStatus{model.StatusScheduled, model.StatusReady}, now).
		Order("scheduled_start").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list auctions due to start: %w", err)
	}
	return auctions, nil
}

// ListDueToEnd returns IN_PROGRESS auctions whose scheduled end is not after now
func (r *GormRepo) ListDueToEnd(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_end <= ?", model.StatusInProgress, now).
		Order("scheduled_end").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list auctions due to end: %w", err)
	}
	return auctions, nil
}

// ListEndingBetween returns IN_PROGRESS auctions ending in (from, to]
func (r *GormRepo) ListEndingBetween(ctx context.Context, from, to time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_end > ? AND scheduled_end <= ?", model.StatusInProgress, from, to).
		Order("scheduled_end").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list auctions ending soon: %w", err)
	}
	return auctions, nil
}

// WithAuctionLocked runs fn inside a transaction holding the auction row lock
func (r *GormRepo) WithAuctionLocked(ctx context.Context, auctionID string, fn func(ctx context.Context, tx AuctionTx, auction *model.Auction) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		q := db
		if r.rowLocking {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var a model.Auction
		err := q.Where("id = ?", auctionID).Take(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lock auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock auction %s: %w", auctionID, err)
		}

		if err := fn(withTx(ctx, db), &gormTx{db: db, auctionID: auctionID}, &a); err != nil {
			return err
		}

		if err := db.Save(&a).Error; err != nil {
			return fmt.Errorf("save auction %s: %w", auctionID, err)
		}
		return nil
	})
}

type gormTx struct {
	db        *gorm.DB
	auctionID string
}

func (tx *gormTx) InsertBid(bid model.Bid) error {
	if bid.AuctionID != tx.auctionID {
		return fmt.Errorf("insert bid %s: belongs to auction %s, not %s", bid.BidID, bid.AuctionID, tx.auctionID)
	}
	if err := tx.db.Create(&bid).Error; err != nil {
		return fmt.Errorf("insert bid %s: %w", bid.BidID, err)
	}
	return nil
}

func (tx *gormTx) UpdateBidStatus(bidID string, status model.BidStatus) error {
	res := tx.db.Model(&model.Bid{}).
		Where("id = ? AND auction_id = ?", bidID, tx.auctionID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update bid %s: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

func (tx *gormTx) GetBid(bidID string) (model.Bid, error) {
	return getBid(tx.db, bidID, tx.auctionID)
}

func (tx *gormTx) HasBidFrom(bidderID string) (bool, error) {
	var count int64
	err := tx.db.Model(&model.Bid{}).
		Where("auction_id = ? AND bidder_id = ? AND status IN ?", tx.auctionID, bidderID,
			[]model.BidStatus{model.BidActive, model.BidWinning, model.BidWon}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check bids of %s: %w", bidderID, err)
	}
	return count > 0, nil
}

func getBid(db *gorm.DB, bidID, auctionID string) (model.Bid, error) {
	q := db.Where("id = ?", bidID)
	if auctionID != "" {
		q = q.Where("auction_id = ?", auctionID)
	}

	var b model.Bid
	err := q.Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, err)
	}
	return b, nil
}

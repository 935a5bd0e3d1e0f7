package auctionerrors

import "errors"

// Not-found errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrBidderNotFound  = errors.New("bidder not found")
)

// Validation errors: the caller must correct its input
var (
	ErrInvalidBid          = errors.New("invalid bid")
	ErrBidTooLow           = errors.New("bid amount too low")
	ErrBidExceedsCeiling   = errors.New("bid amount exceeds maximum increment")
	ErrInvalidSchedule     = errors.New("invalid auction schedule")
	ErrInvalidPricing      = errors.New("invalid auction pricing")
	ErrBuyItNowUnavailable = errors.New("buy-it-now not available")
	ErrListingUnavailable  = errors.New("listing not available for auction")
)

// State errors
var (
	ErrInvalidTransition    = errors.New("invalid auction state transition")
	ErrAuctionNotInProgress = errors.New("auction not in progress")
	ErrNotEditable          = errors.New("auction can no longer be edited")
	ErrNotDue               = errors.New("auction transition not due yet")
)

// Contention errors: retryable with backoff
var (
	ErrBusy = errors.New("auction busy, retry later")
)

var (
	ErrForbidden      = errors.New("action not allowed for actor")
	ErrAggregateDrift = errors.New("auction aggregates drifted from bid ledger")
)

// IsRetryable reports whether the caller may retry the same request unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}

package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, auctionerrors.ErrBidderNotFound):
		return http.StatusNotFound, "bidder not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidSchedule):
		return http.StatusBadRequest, "invalid auction schedule"
	case errors.Is(err, auctionerrors.ErrInvalidPricing):
		return http.StatusBadRequest, "invalid auction pricing"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrBidExceedsCeiling):
		return http.StatusConflict, "bid amount above maximum increment"
	case errors.Is(err, auctionerrors.ErrAuctionNotInProgress):
		return http.StatusConflict, "auction not in progress"
	case errors.Is(err, auctionerrors.ErrBuyItNowUnavailable):
		return http.StatusConflict, "buy-it-now not available"
	case errors.Is(err, auctionerrors.ErrListingUnavailable):
		return http.StatusConflict, "listing not available for auction"
	case errors.Is(err, auctionerrors.ErrInvalidTransition):
		return http.StatusConflict, "invalid auction state transition"
	case errors.Is(err, auctionerrors.ErrNotEditable):
		return http.StatusConflict, "auction can no longer be edited"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "action not allowed"
	case errors.Is(err, auctionerrors.ErrBusy):
		return http.StatusServiceUnavailable, "auction busy, retry later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err, writes the error envelope and logs the failure.
// Contention errors carry a Retry-After hint.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	if auctionerrors.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		utils.Error(handlerName+": "+message, fields)
		return
	}
	utils.Warn(handlerName+": "+message, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

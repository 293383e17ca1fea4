package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-market/internal/service"
)

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// writeServiceError maps service-layer errors onto HTTP responses. Every
// sentinel gets a stable machine-readable error code; anything unmatched is
// a storage or broker failure and reports as 500.
func writeServiceError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation_failed",
			"field":   ve.Field,
			"message": ve.Reason,
		})
	}
	var btl *service.BidTooLowError
	if errors.As(err, &btl) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "bid_too_low",
			"minimum": btl.Minimum,
		})
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	case errors.Is(err, service.ErrAuctionClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "auction_closed"})
	case errors.Is(err, service.ErrSelfBidForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "self_bid_forbidden"})
	case errors.Is(err, service.ErrSelfPurchaseForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "self_purchase_forbidden"})
	case errors.Is(err, service.ErrPurchaseUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "purchase_unavailable"})
	}
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

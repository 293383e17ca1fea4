package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// PlaceBid accepts a bid on an auction. The amount must beat the current
// price; rejections carry the minimum the next bid has to meet.
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || auctionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}

	m, err := decodeBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	amount, ok := pickInt(m, "amount", "bidAmount", "bid_amount")
	if !ok || amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bid, err := h.Svc.PlaceBid(ctx, uid, auctionID, amount)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":        bid.ID,
		"auctionId": bid.AuctionID,
		"amount":    bid.Amount,
		"createdAt": bid.CreatedAt,
	})
}

// Purchase ends an auction immediately at its buy-now price.
func (h *AuctionHandler) Purchase(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || auctionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	amount, err := h.Svc.Purchase(ctx, uid, auctionID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"auctionId": auctionID,
		"amount":    amount,
		"status":    "ended",
	})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-market/internal/clock"
	"github.com/iliyamo/auction-market/internal/repository"
)

// LikeHandler serves the favorites endpoints. Likes live outside the
// auction lifecycle: adding and removing are idempotent and valid on ended
// auctions too.
type LikeHandler struct {
	Likes *repository.LikeRepo
	Clock clock.Clock
}

func NewLikeHandler(likes *repository.LikeRepo, clk clock.Clock) *LikeHandler {
	return &LikeHandler{Likes: likes, Clock: clk}
}

func (h *LikeHandler) auctionIDFromBody(c echo.Context) (uint64, bool) {
	m, err := decodeBody(c)
	if err != nil {
		return 0, false
	}
	id, ok := pickUint(m, "auctionId", "auction_id")
	return id, ok && id > 0
}

// Add bookmarks an auction for the caller. Re-adding is a no-op.
func (h *LikeHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	auctionID, ok := h.auctionIDFromBody(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "auctionId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Likes.Add(ctx, uid, auctionID); err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save like failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove deletes a bookmark. Removing a missing bookmark is a no-op.
func (h *LikeHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	auctionID, ok := h.auctionIDFromBody(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "auctionId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Likes.Remove(ctx, uid, auctionID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove like failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's bookmarked auctions, newest bookmark first.
func (h *LikeHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Likes.ListByUser(ctx, uid, h.Clock.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load likes failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

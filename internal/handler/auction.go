package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-market/internal/model"
	"github.com/iliyamo/auction-market/internal/repository"
	"github.com/iliyamo/auction-market/internal/service"
	"github.com/iliyamo/auction-market/internal/storage"
)

// AuctionHandler serves the auction endpoints: create, detail, browse and
// the category lookup.
type AuctionHandler struct {
	Svc        *service.AuctionService
	Categories *repository.CategoryRepo
	Uploads    *storage.Local
}

func NewAuctionHandler(svc *service.AuctionService, categories *repository.CategoryRepo, uploads *storage.Local) *AuctionHandler {
	return &AuctionHandler{Svc: svc, Categories: categories, Uploads: uploads}
}

// auctionJSON is the wire shape of one auction shared by create and detail
// responses.
func auctionJSON(a *model.Auction, currentPrice int64) echo.Map {
	m := echo.Map{
		"id":           a.ID,
		"sellerId":     a.SellerID,
		"title":        a.Title,
		"description":  a.Description,
		"imageUrl":     a.ImageURL,
		"startPrice":   a.StartPrice,
		"currentPrice": currentPrice,
		"status":       a.Status,
		"closeTime":    a.CloseTime,
		"createdAt":    a.CreatedAt,
	}
	if a.CategoryID != nil {
		m["categoryId"] = *a.CategoryID
	}
	if a.PurchasePrice != nil {
		m["immediatePurchasePrice"] = *a.PurchasePrice
	}
	if a.WinnerID != nil {
		m["winnerId"] = *a.WinnerID
	}
	if a.WinningAmount != nil {
		m["winningAmount"] = *a.WinningAmount
	}
	return m
}

// Create registers a new listing. Accepts either a multipart form with an
// optional image file, or a plain JSON body carrying an image URL.
func (h *AuctionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var in service.CreateAuctionInput
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		in.Title = formValue(c, "title")
		in.Description = formValue(c, "description")
		if v := formValue(c, "categoryId", "category_id"); v != "" {
			if id, err := strconv.ParseUint(v, 10, 64); err == nil {
				in.CategoryID = &id
			}
		}
		if v := formValue(c, "startPrice", "start_price"); v != "" {
			in.StartPrice, _ = strconv.ParseInt(v, 10, 64)
		}
		if v := formValue(c, "immediatePurchasePrice", "immediate_purchase_price"); v != "" {
			if p, err := strconv.ParseInt(v, 10, 64); err == nil {
				in.PurchasePrice = &p
			}
		}
		if v := formValue(c, "closeTime", "close_time"); v != "" {
			in.CloseTime, _ = parseTimeValue(v)
		}
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			url, err := h.Uploads.SaveImage(fh)
			if err != nil {
				switch {
				case errors.Is(err, storage.ErrImageTooLarge):
					return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image too large"})
				case errors.Is(err, storage.ErrUnsupportedType):
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image type"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
			}
			in.ImageURL = url
		}
	} else {
		m, err := decodeBody(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		in.Title, _ = pickString(m, "title")
		in.Description, _ = pickString(m, "description")
		if id, ok := pickUint(m, "categoryId", "category_id"); ok {
			in.CategoryID = &id
		}
		in.StartPrice, _ = pickInt(m, "startPrice", "start_price")
		if p, ok := pickInt(m, "immediatePurchasePrice", "immediate_purchase_price"); ok {
			in.PurchasePrice = &p
		}
		if v, ok := pickString(m, "closeTime", "close_time"); ok {
			in.CloseTime, _ = parseTimeValue(v)
		}
		in.ImageURL, _ = pickString(m, "imageUrl", "image_url")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Svc.Create(ctx, uid, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, auctionJSON(a, a.CurrentPrice))
}

// Detail returns one auction with seller/category names and the full bid
// history, newest bid first.
func (h *AuctionHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}

	resp := auctionJSON(&det.Auction, det.CurrentPrice)
	resp["sellerNickname"] = det.SellerNickname
	resp["categoryName"] = det.CategoryName
	resp["bids"] = det.Bids
	resp["bidCount"] = len(det.Bids)
	return c.JSON(http.StatusOK, resp)
}

// List returns one page of the public auction listing.
func (h *AuctionHandler) List(c echo.Context) error {
	q := repository.AuctionListQuery{
		Status: strings.ToLower(queryValue(c, "status")),
		Sort:   queryValue(c, "sort"),
	}
	if v := queryValue(c, "categoryId", "category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			q.CategoryID = id
		}
	}
	if v := queryValue(c, "minPrice", "min_price"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.MinPrice = &p
		}
	}
	if v := queryValue(c, "maxPrice", "max_price"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.MaxPrice = &p
		}
	}
	q.Page, _ = strconv.Atoi(queryValue(c, "page"))
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize, _ = strconv.Atoi(queryValue(c, "pageSize", "page_size", "limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Svc.List(ctx, q)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      items,
		"totalCount": total,
		"page":       q.Page,
	})
}

// ListCategories returns the category lookup table.
func (h *AuctionHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]echo.Map, 0, len(cats))
	for _, cat := range cats {
		out = append(out, echo.Map{"id": cat.ID, "name": cat.Name})
	}
	return c.JSON(http.StatusOK, out)
}

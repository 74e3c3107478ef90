package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"auction-house/internal/api/middleware"
	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"
)

// ItemHandler exposes the full remote operation surface over HTTP. Mutating
// operations answer with the {"ok": text} / {"err": text} result envelope;
// optional reads answer 404 when the value is absent.
type ItemHandler struct {
	listings *services.ListingService
	bids     *services.BidProcessor
	queries  *services.QueryService
	log      logger.Logger
}

type ListItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ListItemResponse struct {
	ItemID uint64 `json:"item_id"`
}

type UpdateListingRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type BidRequest struct {
	Amount uint64 `json:"amount"`
}

func NewItemHandler(listings *services.ListingService, bids *services.BidProcessor,
	queries *services.QueryService, log logger.Logger) *ItemHandler {
	return &ItemHandler{
		listings: listings,
		bids:     bids,
		queries:  queries,
		log:      log,
	}
}

// Register wires every route onto the given group.
func (h *ItemHandler) Register(api *echo.Group) {
	api.POST("/principals", h.IssuePrincipal)

	api.POST("/items", h.ListItem, middleware.RequireCaller)
	api.PATCH("/items/:id", h.UpdateListing, middleware.RequireCaller)
	api.POST("/items/:id/stop", h.StopListing, middleware.RequireCaller)
	api.POST("/items/:id/bids", h.PlaceBid, middleware.RequireCaller)

	api.GET("/items", h.ListAllItems)
	api.GET("/items/:id", h.GetItem)
	api.GET("/items/:id/bids", h.GetBids)
	api.GET("/items/:id/bids/highest", h.GetHighestBid)
	api.GET("/stats/items-count", h.ItemsCount)
	api.GET("/stats/most-bids", h.MostBids)
	api.GET("/stats/most-expensive-sold", h.MostExpensiveSold)
}

// IssuePrincipal hands anonymous callers an opaque identity to use in the
// X-Caller-ID header.
func (h *ItemHandler) IssuePrincipal(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]string{
		"principal": utils.NewPrincipal(),
	})
}

func (h *ItemHandler) ListItem(c echo.Context) error {
	var req ListItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"err": "invalid request body"})
	}

	id, err := h.listings.ListItem(c.Request().Context(), middleware.Caller(c), req.Name, req.Description)
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusCreated, ListItemResponse{ItemID: id})
}

func (h *ItemHandler) UpdateListing(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"err": "invalid request body"})
	}

	msg, err := h.listings.UpdateListing(c.Request().Context(), middleware.Caller(c), id, req.Name, req.Description)
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"ok": msg})
}

func (h *ItemHandler) StopListing(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	msg, err := h.listings.StopListing(c.Request().Context(), middleware.Caller(c), id)
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"ok": msg})
}

func (h *ItemHandler) PlaceBid(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	var req BidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"err": "invalid request body"})
	}
	if req.Amount == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"err": "bid amount must be a positive integer"})
	}

	msg, err := h.bids.PlaceBid(c.Request().Context(), middleware.Caller(c), id, req.Amount)
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"ok": msg})
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	item, err := h.queries.GetItem(c.Request().Context(), id)
	if err != nil {
		return h.resultError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"err": "item not found"})
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) ListAllItems(c echo.Context) error {
	items, err := h.queries.ListAllItems(c.Request().Context())
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetBids(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	bids, err := h.queries.GetBidsForItem(c.Request().Context(), id)
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}

func (h *ItemHandler) GetHighestBid(c echo.Context) error {
	id, err := h.itemID(c)
	if err != nil {
		return h.resultError(c, err)
	}

	bid, err := h.queries.GetHighestBidForItem(c.Request().Context(), id)
	if err != nil {
		return h.resultError(c, err)
	}
	if bid == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"err": "no bids for this item"})
	}

	return c.JSON(http.StatusOK, bid)
}

func (h *ItemHandler) ItemsCount(c echo.Context) error {
	count, err := h.queries.ListedItemsCount(c.Request().Context())
	if err != nil {
		return h.resultError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]uint64{"count": count})
}

func (h *ItemHandler) MostBids(c echo.Context) error {
	item, err := h.queries.ItemWithMostBids(c.Request().Context())
	if err != nil {
		return h.resultError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"err": "no items with bids"})
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) MostExpensiveSold(c echo.Context) error {
	item, err := h.queries.MostExpensiveSoldItem(c.Request().Context())
	if err != nil {
		return h.resultError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"err": "no sold items"})
	}

	return c.JSON(http.StatusOK, item)
}

// errInvalidItemID covers an :id path parameter that is not a uint64.
var errInvalidItemID = errors.New("invalid item id")

// itemID parses the :id path parameter; callers map the error through
// resultError.
func (h *ItemHandler) itemID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errInvalidItemID
	}
	return id, nil
}

// resultError maps the domain error taxonomy to HTTP statuses, always with
// the Err envelope.
func (h *ItemHandler) resultError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyField), errors.Is(err, errInvalidItemID):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrSelfBid):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotActive), errors.Is(err, domain.ErrBidTooLow):
		status = http.StatusConflict
	default:
		h.log.Error("Unexpected handler error", "error", err)
		return c.JSON(status, map[string]string{"err": "internal error"})
	}

	return c.JSON(status, map[string]string{"err": err.Error()})
}

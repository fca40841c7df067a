package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/catalog"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/role"
	"marketplace-service/internal/visibility"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

// ListingRequest defines the structure for listing creation requests
type ListingRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	MediaURL         string  `json:"media_url"`
	CategoryID       *uint   `json:"category_id"`
	Price            float64 `json:"price"`
	StockQuantity    int     `json:"stock_quantity"`
	MinOrderQuantity int     `json:"min_order_quantity"`
}

// ListingUpdateRequest defines the structure for listing update requests.
// Stock is adjusted by a relative delta, never set absolutely. Target tier and
// bulk flag are accepted in the payload but rejected by the catalog unless the
// caller is an admin.
type ListingUpdateRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	Price            *float64   `json:"price"`
	StockDelta       *int       `json:"stock_delta"`
	MinOrderQuantity *int       `json:"min_order_quantity"`
	TargetTier       *role.Tier `json:"target_tier"`
	IsBulkOffer      *bool      `json:"is_bulk_offer"`
}

// Marketplace handles the public storefront: customer-lane listings with stock
func Marketplace(c echo.Context) error {
	log := logger.FromContext(c)

	store := catalog.New(database.GetDB())
	listings, err := store.ListListings(visibility.Public())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Marketplace listings retrieved", zap.Int("count", len(listings)))
	return c.JSON(http.StatusOK, listings)
}

// ListListings handles buyer browsing: the visibility filter is resolved from
// the caller's tier, never from query parameters
func ListListings(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	filter, err := visibility.ForBuyer(actor.Tier)
	if err != nil {
		return respondError(c, log, err)
	}

	store := catalog.New(database.GetDB())
	listings, err := store.ListListings(filter)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Listings retrieved",
		zap.String("tier", string(actor.Tier)),
		zap.String("target_tier", string(filter.TargetTier)),
		zap.Int("count", len(listings)))
	return c.JSON(http.StatusOK, listings)
}

// SellerListings handles the seller dashboard: own listings including
// zero-stock rows, so sold-out items can be restocked
func SellerListings(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	store := catalog.New(database.GetDB())
	listings, err := store.ListListings(visibility.ForSeller(actor.ID))
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Seller listings retrieved",
		zap.Uint("seller_id", actor.ID),
		zap.Int("count", len(listings)))
	return c.JSON(http.StatusOK, listings)
}

// GetListing handles retrieving a single listing by ID
func GetListing(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	store := catalog.New(database.GetDB())
	listing, err := store.GetListing(id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, listing)
}

// CreateListing handles creating a new listing for the selling actor
func CreateListing(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	store := catalog.New(database.GetDB())
	listing, err := store.CreateListing(actor, catalog.ListingInput{
		Product: catalog.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			MediaURL:    req.MediaURL,
			CategoryID:  req.CategoryID,
		},
		Price:            req.Price,
		StockQuantity:    req.StockQuantity,
		MinOrderQuantity: req.MinOrderQuantity,
	})
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordListingOperation("create")
	prometheus.UpdateListingInventory(strconv.FormatUint(uint64(listing.ID), 10),
		string(listing.TargetTier), float64(listing.StockQuantity))

	log.Info("Listing created",
		zap.Uint("listing_id", listing.ID),
		zap.Uint("seller_id", actor.ID),
		zap.String("target_tier", string(listing.TargetTier)),
		zap.Bool("is_bulk_offer", listing.IsBulkOffer))
	return c.JSON(http.StatusCreated, listing)
}

// UpdateListing handles seller and admin edits to a listing
func UpdateListing(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	var req ListingUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	store := catalog.New(database.GetDB())
	listing, err := store.UpdateListing(actor, id, catalog.ListingUpdate{
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		StockDelta:       req.StockDelta,
		MinOrderQuantity: req.MinOrderQuantity,
		TargetTier:       req.TargetTier,
		IsBulkOffer:      req.IsBulkOffer,
	})
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordListingOperation("update")
	prometheus.UpdateListingInventory(strconv.FormatUint(uint64(listing.ID), 10),
		string(listing.TargetTier), float64(listing.StockQuantity))

	log.Info("Listing updated",
		zap.Uint("listing_id", listing.ID),
		zap.Uint("caller_id", actor.ID))
	return c.JSON(http.StatusOK, listing)
}

// RestockListing handles a seller adding stock to a listing
func RestockListing(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	store := catalog.New(database.GetDB())
	listing, err := store.RestockListing(actor, id, req.Quantity)
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordListingOperation("restock")
	prometheus.UpdateListingInventory(strconv.FormatUint(uint64(listing.ID), 10),
		string(listing.TargetTier), float64(listing.StockQuantity))

	log.Info("Listing restocked",
		zap.Uint("listing_id", listing.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock_quantity", listing.StockQuantity))
	return c.JSON(http.StatusOK, listing)
}

// DeleteListing handles a seller or admin removing a listing
func DeleteListing(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	store := catalog.New(database.GetDB())
	if err := store.DeleteListing(actor, id); err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordListingOperation("delete")

	log.Info("Listing deleted",
		zap.Uint("listing_id", id),
		zap.Uint("caller_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "listing deleted successfully"})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

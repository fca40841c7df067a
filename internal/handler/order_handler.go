package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/lifecycle"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/order"
	"marketplace-service/internal/role"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

// B2COrderRequest defines a cash-on-delivery checkout submission
type B2COrderRequest struct {
	BuyerName    string `json:"buyer_name"`
	BuyerAddress string `json:"buyer_address"`
	BuyerPhone   string `json:"buyer_phone"`
	ListingID    uint   `json:"listing_id"`
	Quantity     int    `json:"quantity"`
}

// B2BOrderRequest defines a bulk checkout submission. Lines may span sellers;
// the engine partitions them into one order per seller.
type B2BOrderRequest struct {
	Lines []struct {
		ListingID uint `json:"listing_id"`
		Quantity  int  `json:"quantity"`
	} `json:"lines"`
}

// StatusUpdateRequest defines an order status transition request
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// PlaceB2COrder handles cash-on-delivery checkout. Anonymous buyers are
// allowed; a signed-in customer is attached to the order.
func PlaceB2COrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req B2COrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	buyer := order.BuyerInfo{
		Name:    req.BuyerName,
		Address: req.BuyerAddress,
		Phone:   req.BuyerPhone,
	}
	var actor *role.Actor
	if a, ok := middleware.ActorFromContext(c); ok {
		actor = &a
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	engine := order.New(database.GetDB())
	ord, err := engine.PlaceB2C(actor, buyer, req.ListingID, req.Quantity)
	if err != nil {
		prometheus.RecordOrderPlacement("b2c", "rejected")
		if apperr.IsKind(err, apperr.KindInsufficientStock) {
			prometheus.StockRejectionsCounter.Inc()
		}
		return respondError(c, log, err)
	}

	prometheus.RecordOrderPlacement("b2c", "placed")
	log.Info("B2C order placed",
		zap.Uint("order_id", ord.ID),
		zap.Uint("listing_id", req.ListingID),
		zap.Int("quantity", req.Quantity))
	return c.JSON(http.StatusCreated, ord)
}

// PlaceB2BOrder handles bulk checkout for business buyers. The response
// reports committed orders and failed seller partitions side by side.
func PlaceB2BOrder(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req B2BOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	lines := make([]order.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, order.CartLine{ListingID: l.ListingID, Quantity: l.Quantity})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	engine := order.New(database.GetDB())
	result, err := engine.PlaceB2B(actor, lines)
	if err != nil {
		prometheus.RecordOrderPlacement("b2b", "rejected")
		return respondError(c, log, err)
	}

	failures := make([]echo.Map, 0, len(result.Failures))
	for _, f := range result.Failures {
		prometheus.RecordOrderPlacement("b2b", "rejected")
		if apperr.IsKind(f.Err, apperr.KindInsufficientStock) {
			prometheus.StockRejectionsCounter.Inc()
		}
		failures = append(failures, echo.Map{
			"seller_id": f.SellerID,
			"code":      apperr.KindOf(f.Err),
			"error":     f.Err.Error(),
		})
	}
	for range result.Orders {
		prometheus.RecordOrderPlacement("b2b", "placed")
	}

	log.Info("B2B checkout processed",
		zap.Uint("buyer_id", actor.ID),
		zap.Int("orders", len(result.Orders)),
		zap.Int("failures", len(result.Failures)))

	status := http.StatusCreated
	if len(result.Orders) == 0 {
		// Nothing committed: surface the first partition failure's status.
		status = apperr.HTTPStatus(apperr.KindOf(result.Failures[0].Err))
	} else if len(result.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, echo.Map{
		"orders":   result.Orders,
		"failures": failures,
	})
}

// GetB2COrder handles retrieving a single cash-on-delivery order. The buyer,
// the selling side, and admins may read it; the order carries the buyer's
// contact details, so it is never public.
func GetB2COrder(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	engine := order.New(database.GetDB())
	ord, err := engine.GetB2COrderFor(actor, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, ord)
}

// ListB2BOrders handles the buyer-side order history
func ListB2BOrders(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	engine := order.New(database.GetDB())
	orders, err := engine.ListB2BOrdersForBuyer(actor.ID)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("B2B orders retrieved", zap.Uint("buyer_id", actor.ID), zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, orders)
}

// ListB2BSales handles the seller-side incoming bulk orders
func ListB2BSales(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	engine := order.New(database.GetDB())
	orders, err := engine.ListB2BOrdersForSeller(actor.ID)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("B2B sales retrieved", zap.Uint("seller_id", actor.ID), zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, orders)
}

// ListB2CSales handles the seller-side incoming cash-on-delivery orders
func ListB2CSales(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	engine := order.New(database.GetDB())
	orders, err := engine.ListB2COrdersForSeller(actor.ID)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("B2C sales retrieved", zap.Uint("seller_id", actor.ID), zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, orders)
}

// UpdateB2CStatus handles advancing a cash-on-delivery order
func UpdateB2CStatus(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	status, err := lifecycle.Parse(req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	engine := order.New(database.GetDB())
	ord, err := engine.UpdateB2CStatus(actor, id, status)
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordOrderTransition("b2c", string(status))
	log.Info("B2C order status updated",
		zap.Uint("order_id", ord.ID),
		zap.String("status", string(ord.Status)))
	return c.JSON(http.StatusOK, ord)
}

// UpdateB2BStatus handles advancing a bulk order
func UpdateB2BStatus(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	status, err := lifecycle.Parse(req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	engine := order.New(database.GetDB())
	ord, err := engine.UpdateB2BStatus(actor, id, status)
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordOrderTransition("b2b", string(status))
	log.Info("B2B order status updated",
		zap.Uint("order_id", ord.ID),
		zap.String("status", string(ord.Status)))
	return c.JSON(http.StatusOK, ord)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/stats"
	"marketplace-service/pkg/config"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

// recentOrderWindowDays bounds the seller dashboard's recent-activity count
// when the client does not pass a window. Overridden from config at startup.
var recentOrderWindowDays = 7

// InitStatsDefaults applies the configured statistics defaults.
func InitStatsDefaults(cfg *config.Config) {
	if cfg.Stats.RecentOrderWindowDays > 0 {
		recentOrderWindowDays = cfg.Stats.RecentOrderWindowDays
	}
}

// SellerStats handles the seller dashboard snapshot
func SellerStats(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	windowDays := recentOrderWindowDays
	if raw := c.QueryParam("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "window_days must be a positive integer"})
		}
		windowDays = parsed
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	aggregator := stats.New(database.GetDB())
	overview, err := aggregator.SellerOverview(actor.ID, windowDays)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Seller stats computed",
		zap.Uint("seller_id", actor.ID),
		zap.Int("window_days", windowDays),
		zap.Int64("total_orders", overview.TotalOrders))
	return c.JSON(http.StatusOK, overview)
}

// AdminStats handles the marketplace-wide snapshot. Admin only.
func AdminStats(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok || !actor.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	aggregator := stats.New(database.GetDB())
	overview, err := aggregator.PlatformOverview()
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Platform stats computed",
		zap.Int64("total_orders", overview.TotalOrders),
		zap.Int64("total_listings", overview.TotalListings))
	return c.JSON(http.StatusOK, overview)
}

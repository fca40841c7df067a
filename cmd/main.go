package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketplace-service/internal/handler"
	mid "marketplace-service/internal/middleware"
	"marketplace-service/pkg/config"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/jwtutil"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

func main() {
	// Load .env file; fall back to environment variables when absent
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting marketplace-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Apply configured handler defaults
	handler.InitStatsDefaults(appConfig)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public storefront and cash-on-delivery checkout; a signed-in customer
	// is attached to the order when a token is present
	e.GET("/api/marketplace", handler.Marketplace)
	e.POST("/api/orders/b2c", handler.PlaceB2COrder, mid.OptionalAuth)

	// Listing API routes - visibility is resolved from the caller's tier
	listingAPI := e.Group("/api/listings", mid.AuthMiddleware)
	listingAPI.GET("", handler.ListListings)
	listingAPI.GET("/:id", handler.GetListing)
	listingAPI.POST("", handler.CreateListing)
	listingAPI.PUT("/:id", handler.UpdateListing)
	listingAPI.DELETE("/:id", handler.DeleteListing)
	listingAPI.POST("/:id/restock", handler.RestockListing)

	// Seller dashboard routes
	sellerAPI := e.Group("/api/seller", mid.AuthMiddleware)
	sellerAPI.GET("/listings", handler.SellerListings)
	sellerAPI.GET("/stats", handler.SellerStats)

	// Order API routes
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.GET("/b2c/:id", handler.GetB2COrder)
	orderAPI.POST("/b2b", handler.PlaceB2BOrder)
	orderAPI.GET("/b2b", handler.ListB2BOrders)
	orderAPI.GET("/b2b/sales", handler.ListB2BSales)
	orderAPI.GET("/b2c/sales", handler.ListB2CSales)
	orderAPI.PUT("/b2c/:id/status", handler.UpdateB2CStatus)
	orderAPI.PUT("/b2b/:id/status", handler.UpdateB2BStatus)

	// Category API routes - reads are open to authenticated users, writes are
	// admin-only inside the handlers
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", handler.ListCategories)
	categoryAPI.GET("/:id", handler.GetCategory)
	categoryAPI.POST("", handler.CreateCategory)
	categoryAPI.PUT("/:id", handler.UpdateCategory)
	categoryAPI.DELETE("/:id", handler.DeleteCategory)

	// Profile API routes
	profileAPI := e.Group("/api/profiles", mid.AuthMiddleware)
	profileAPI.PUT("/me", handler.UpdateMyProfile)
	profileAPI.PUT("/:id/tier", handler.SetProfileTier)
	profileAPI.PUT("/:id/ban", handler.SetProfileBan)

	// Admin statistics
	adminAPI := e.Group("/api/admin", mid.AuthMiddleware)
	adminAPI.GET("/stats", handler.AdminStats)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

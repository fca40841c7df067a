// Package stats derives dashboard metrics from committed catalog and order
// state. Everything here is read-only and recomputed per request; there is no
// second source of truth that can drift.
package stats

import (
	"time"

	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/lifecycle"
	"marketplace-service/internal/model"
)

// LowStockThreshold is the exclusive upper bound below which a stocked listing
// raises a low-stock alert.
const LowStockThreshold = 10

// Aggregator computes marketplace statistics.
type Aggregator struct {
	db *gorm.DB
}

// New creates a statistics aggregator.
func New(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// SellerOverview is the per-seller dashboard snapshot.
type SellerOverview struct {
	TotalListings  int64   `json:"total_listings"`
	ActiveListings int64   `json:"active_listings"`
	PendingOrders  int64   `json:"pending_orders"`
	TotalOrders    int64   `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	LowStockAlerts int64   `json:"low_stock_alerts"`
	RecentOrders   int64   `json:"recent_orders"`
}

// SellerOverview computes the dashboard numbers for one seller. Recent orders
// are counted over the trailing windowDays.
func (a *Aggregator) SellerOverview(sellerID uint, windowDays int) (*SellerOverview, error) {
	ov := &SellerOverview{}

	listings := a.db.Model(&model.Listing{}).Where("seller_id = ?", sellerID)
	if err := listings.Count(&ov.TotalListings).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count listings")
	}
	active := a.db.Model(&model.Listing{}).Where("seller_id = ? AND stock_quantity > 0", sellerID)
	if err := active.Count(&ov.ActiveListings).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count active listings")
	}
	lowStock := a.db.Model(&model.Listing{}).
		Where("seller_id = ? AND stock_quantity > 0 AND stock_quantity < ?", sellerID, LowStockThreshold)
	if err := lowStock.Count(&ov.LowStockAlerts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count low-stock listings")
	}

	b2cTotal, b2cPending, err := a.b2cOrderCounts(sellerID)
	if err != nil {
		return nil, err
	}
	var b2bTotal, b2bPending int64
	if err := a.db.Model(&model.OrderB2B{}).Where("seller_id = ?", sellerID).Count(&b2bTotal).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count b2b orders")
	}
	if err := a.db.Model(&model.OrderB2B{}).
		Where("seller_id = ? AND status = ?", sellerID, lifecycle.StatusPending).
		Count(&b2bPending).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count pending b2b orders")
	}
	ov.TotalOrders = b2cTotal + b2bTotal
	ov.PendingOrders = b2cPending + b2bPending

	revenue, err := a.TotalRevenue(sellerID)
	if err != nil {
		return nil, err
	}
	ov.TotalRevenue = revenue

	recent, err := a.RecentOrders(sellerID, windowDays)
	if err != nil {
		return nil, err
	}
	ov.RecentOrders = recent

	return ov, nil
}

// TotalRevenue sums revenue-eligible orders for a seller. The eligible status
// set differs per order kind: cash-on-delivery revenue exists only once the
// order is delivered, while business orders count from shipment (including the
// legacy completed alias).
func (a *Aggregator) TotalRevenue(sellerID uint) (float64, error) {
	var b2c struct{ Total float64 }
	err := a.db.Model(&model.OrderItemB2C{}).
		Select("COALESCE(SUM(b2c_order_items.price_at_purchase * b2c_order_items.quantity), 0) AS total").
		Joins("JOIN b2c_orders ON b2c_orders.id = b2c_order_items.order_id").
		Joins("JOIN listings ON listings.id = b2c_order_items.listing_id").
		Where("listings.seller_id = ? AND b2c_orders.status = ?", sellerID, lifecycle.StatusDelivered).
		Scan(&b2c).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, err, "failed to sum b2c revenue")
	}

	var b2b struct{ Total float64 }
	err = a.db.Model(&model.OrderB2B{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("seller_id = ? AND status IN ?", sellerID, lifecycle.RevenueStatusesB2B()).
		Scan(&b2b).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, err, "failed to sum b2b revenue")
	}

	return b2c.Total + b2b.Total, nil
}

// RecentOrders counts the seller's orders of both kinds created within the
// trailing window.
func (a *Aggregator) RecentOrders(sellerID uint, windowDays int) (int64, error) {
	if windowDays < 1 {
		return 0, apperr.New(apperr.KindValidation, "window must be at least 1 day, got %d", windowDays)
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	var b2c int64
	err := a.db.Model(&model.OrderB2C{}).
		Joins("JOIN b2c_order_items ON b2c_order_items.order_id = b2c_orders.id").
		Joins("JOIN listings ON listings.id = b2c_order_items.listing_id").
		Where("listings.seller_id = ? AND b2c_orders.created_at >= ?", sellerID, since).
		Distinct("b2c_orders.id").
		Count(&b2c).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, err, "failed to count recent b2c orders")
	}

	var b2b int64
	err = a.db.Model(&model.OrderB2B{}).
		Where("seller_id = ? AND created_at >= ?", sellerID, since).
		Count(&b2b).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, err, "failed to count recent b2b orders")
	}
	return b2c + b2b, nil
}

// PlatformOverview is the admin-wide snapshot across all sellers.
type PlatformOverview struct {
	TotalListings int64   `json:"total_listings"`
	TotalOrders   int64   `json:"total_orders"`
	PendingOrders int64   `json:"pending_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// PlatformOverview computes marketplace-wide totals for the admin dashboard.
func (a *Aggregator) PlatformOverview() (*PlatformOverview, error) {
	ov := &PlatformOverview{}
	if err := a.db.Model(&model.Listing{}).Count(&ov.TotalListings).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count listings")
	}

	var b2cTotal, b2bTotal, b2cPending, b2bPending int64
	if err := a.db.Model(&model.OrderB2C{}).Count(&b2cTotal).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count b2c orders")
	}
	if err := a.db.Model(&model.OrderB2B{}).Count(&b2bTotal).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count b2b orders")
	}
	if err := a.db.Model(&model.OrderB2C{}).Where("status = ?", lifecycle.StatusPending).Count(&b2cPending).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count pending b2c orders")
	}
	if err := a.db.Model(&model.OrderB2B{}).Where("status = ?", lifecycle.StatusPending).Count(&b2bPending).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to count pending b2b orders")
	}
	ov.TotalOrders = b2cTotal + b2bTotal
	ov.PendingOrders = b2cPending + b2bPending

	var b2cRev struct{ Total float64 }
	err := a.db.Model(&model.OrderItemB2C{}).
		Select("COALESCE(SUM(b2c_order_items.price_at_purchase * b2c_order_items.quantity), 0) AS total").
		Joins("JOIN b2c_orders ON b2c_orders.id = b2c_order_items.order_id").
		Where("b2c_orders.status = ?", lifecycle.StatusDelivered).
		Scan(&b2cRev).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to sum b2c revenue")
	}
	var b2bRev struct{ Total float64 }
	err = a.db.Model(&model.OrderB2B{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("status IN ?", lifecycle.RevenueStatusesB2B()).
		Scan(&b2bRev).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to sum b2b revenue")
	}
	ov.TotalRevenue = b2cRev.Total + b2bRev.Total
	return ov, nil
}

func (a *Aggregator) b2cOrderCounts(sellerID uint) (total, pending int64, err error) {
	err = a.db.Model(&model.OrderB2C{}).
		Joins("JOIN b2c_order_items ON b2c_order_items.order_id = b2c_orders.id").
		Joins("JOIN listings ON listings.id = b2c_order_items.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Distinct("b2c_orders.id").
		Count(&total).Error
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInternal, err, "failed to count b2c orders")
	}
	err = a.db.Model(&model.OrderB2C{}).
		Joins("JOIN b2c_order_items ON b2c_order_items.order_id = b2c_orders.id").
		Joins("JOIN listings ON listings.id = b2c_order_items.listing_id").
		Where("listings.seller_id = ? AND b2c_orders.status = ?", sellerID, lifecycle.StatusPending).
		Distinct("b2c_orders.id").
		Count(&pending).Error
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInternal, err, "failed to count pending b2c orders")
	}
	return total, pending, nil
}

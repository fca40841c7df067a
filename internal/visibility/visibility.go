// Package visibility decides which listings a requester may see. The resolver
// is pure: the same tier and context always produce the same filter, which the
// catalog applies on its query path.
package visibility

import (
	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
)

// Filter describes a listing visibility predicate. The zero value matches
// nothing useful; construct one through ForBuyer, ForSeller or Public.
type Filter struct {
	TargetTier   role.Tier
	RequireStock bool
	BulkOnly     bool
	SellerID     uint
}

// ForBuyer resolves the browse filter for a buyer of the given tier. The
// importer-to-wholesaler lane additionally restricts to bulk offers.
func ForBuyer(t role.Tier) (Filter, error) {
	target, ok := role.UpstreamTarget(t)
	if !ok {
		return Filter{}, apperr.New(apperr.KindForbidden, "tier %q has no purchasing lane", t)
	}
	return Filter{
		TargetTier:   target,
		RequireStock: true,
		BulkOnly:     target == role.TierWholesaler,
	}, nil
}

// ForSeller resolves the seller-dashboard filter. No stock requirement:
// sellers must see zero-stock listings to restock them.
func ForSeller(sellerID uint) Filter {
	return Filter{SellerID: sellerID}
}

// Public resolves the unauthenticated storefront filter.
func Public() Filter {
	return Filter{TargetTier: role.TierCustomer, RequireStock: true}
}

// Match applies the filter to a listing in memory.
func (f Filter) Match(l model.Listing) bool {
	if f.SellerID != 0 {
		return l.SellerID == f.SellerID
	}
	if l.TargetTier != f.TargetTier {
		return false
	}
	if f.RequireStock && l.StockQuantity <= 0 {
		return false
	}
	if f.BulkOnly && !l.IsBulkOffer {
		return false
	}
	return true
}

// Scope applies the filter on a gorm query. It mirrors Match exactly; the two
// must never diverge.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	if f.SellerID != 0 {
		return db.Where("seller_id = ?", f.SellerID)
	}
	db = db.Where("target_tier = ?", f.TargetTier)
	if f.RequireStock {
		db = db.Where("stock_quantity > 0")
	}
	if f.BulkOnly {
		db = db.Where("is_bulk_offer = ?", true)
	}
	return db
}

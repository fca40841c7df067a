// Package order implements order placement and status transitions for both
// order kinds. Placement couples the stock decrement and the order rows in a
// single transaction per seller, which is the whole defense against oversell
// and partial writes.
package order

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/catalog"
	"marketplace-service/internal/lifecycle"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
)

// Engine places and advances orders over a gorm connection.
type Engine struct {
	db *gorm.DB
}

// New creates an order engine.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// BuyerInfo is the delivery contact captured on a cash-on-delivery order.
type BuyerInfo struct {
	Name    string
	Address string
	Phone   string
}

// PlaceB2C places a single-listing cash-on-delivery order. The order, its
// item, and the stock decrement commit together or not at all. A nil actor is
// an anonymous guest; a signed-in actor must hold a tier that shops the
// customer lane, and is attached to the order.
func (e *Engine) PlaceB2C(actor *role.Actor, buyer BuyerInfo, listingID uint, quantity int) (*model.OrderB2C, error) {
	if actor != nil && !role.CanPlaceB2C(actor.Tier) {
		return nil, apperr.New(apperr.KindForbidden, "tier %q cannot place storefront orders", actor.Tier)
	}
	if quantity < 1 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be at least 1, got %d", quantity)
	}
	if buyer.Name == "" || buyer.Address == "" || buyer.Phone == "" {
		return nil, apperr.New(apperr.KindValidation, "buyer name, address and phone are required")
	}

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, tx.Error, "failed to begin transaction")
	}

	var listing model.Listing
	if result := tx.First(&listing, listingID); result.Error != nil {
		tx.Rollback()
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "listing %d not found", listingID)
		}
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to load listing %d", listingID)
	}
	if listing.TargetTier != role.TierCustomer {
		// A business-lane listing is invisible to this flow, not forbidden.
		tx.Rollback()
		return nil, apperr.New(apperr.KindNotFound, "listing %d not found", listingID)
	}
	if listing.StockQuantity < quantity {
		tx.Rollback()
		return nil, apperr.New(apperr.KindInsufficientStock, "listing %d has fewer than %d units in stock", listingID, quantity)
	}

	ord := model.OrderB2C{
		BuyerName:    buyer.Name,
		BuyerAddress: buyer.Address,
		BuyerPhone:   buyer.Phone,
		Status:       lifecycle.StatusPending,
	}
	if actor != nil {
		id := actor.ID
		ord.BuyerUserID = &id
	}
	if result := tx.Create(&ord); result.Error != nil {
		tx.Rollback()
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to create order")
	}

	// Price snapshot: the live listing price is never read again for this item.
	item := model.OrderItemB2C{
		OrderID:         ord.ID,
		ListingID:       listing.ID,
		Quantity:        quantity,
		PriceAtPurchase: listing.Price,
	}
	if result := tx.Create(&item); result.Error != nil {
		tx.Rollback()
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to create order item")
	}

	if err := catalog.DecrementStock(tx, listing.ID, quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to commit order")
	}

	ord.Items = []model.OrderItemB2C{item}
	return &ord, nil
}

// CartLine is one listing/quantity pair in a B2B checkout submission.
type CartLine struct {
	ListingID uint
	Quantity  int
}

// PartitionFailure reports a seller partition that could not be committed.
type PartitionFailure struct {
	SellerID uint
	Err      error
}

// B2BResult is the outcome of a multi-seller checkout: the orders that
// committed plus the partitions that failed. Both can be non-empty at once.
type B2BResult struct {
	Orders   []*model.OrderB2B
	Failures []PartitionFailure
}

// PlaceB2B places bulk orders for a registered business buyer. The cart is
// partitioned by seller and each partition commits in its own transaction, so
// a failure with one seller never rolls back an order already placed with
// another.
func (e *Engine) PlaceB2B(buyer role.Actor, lines []CartLine) (*B2BResult, error) {
	if !role.CanPlaceB2B(buyer.Tier) {
		return nil, apperr.New(apperr.KindForbidden, "tier %q cannot place bulk orders", buyer.Tier)
	}
	if len(lines) == 0 {
		return nil, apperr.New(apperr.KindValidation, "cart is empty")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.New(apperr.KindValidation, "quantity must be at least 1, got %d", line.Quantity)
		}
	}

	wantTarget, ok := role.UpstreamTarget(buyer.Tier)
	if !ok {
		return nil, apperr.New(apperr.KindForbidden, "tier %q has no purchasing lane", buyer.Tier)
	}

	// Resolve listings up front so the cart can be partitioned by seller.
	// Stock is not trusted from this read; the conditional decrement inside
	// each partition's transaction is authoritative.
	partitions := make(map[uint][]cartEntry)
	for _, line := range lines {
		var listing model.Listing
		if result := e.db.First(&listing, line.ListingID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.KindNotFound, "listing %d not found", line.ListingID)
			}
			return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to load listing %d", line.ListingID)
		}
		partitions[listing.SellerID] = append(partitions[listing.SellerID], cartEntry{listing: listing, quantity: line.Quantity})
	}

	// Deterministic partition order keeps multi-seller checkouts reproducible.
	sellerIDs := make([]uint, 0, len(partitions))
	for sellerID := range partitions {
		sellerIDs = append(sellerIDs, sellerID)
	}
	sort.Slice(sellerIDs, func(i, j int) bool { return sellerIDs[i] < sellerIDs[j] })

	result := &B2BResult{}
	for _, sellerID := range sellerIDs {
		ord, err := e.placePartition(buyer, sellerID, wantTarget, partitions[sellerID])
		if err != nil {
			result.Failures = append(result.Failures, PartitionFailure{SellerID: sellerID, Err: err})
			continue
		}
		result.Orders = append(result.Orders, ord)
	}
	return result, nil
}

type cartEntry struct {
	listing  model.Listing
	quantity int
}

// placePartition commits one seller's order atomically: every line validates
// and decrements, or the whole partition rolls back.
func (e *Engine) placePartition(buyer role.Actor, sellerID uint, wantTarget role.Tier, entries []cartEntry) (*model.OrderB2B, error) {
	for _, entry := range entries {
		if entry.listing.TargetTier != wantTarget {
			return nil, apperr.New(apperr.KindTierMismatch,
				"listing %d targets tier %q, buyer tier %q purchases %q",
				entry.listing.ID, entry.listing.TargetTier, buyer.Tier, wantTarget)
		}
		if entry.listing.IsBulkOffer && entry.quantity < entry.listing.MinOrderQuantity {
			return nil, apperr.New(apperr.KindMinimumOrder,
				"listing %d requires a minimum order of %d, got %d",
				entry.listing.ID, entry.listing.MinOrderQuantity, entry.quantity)
		}
	}

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, tx.Error, "failed to begin transaction")
	}

	var total float64
	ord := model.OrderB2B{
		BuyerID:  buyer.ID,
		SellerID: sellerID,
		Status:   lifecycle.StatusPending,
	}
	if result := tx.Create(&ord); result.Error != nil {
		tx.Rollback()
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to create order")
	}

	orderItems := make([]model.OrderItemB2B, 0, len(entries))
	for _, entry := range entries {
		if err := catalog.DecrementStock(tx, entry.listing.ID, entry.quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
		item := model.OrderItemB2B{
			OrderID:         ord.ID,
			ListingID:       entry.listing.ID,
			Quantity:        entry.quantity,
			PriceAtPurchase: entry.listing.Price,
		}
		if result := tx.Create(&item); result.Error != nil {
			tx.Rollback()
			return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to create order item")
		}
		orderItems = append(orderItems, item)
		total += entry.listing.Price * float64(entry.quantity)
	}

	if result := tx.Model(&model.OrderB2B{}).Where("id = ?", ord.ID).Update("total_price", total); result.Error != nil {
		tx.Rollback()
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to set order total")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to commit order")
	}

	ord.TotalPrice = total
	ord.Items = orderItems
	return &ord, nil
}

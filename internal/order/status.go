package order

import (
	"errors"

	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/lifecycle"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
)

// UpdateB2CStatus advances a cash-on-delivery order. Only the selling side (or
// an admin) may move the machine; the buyer has read-only visibility. The
// write is a single-row compare-and-set so two racing updates cannot both
// apply.
func (e *Engine) UpdateB2CStatus(caller role.Actor, orderID uint, to lifecycle.Status) (*model.OrderB2C, error) {
	ord, err := e.GetB2COrder(orderID)
	if err != nil {
		return nil, err
	}

	sellerID, err := e.b2cSellerID(ord)
	if err != nil {
		return nil, err
	}
	if sellerID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "order %d is not sold by caller %d", orderID, caller.ID)
	}
	if !lifecycle.CanB2C(ord.Status, to) {
		return nil, apperr.New(apperr.KindIllegalTransition, "b2c order cannot move from %q to %q", ord.Status, to)
	}

	result := e.db.Model(&model.OrderB2C{}).
		Where("id = ? AND status = ?", orderID, ord.Status).
		Update("status", to)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to update order %d", orderID)
	}
	if result.RowsAffected == 0 {
		// Lost the race: someone moved the order first.
		return nil, apperr.New(apperr.KindIllegalTransition, "order %d changed status concurrently", orderID)
	}
	ord.Status = to
	return ord, nil
}

// UpdateB2BStatus advances a bulk order. Only the order's seller (or an admin)
// may move it, and only to a strict successor in the fixed table.
func (e *Engine) UpdateB2BStatus(caller role.Actor, orderID uint, to lifecycle.Status) (*model.OrderB2B, error) {
	ord, err := e.GetB2BOrder(orderID)
	if err != nil {
		return nil, err
	}
	if ord.SellerID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "order %d is not sold by caller %d", orderID, caller.ID)
	}
	if !lifecycle.CanB2B(ord.Status, to) {
		return nil, apperr.New(apperr.KindIllegalTransition, "b2b order cannot move from %q to %q", ord.Status, to)
	}

	result := e.db.Model(&model.OrderB2B{}).
		Where("id = ? AND status = ?", orderID, ord.Status).
		Update("status", to)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to update order %d", orderID)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.KindIllegalTransition, "order %d changed status concurrently", orderID)
	}
	ord.Status = to
	return ord, nil
}

// GetB2COrder loads a cash-on-delivery order with its items.
func (e *Engine) GetB2COrder(id uint) (*model.OrderB2C, error) {
	var ord model.OrderB2C
	result := e.db.Preload("Items").First(&ord, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order %d not found", id)
		}
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to load order %d", id)
	}
	return &ord, nil
}

// GetB2COrderFor loads a cash-on-delivery order on behalf of a caller. Read
// visibility belongs to the buyer, the selling side, and admins; anyone else
// gets forbidden, so order IDs cannot be enumerated for contact details.
func (e *Engine) GetB2COrderFor(caller role.Actor, id uint) (*model.OrderB2C, error) {
	ord, err := e.GetB2COrder(id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return ord, nil
	}
	if ord.BuyerUserID != nil && *ord.BuyerUserID == caller.ID {
		return ord, nil
	}
	sellerID, err := e.b2cSellerID(ord)
	if err != nil {
		return nil, err
	}
	if sellerID == caller.ID {
		return ord, nil
	}
	return nil, apperr.New(apperr.KindForbidden, "order %d is not visible to caller %d", id, caller.ID)
}

// GetB2BOrder loads a bulk order with its items.
func (e *Engine) GetB2BOrder(id uint) (*model.OrderB2B, error) {
	var ord model.OrderB2B
	result := e.db.Preload("Items").First(&ord, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order %d not found", id)
		}
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to load order %d", id)
	}
	return &ord, nil
}

// ListB2BOrdersForBuyer returns a buyer's bulk orders, newest first.
func (e *Engine) ListB2BOrdersForBuyer(buyerID uint) ([]model.OrderB2B, error) {
	var orders []model.OrderB2B
	result := e.db.Preload("Items").Where("buyer_id = ?", buyerID).Order("created_at DESC").Find(&orders)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to list orders for buyer %d", buyerID)
	}
	return orders, nil
}

// ListB2BOrdersForSeller returns a seller's incoming bulk orders, newest first.
func (e *Engine) ListB2BOrdersForSeller(sellerID uint) ([]model.OrderB2B, error) {
	var orders []model.OrderB2B
	result := e.db.Preload("Items").Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&orders)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to list orders for seller %d", sellerID)
	}
	return orders, nil
}

// ListB2COrdersForSeller returns the cash-on-delivery orders whose items
// reference the seller's listings, newest first.
func (e *Engine) ListB2COrdersForSeller(sellerID uint) ([]model.OrderB2C, error) {
	var orders []model.OrderB2C
	result := e.db.Preload("Items").
		Joins("JOIN b2c_order_items ON b2c_order_items.order_id = b2c_orders.id").
		Joins("JOIN listings ON listings.id = b2c_order_items.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Group("b2c_orders.id").
		Order("b2c_orders.created_at DESC").
		Find(&orders)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to list orders for seller %d", sellerID)
	}
	return orders, nil
}

// b2cSellerID resolves the selling side of a B2C order through its first
// item's listing. B2C orders are single-seller by construction.
func (e *Engine) b2cSellerID(ord *model.OrderB2C) (uint, error) {
	if len(ord.Items) == 0 {
		return 0, apperr.New(apperr.KindInternal, "order %d has no items", ord.ID)
	}
	var listing model.Listing
	result := e.db.Unscoped().First(&listing, ord.Items[0].ListingID)
	if result.Error != nil {
		return 0, apperr.Wrap(apperr.KindInternal, result.Error, "failed to resolve seller for order %d", ord.ID)
	}
	return listing.SellerID, nil
}

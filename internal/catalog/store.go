// Package catalog owns durable storage and point mutation of products and
// listings, including the conditional stock decrement the order engine relies
// on to prevent oversell.
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
	"marketplace-service/internal/visibility"
)

// Store provides catalog operations over a gorm connection.
type Store struct {
	db *gorm.DB
}

// New creates a catalog store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ProductInput is the product master data supplied at listing creation.
type ProductInput struct {
	Name        string
	Description string
	MediaURL    string
	CategoryID  *uint
}

// ListingInput is the commercial data supplied at listing creation. A zero
// MinOrderQuantity defaults to 1.
type ListingInput struct {
	Product          ProductInput
	Price            float64
	StockQuantity    int
	MinOrderQuantity int
}

// CreateListing creates a product and its listing for the selling actor.
// TargetTier and IsBulkOffer are computed from the seller's tier, never taken
// from the caller.
func (s *Store) CreateListing(seller role.Actor, in ListingInput) (*model.Listing, error) {
	if !role.CanCreateListing(seller.Tier) {
		return nil, apperr.New(apperr.KindInvalidTier, "tier %q cannot create listings", seller.Tier)
	}
	if in.Product.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "product name is required")
	}
	if in.Price <= 0 {
		return nil, apperr.New(apperr.KindValidation, "price must be positive, got %v", in.Price)
	}
	if in.StockQuantity < 0 {
		return nil, apperr.New(apperr.KindValidation, "stock must be non-negative, got %d", in.StockQuantity)
	}
	minQty := in.MinOrderQuantity
	if minQty == 0 {
		minQty = 1
	}
	if minQty < 1 {
		return nil, apperr.New(apperr.KindValidation, "minimum order quantity must be positive, got %d", minQty)
	}

	target, ok := role.Downstream(seller.Tier)
	if !ok {
		return nil, apperr.New(apperr.KindInvalidTier, "tier %q has no downstream lane", seller.Tier)
	}

	listing := model.Listing{
		Product: model.Product{
			Name:        in.Product.Name,
			Description: in.Product.Description,
			MediaURL:    in.Product.MediaURL,
			CategoryID:  in.Product.CategoryID,
		},
		SellerID:         seller.ID,
		Price:            in.Price,
		StockQuantity:    in.StockQuantity,
		TargetTier:       target,
		IsBulkOffer:      seller.Tier == role.TierImporter,
		MinOrderQuantity: minQty,
	}

	// Product and listing commit together.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&listing.Product); result.Error != nil {
			return result.Error
		}
		listing.ProductID = listing.Product.ID
		if result := tx.Create(&listing); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to create listing")
	}
	return &listing, nil
}

// ListingUpdate carries the mutable listing fields. Nil pointers leave the
// field untouched. StockDelta adjusts stock relative to its current value;
// concurrent order placements keep decrementing the same column, so there is
// no absolute stock write that could resurrect units already sold. TargetTier
// and IsBulkOffer are accepted only from admins.
type ListingUpdate struct {
	Price            *float64
	StockDelta       *int
	MinOrderQuantity *int
	Name             *string
	Description      *string

	// Privileged correction fields.
	TargetTier  *role.Tier
	IsBulkOffer *bool
}

// UpdateListing applies a seller or admin edit to a listing.
func (s *Store) UpdateListing(caller role.Actor, id uint, upd ListingUpdate) (*model.Listing, error) {
	listing, err := s.GetListing(id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "listing %d is not owned by caller %d", id, caller.ID)
	}
	if (upd.TargetTier != nil || upd.IsBulkOffer != nil) && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindImmutableField, "target_tier and is_bulk_offer are immutable after creation")
	}

	fields := map[string]interface{}{}
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return nil, apperr.New(apperr.KindValidation, "price must be positive, got %v", *upd.Price)
		}
		fields["price"] = *upd.Price
	}
	if upd.MinOrderQuantity != nil {
		if *upd.MinOrderQuantity < 1 {
			return nil, apperr.New(apperr.KindValidation, "minimum order quantity must be positive, got %d", *upd.MinOrderQuantity)
		}
		fields["min_order_quantity"] = *upd.MinOrderQuantity
	}
	if upd.TargetTier != nil {
		if _, err := role.Parse(string(*upd.TargetTier)); err != nil {
			return nil, apperr.New(apperr.KindValidation, "unrecognized target tier %q", *upd.TargetTier)
		}
		fields["target_tier"] = *upd.TargetTier
	}
	if upd.IsBulkOffer != nil {
		fields["is_bulk_offer"] = *upd.IsBulkOffer
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if result := tx.Model(&model.Listing{}).Where("id = ?", id).Updates(fields); result.Error != nil {
				return result.Error
			}
		}
		if upd.StockDelta != nil && *upd.StockDelta != 0 {
			// Same conditional-delta shape as DecrementStock: the guard and the
			// adjustment are one statement, so a racing placement cannot be
			// overwritten and stock never goes negative.
			result := tx.Model(&model.Listing{}).
				Where("id = ? AND stock_quantity + ? >= 0", id, *upd.StockDelta).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", *upd.StockDelta))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperr.New(apperr.KindInsufficientStock, "listing %d has fewer than %d units in stock", id, -*upd.StockDelta)
			}
		}
		if upd.Name != nil || upd.Description != nil {
			product := map[string]interface{}{}
			if upd.Name != nil {
				product["name"] = *upd.Name
			}
			if upd.Description != nil {
				product["description"] = *upd.Description
			}
			if result := tx.Model(&model.Product{}).Where("id = ?", listing.ProductID).Updates(product); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to update listing %d", id)
	}
	return s.GetListing(id)
}

// RestockListing adds stock to a listing. This is the only restock path: a
// cancelled order never puts its quantity back automatically.
func (s *Store) RestockListing(caller role.Actor, id uint, quantity int) (*model.Listing, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.KindValidation, "restock quantity must be positive, got %d", quantity)
	}
	listing, err := s.GetListing(id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "listing %d is not owned by caller %d", id, caller.ID)
	}
	result := s.db.Model(&model.Listing{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to restock listing %d", id)
	}
	return s.GetListing(id)
}

// DecrementStock atomically takes quantity units from a listing's stock inside
// the caller's transaction. The conditional update is what makes concurrent
// order placement safe: the check and the decrement are a single statement,
// and an affected-row count of zero means the stock was insufficient at the
// moment of execution.
func DecrementStock(tx *gorm.DB, listingID uint, quantity int) error {
	if quantity < 1 {
		return apperr.New(apperr.KindValidation, "quantity must be positive, got %d", quantity)
	}
	result := tx.Model(&model.Listing{}).
		Where("id = ? AND stock_quantity >= ?", listingID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return apperr.Wrap(apperr.KindInternal, result.Error, "failed to decrement stock for listing %d", listingID)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindInsufficientStock, "listing %d has fewer than %d units in stock", listingID, quantity)
	}
	return nil
}

// DeleteListing soft-deletes a listing. Historical order items keep their
// listing reference for audit; nothing cascades.
func (s *Store) DeleteListing(caller role.Actor, id uint) error {
	listing, err := s.GetListing(id)
	if err != nil {
		return err
	}
	if listing.SellerID != caller.ID && !caller.IsAdmin() {
		return apperr.New(apperr.KindForbidden, "listing %d is not owned by caller %d", id, caller.ID)
	}
	if result := s.db.Delete(&model.Listing{}, id); result.Error != nil {
		return apperr.Wrap(apperr.KindInternal, result.Error, "failed to delete listing %d", id)
	}
	return nil
}

// GetListing loads a listing with its product.
func (s *Store) GetListing(id uint) (*model.Listing, error) {
	var listing model.Listing
	result := s.db.Preload("Product").First(&listing, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "listing %d not found", id)
		}
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to load listing %d", id)
	}
	return &listing, nil
}

// ListListings returns the listings visible through the given filter.
func (s *Store) ListListings(filter visibility.Filter) ([]model.Listing, error) {
	var listings []model.Listing
	result := filter.Scope(s.db.Preload("Product")).Order("created_at DESC").Find(&listings)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindInternal, result.Error, "failed to list listings")
	}
	return listings, nil
}

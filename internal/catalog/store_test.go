package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
	"marketplace-service/internal/testutil"
	"marketplace-service/internal/visibility"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	db := testutil.OpenDB(t)
	return New(db), db
}

func validInput() ListingInput {
	return ListingInput{
		Product: ProductInput{Name: "Crate of beans", Description: "24 tins"},
		Price:   19.90,
	}
}

func TestCreateListingDerivesTierAndBulkFlag(t *testing.T) {
	store, _ := newStore(t)

	tests := []struct {
		seller     role.Actor
		targetTier role.Tier
		bulk       bool
	}{
		{role.Actor{ID: 1, Tier: role.TierImporter}, role.TierWholesaler, true},
		{role.Actor{ID: 2, Tier: role.TierWholesaler}, role.TierRetailer, false},
		{role.Actor{ID: 3, Tier: role.TierRetailer}, role.TierCustomer, false},
		{role.Actor{ID: 4, Tier: role.TierAdmin}, role.TierCustomer, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.seller.Tier), func(t *testing.T) {
			in := validInput()
			in.StockQuantity = 10
			listing, err := store.CreateListing(tt.seller, in)
			require.NoError(t, err)
			assert.Equal(t, tt.targetTier, listing.TargetTier)
			assert.Equal(t, tt.bulk, listing.IsBulkOffer)
			assert.Equal(t, tt.seller.ID, listing.SellerID)
			assert.Equal(t, 1, listing.MinOrderQuantity)
			assert.NotZero(t, listing.ProductID)
		})
	}
}

func TestCreateListingRejectsCustomers(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.CreateListing(role.Actor{ID: 9, Tier: role.TierCustomer}, validInput())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTier, apperr.KindOf(err))
}

func TestCreateListingValidation(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 1, Tier: role.TierRetailer}

	in := validInput()
	in.Price = 0
	_, err := store.CreateListing(seller, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validInput()
	in.Price = -3
	_, err = store.CreateListing(seller, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validInput()
	in.StockQuantity = -1
	_, err = store.CreateListing(seller, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validInput()
	in.MinOrderQuantity = -2
	_, err = store.CreateListing(seller, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validInput()
	in.Product.Name = ""
	_, err = store.CreateListing(seller, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateListingImmutableFields(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierImporter}

	in := validInput()
	in.StockQuantity = 50
	in.MinOrderQuantity = 10
	listing, err := store.CreateListing(seller, in)
	require.NoError(t, err)
	require.Equal(t, role.TierWholesaler, listing.TargetTier)

	// The owning seller may not move their listing to another lane.
	customer := role.TierCustomer
	_, err = store.UpdateListing(seller, listing.ID, ListingUpdate{TargetTier: &customer})
	require.Error(t, err)
	assert.Equal(t, apperr.KindImmutableField, apperr.KindOf(err))

	bulk := false
	_, err = store.UpdateListing(seller, listing.ID, ListingUpdate{IsBulkOffer: &bulk})
	require.Error(t, err)
	assert.Equal(t, apperr.KindImmutableField, apperr.KindOf(err))

	// Privileged correction by an admin is allowed.
	admin := role.Actor{ID: 99, Tier: role.TierAdmin}
	updated, err := store.UpdateListing(admin, listing.ID, ListingUpdate{TargetTier: &customer})
	require.NoError(t, err)
	assert.Equal(t, role.TierCustomer, updated.TargetTier)
}

func TestUpdateListingPriceAndStock(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}

	in := validInput()
	in.StockQuantity = 5
	listing, err := store.CreateListing(seller, in)
	require.NoError(t, err)

	price := 25.50
	delta := 35
	updated, err := store.UpdateListing(seller, listing.ID, ListingUpdate{Price: &price, StockDelta: &delta})
	require.NoError(t, err)
	assert.Equal(t, 25.50, updated.Price)
	assert.Equal(t, 40, updated.StockQuantity)

	bad := -1.0
	_, err = store.UpdateListing(seller, listing.ID, ListingUpdate{Price: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateListingStockDeltaAtomic(t *testing.T) {
	store, db := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}

	in := validInput()
	in.StockQuantity = 10
	listing, err := store.CreateListing(seller, in)
	require.NoError(t, err)

	// A sale lands between the seller loading the listing and applying an
	// edit. The delta composes with the decrement instead of overwriting it.
	require.NoError(t, DecrementStock(db, listing.ID, 3))

	delta := 5
	updated, err := store.UpdateListing(seller, listing.ID, ListingUpdate{StockDelta: &delta})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.StockQuantity)

	// A negative delta below zero stock is rejected and changes nothing.
	tooMuch := -20
	_, err = store.UpdateListing(seller, listing.ID, ListingUpdate{StockDelta: &tooMuch})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	reloaded, err := store.GetListing(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, reloaded.StockQuantity)
}

func TestUpdateListingForbiddenForNonOwner(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}
	stranger := role.Actor{ID: 6, Tier: role.TierRetailer}

	listing, err := store.CreateListing(seller, validInput())
	require.NoError(t, err)

	price := 9.99
	_, err = store.UpdateListing(stranger, listing.ID, ListingUpdate{Price: &price})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDecrementStock(t *testing.T) {
	store, db := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}

	in := validInput()
	in.StockQuantity = 5
	listing, err := store.CreateListing(seller, in)
	require.NoError(t, err)

	require.NoError(t, DecrementStock(db, listing.ID, 3))

	reloaded, err := store.GetListing(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.StockQuantity)

	// Asking for more than remains fails and leaves stock untouched.
	err = DecrementStock(db, listing.ID, 3)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	reloaded, err = store.GetListing(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.StockQuantity)

	err = DecrementStock(db, listing.ID, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRestockListing(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}

	listing, err := store.CreateListing(seller, validInput())
	require.NoError(t, err)
	require.Equal(t, 0, listing.StockQuantity)

	restocked, err := store.RestockListing(seller, listing.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, restocked.StockQuantity)

	_, err = store.RestockListing(seller, listing.ID, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stranger := role.Actor{ID: 6, Tier: role.TierRetailer}
	_, err = store.RestockListing(stranger, listing.ID, 5)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDeleteListing(t *testing.T) {
	store, _ := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}
	stranger := role.Actor{ID: 6, Tier: role.TierRetailer}

	listing, err := store.CreateListing(seller, validInput())
	require.NoError(t, err)

	err = store.DeleteListing(stranger, listing.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, store.DeleteListing(seller, listing.ID))

	_, err = store.GetListing(listing.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListListingsAppliesVisibility(t *testing.T) {
	store, _ := newStore(t)

	importer := role.Actor{ID: 1, Tier: role.TierImporter}
	retailer := role.Actor{ID: 2, Tier: role.TierRetailer}

	bulkIn := validInput()
	bulkIn.StockQuantity = 100
	bulkIn.MinOrderQuantity = 10
	bulk, err := store.CreateListing(importer, bulkIn)
	require.NoError(t, err)

	shopIn := validInput()
	shopIn.StockQuantity = 5
	shop, err := store.CreateListing(retailer, shopIn)
	require.NoError(t, err)

	soldOutIn := validInput()
	_, err = store.CreateListing(retailer, soldOutIn)
	require.NoError(t, err)

	// Wholesalers see only the importer's bulk lane.
	filter, err := visibility.ForBuyer(role.TierWholesaler)
	require.NoError(t, err)
	listings, err := store.ListListings(filter)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, bulk.ID, listings[0].ID)

	// The public storefront sees only stocked customer-lane listings.
	listings, err = store.ListListings(visibility.Public())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, shop.ID, listings[0].ID)

	// The seller dashboard includes the sold-out row.
	listings, err = store.ListListings(visibility.ForSeller(retailer.ID))
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	// The gorm scope and the in-memory predicate agree.
	for _, l := range listings {
		assert.True(t, visibility.ForSeller(retailer.ID).Match(l))
	}
}

func TestGetListingNotFound(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.GetListing(404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteListingKeepsOrderItems(t *testing.T) {
	store, db := newStore(t)
	seller := role.Actor{ID: 5, Tier: role.TierRetailer}

	in := validInput()
	in.StockQuantity = 5
	listing, err := store.CreateListing(seller, in)
	require.NoError(t, err)

	item := model.OrderItemB2C{OrderID: 1, ListingID: listing.ID, Quantity: 1, PriceAtPurchase: listing.Price}
	require.NoError(t, db.Create(&item).Error)

	require.NoError(t, store.DeleteListing(seller, listing.ID))

	// The historical item keeps its listing reference for audit.
	var kept model.OrderItemB2C
	require.NoError(t, db.First(&kept, item.ID).Error)
	assert.Equal(t, listing.ID, kept.ListingID)
}

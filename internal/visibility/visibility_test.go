package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
)

func TestForBuyerLanes(t *testing.T) {
	tests := []struct {
		tier     role.Tier
		target   role.Tier
		bulkOnly bool
	}{
		{role.TierWholesaler, role.TierWholesaler, true},
		{role.TierRetailer, role.TierRetailer, false},
		{role.TierCustomer, role.TierCustomer, false},
		{role.TierAdmin, role.TierCustomer, false},
		{role.TierImporter, role.TierCustomer, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			filter, err := ForBuyer(tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.target, filter.TargetTier)
			assert.Equal(t, tt.bulkOnly, filter.BulkOnly)
			assert.True(t, filter.RequireStock)
		})
	}
}

func TestForBuyerDeterministic(t *testing.T) {
	first, err := ForBuyer(role.TierWholesaler)
	require.NoError(t, err)
	second, err := ForBuyer(role.TierWholesaler)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatchBuyerFilter(t *testing.T) {
	filter, err := ForBuyer(role.TierRetailer)
	require.NoError(t, err)

	inLane := model.Listing{TargetTier: role.TierRetailer, StockQuantity: 3}
	assert.True(t, filter.Match(inLane))

	wrongLane := model.Listing{TargetTier: role.TierCustomer, StockQuantity: 3}
	assert.False(t, filter.Match(wrongLane))

	soldOut := model.Listing{TargetTier: role.TierRetailer, StockQuantity: 0}
	assert.False(t, filter.Match(soldOut))
}

func TestMatchBulkLane(t *testing.T) {
	filter, err := ForBuyer(role.TierWholesaler)
	require.NoError(t, err)

	bulk := model.Listing{TargetTier: role.TierWholesaler, StockQuantity: 100, IsBulkOffer: true}
	assert.True(t, filter.Match(bulk))

	// A wholesaler-lane listing without the bulk flag is invisible to
	// wholesaler buyers.
	nonBulk := model.Listing{TargetTier: role.TierWholesaler, StockQuantity: 100}
	assert.False(t, filter.Match(nonBulk))
}

func TestMatchSellerFilter(t *testing.T) {
	filter := ForSeller(7)

	own := model.Listing{SellerID: 7, TargetTier: role.TierCustomer, StockQuantity: 0}
	assert.True(t, filter.Match(own), "sellers must see zero-stock listings to restock them")

	other := model.Listing{SellerID: 8, TargetTier: role.TierCustomer, StockQuantity: 5}
	assert.False(t, filter.Match(other))
}

func TestMatchPublicFilter(t *testing.T) {
	filter := Public()

	visible := model.Listing{TargetTier: role.TierCustomer, StockQuantity: 1}
	assert.True(t, filter.Match(visible))

	business := model.Listing{TargetTier: role.TierWholesaler, StockQuantity: 50, IsBulkOffer: true}
	assert.False(t, filter.Match(business))

	soldOut := model.Listing{TargetTier: role.TierCustomer, StockQuantity: 0}
	assert.False(t, filter.Match(soldOut))
}

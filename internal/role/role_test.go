package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
)

func TestDownstream(t *testing.T) {
	tests := []struct {
		tier   Tier
		target Tier
		ok     bool
	}{
		{TierAdmin, TierCustomer, true},
		{TierImporter, TierWholesaler, true},
		{TierWholesaler, TierRetailer, true},
		{TierRetailer, TierCustomer, true},
		{TierCustomer, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			target, ok := Downstream(tt.tier)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestUpstreamTarget(t *testing.T) {
	tests := []struct {
		tier   Tier
		target Tier
	}{
		{TierWholesaler, TierWholesaler},
		{TierRetailer, TierRetailer},
		{TierCustomer, TierCustomer},
		{TierAdmin, TierCustomer},
		{TierImporter, TierCustomer},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			target, ok := UpstreamTarget(tt.tier)
			require.True(t, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestPermissions(t *testing.T) {
	assert.True(t, CanCreateListing(TierAdmin))
	assert.True(t, CanCreateListing(TierImporter))
	assert.True(t, CanCreateListing(TierWholesaler))
	assert.True(t, CanCreateListing(TierRetailer))
	assert.False(t, CanCreateListing(TierCustomer))

	assert.True(t, CanPlaceB2B(TierWholesaler))
	assert.True(t, CanPlaceB2B(TierRetailer))
	assert.False(t, CanPlaceB2B(TierCustomer))
	assert.False(t, CanPlaceB2B(TierImporter))
	assert.False(t, CanPlaceB2B(TierAdmin))

	assert.True(t, CanPlaceB2C(TierCustomer))
	assert.True(t, CanPlaceB2C(TierAdmin))
	assert.True(t, CanPlaceB2C(TierImporter))
	assert.False(t, CanPlaceB2C(TierWholesaler))
	assert.False(t, CanPlaceB2C(TierRetailer))
}

func TestParse(t *testing.T) {
	for _, s := range []string{"admin", "importer", "wholesaler", "retailer", "customer"} {
		tier, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, Tier(s), tier)
	}

	// A stored tier outside the enumeration is a data-integrity bug, not bad
	// user input.
	_, err := Parse("reseller")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestInvalidTierPanics(t *testing.T) {
	assert.Panics(t, func() { Downstream("reseller") })
	assert.Panics(t, func() { UpstreamTarget("reseller") })
	assert.Panics(t, func() { CanCreateListing("reseller") })
}

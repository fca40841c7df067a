package role

import (
	"fmt"

	"marketplace-service/internal/apperr"
)

// Tier is a closed enumeration of the marketplace hierarchy levels. Values are
// stored as-is in the profiles table and in JWT claims; anything else reaching
// this package is a data-integrity bug upstream.
type Tier string

const (
	TierAdmin      Tier = "admin"
	TierImporter   Tier = "importer"
	TierWholesaler Tier = "wholesaler"
	TierRetailer   Tier = "retailer"
	TierCustomer   Tier = "customer"
)

// Actor is the explicit authenticated-caller identity passed to every engine
// operation. Nothing in the engine reads ambient session state.
type Actor struct {
	ID   uint
	Tier Tier
}

// IsAdmin reports whether the actor holds the admin tier.
func (a Actor) IsAdmin() bool {
	return a.Tier == TierAdmin
}

// Parse validates a stored tier string. An unrecognized value is reported as an
// internal error kind: it indicates corrupted data, not bad user input.
func Parse(s string) (Tier, error) {
	t := Tier(s)
	switch t {
	case TierAdmin, TierImporter, TierWholesaler, TierRetailer, TierCustomer:
		return t, nil
	}
	return "", apperr.New(apperr.KindInternal, "unrecognized tier %q", s)
}

// Downstream returns the tier an actor of tier t sells to, which becomes the
// target_tier of every listing the actor creates. The second return is false
// when the tier has no downstream lane (customers do not sell).
func Downstream(t Tier) (Tier, bool) {
	switch t {
	case TierAdmin:
		return TierCustomer, true
	case TierImporter:
		return TierWholesaler, true
	case TierWholesaler:
		return TierRetailer, true
	case TierRetailer:
		return TierCustomer, true
	case TierCustomer:
		return "", false
	}
	panic(fmt.Sprintf("role: invalid tier %q", t))
}

// UpstreamTarget returns the target_tier value a buyer of tier t is permitted
// to browse and order from. Admins and importers browse the customer lane as
// incidental shoppers.
func UpstreamTarget(t Tier) (Tier, bool) {
	switch t {
	case TierWholesaler:
		return TierWholesaler, true
	case TierRetailer:
		return TierRetailer, true
	case TierCustomer, TierAdmin, TierImporter:
		return TierCustomer, true
	}
	panic(fmt.Sprintf("role: invalid tier %q", t))
}

// CanCreateListing reports whether the tier may sell on the marketplace.
func CanCreateListing(t Tier) bool {
	switch t {
	case TierAdmin, TierImporter, TierWholesaler, TierRetailer:
		return true
	case TierCustomer:
		return false
	}
	panic(fmt.Sprintf("role: invalid tier %q", t))
}

// CanPlaceB2B reports whether the tier may place bulk business orders.
func CanPlaceB2B(t Tier) bool {
	switch t {
	case TierWholesaler, TierRetailer:
		return true
	case TierAdmin, TierImporter, TierCustomer:
		return false
	}
	panic(fmt.Sprintf("role: invalid tier %q", t))
}

// CanPlaceB2C reports whether the tier may place cash-on-delivery orders.
func CanPlaceB2C(t Tier) bool {
	switch t {
	case TierCustomer, TierAdmin, TierImporter:
		return true
	case TierWholesaler, TierRetailer:
		return false
	}
	panic(fmt.Sprintf("role: invalid tier %q", t))
}
